package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# where audio and captions are written
output:
  dir: "./out"
  # one audio file per document
  whole: true
  # one audio file per caption line, in <voice>/lines
  lines: false
  # write an .srt file next to each document
  captions: true

# voices used when none are given on the command line
voices:
  - "zh-CN-XiaoxiaoNeural"
# JSON voice list fetched by "voxcue voices", empty for the built-in list
voice_list_url: ""

caption:
  # newline, smart or linguistic
  rule: "smart"
  max_chars: 28
  # lines per cue
  group_size: 1
  min_cue: "400ms"
  # keep, half, full or strip
  punctuation: "keep"

# external sentence splitter for the linguistic rule; reads text on stdin
# and prints one sentence per line
linguistic:
  command: ""

synth:
  endpoint: ""
  token_url: ""
  output_format: "audio-24khz-48kbitrate-mono-mp3"
  # edge-tts compatible fallback binary, empty to disable
  cli: "edge-tts"
  rate: "+0%"
  pitch: "+0Hz"
  volume: "+0%"
  style: ""
  style_degree: 0
  role: ""
  refresh_cooldown: "30s"
  refresh_on_start: false
  retry_delay: "1s"
  timeout: "60s"
  requests_per_minute: 60

cache:
  enabled: true
  dir: ""
  # MB on disk
  max_size: 100
  # MB kept in memory during a run
  memory_size: 16
  compression: 3

probe:
  ffprobe: "ffprobe"

metrics:
  # e.g. "127.0.0.1:9464", empty to disable
  addr: ""

log:
  level: "info"
  file_enabled: false
  file: ""
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voxcue config file",
	Long:    paragraph(fmt.Sprintf("\n%s the voxcue config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("voxcue config\nvoxcue config --config path/to/voxcue.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voxcue", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
