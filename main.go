// Package main provides the entry point for the voxcue CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxcue/internal/batch"
	"github.com/dgnsrekt/voxcue/internal/caption"
	"github.com/dgnsrekt/voxcue/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	manifestFile string
	outputDir    string
	voiceNames   []string
	whole        bool
	perLine      bool
	captions     bool
	watch        bool
	showAllFiles bool

	rootCmd = &cobra.Command{
		Use:   "voxcue [DOC|DIR...]",
		Short: "Synthesize speech and timed captions for text documents",
		Long: paragraph(
			fmt.Sprintf("\nSynthesize %s for text and markdown documents, across as many voices as you like.",
				keyword("speech and timed captions")),
		),
		Example: paragraph("voxcue notes.md\nvoxcue -v zh-CN-XiaoxiaoNeural -v en-US-AriaNeural --lines chapters/\ncat script.txt | voxcue --captions=false"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// the config command creates the file when it is missing
	if f := cmd.Flag("config"); f != nil && f.Changed && cmd.Name() != "config" {
		if err := readConfigFile(viper.GetViper(), configFile); err != nil {
			return err
		}
	}

	if cmd.HasParent() {
		return setLogLevel(viper.GetString("log.level"))
	}

	if manifestFile != "" {
		m, err := loadManifest(manifestFile)
		if err != nil {
			return err
		}
		if err := m.apply(viper.GetViper()); err != nil {
			return err
		}
		manifest = m
	}

	if err := setLogLevel(viper.GetString("log.level")); err != nil {
		return err
	}

	// grab config values from Viper
	outputDir = utils.ExpandPath(viper.GetString("output.dir"))
	whole = viper.GetBool("output.whole")
	perLine = viper.GetBool("output.lines")
	captions = viper.GetBool("output.captions")
	voiceNames = viper.GetStringSlice("voices")
	showAllFiles = viper.GetBool("all")

	if !whole && !perLine {
		return errors.New("nothing to do: enable whole-document output, line output or both")
	}
	if outputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if _, err := caption.ParseRule(viper.GetString("caption.rule")); err != nil {
		return err
	}
	if _, err := caption.ParsePunctuationMode(viper.GetString("caption.punctuation")); err != nil {
		return err
	}
	if n := viper.GetInt("caption.max_chars"); n < 1 || n > 200 {
		return fmt.Errorf("caption max_chars must be between 1 and 200, got %d", n)
	}
	if n := viper.GetInt("caption.group_size"); n < 1 {
		return fmt.Errorf("caption group_size must be at least 1, got %d", n)
	}
	if d := viper.GetDuration("caption.min_cue"); d < 0 {
		return fmt.Errorf("caption min_cue cannot be negative, got %v", d)
	}
	if d := viper.GetFloat64("synth.style_degree"); d < 0 || d > 2 {
		return fmt.Errorf("synth style_degree must be between 0 and 2, got %.2f", d)
	}
	if viper.GetString("synth.endpoint") == "" && viper.GetString("synth.cli") == "" {
		return errors.New("no synthesis transport: set synth.endpoint, synth.cli or both")
	}
	if n := viper.GetInt("cache.max_size"); viper.GetBool("cache.enabled") && (n < 1 || n > 10000) {
		return fmt.Errorf("cache max_size must be between 1 and 10000 MB, got %d", n)
	}
	return nil
}

// readConfigFile replaces the configuration found in the default places
// with the file at path.
func readConfigFile(v *viper.Viper, path string) error {
	path = utils.ExpandPath(path)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %s: %w", path, err)
	}
	log.Debug("Using configuration file", "path", path)
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// collectDocuments gathers documents from the manifest, the arguments and,
// when there are neither, a piped stdin.
func collectDocuments(args []string) ([]batch.Document, error) {
	var paths []string
	if manifest != nil {
		paths = append(paths, manifest.Documents...)
	}
	for _, arg := range args {
		if arg == "-" {
			continue
		}
		paths = append(paths, arg)
	}

	docs, err := batch.LoadDocuments(paths, showAllFiles)
	if err != nil {
		return nil, err
	}

	readStdin := len(paths) == 0
	for _, arg := range args {
		if arg == "-" {
			readStdin = true
		}
	}
	if readStdin {
		if yes, err := stdinIsPipe(); err != nil {
			return nil, err
		} else if yes {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("unable to read from stdin: %w", err)
			}
			docs = append(docs, batch.NewDocument("stdin", string(b)))
		}
	}

	if len(docs) == 0 {
		return nil, errors.New("no documents given: pass files or directories, or pipe text to stdin")
	}
	return docs, nil
}

func execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}

	catalog := loadCatalog(ctx)
	selected, err := catalog.ResolveAll(voiceNames)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return errors.New("no voices selected: pass --voice or set voices in the config file")
	}
	voices := make([]string, len(selected))
	for i, v := range selected {
		voices[i] = v.ShortName
		if style := viper.GetString("synth.style"); style != "" && len(v.Styles) > 0 && !v.SupportsStyle(style) {
			log.Warn("Voice does not list style, plain fallback may be used", "voice", v.ShortName, "style", style)
		}
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if viper.GetBool("synth.refresh_on_start") {
		if err := forceRefresh(ctx, app.engine); err != nil {
			return err
		}
	}

	stopMetrics := startMetricsServer(ctx, viper.GetString("metrics.addr"))
	defer stopMetrics()

	report, err := app.orchestrator.Run(ctx, docs, voices)
	printSummary(cmd.OutOrStdout(), report, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	if watch {
		return watchDocuments(ctx, app.orchestrator, docs, voices, cmd.OutOrStdout())
	}

	if s := report.Summary(); s.Failed > 0 {
		return fmt.Errorf("%d of %d units failed", s.Failed, s.Failed+s.Succeeded+s.Skipped)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&manifestFile, "manifest", "", "YAML job file listing documents, voices and settings")
	rootCmd.Flags().StringP("output", "o", "./out", "output directory")
	rootCmd.Flags().StringSliceP("voice", "v", nil, "voice name, may be repeated (fuzzy matched)")
	rootCmd.Flags().Bool("whole", true, "synthesize each document as one audio file")
	rootCmd.Flags().BoolP("lines", "l", false, "synthesize each caption line as its own audio file")
	rootCmd.Flags().BoolP("captions", "c", true, "write .srt captions next to whole-document audio")
	rootCmd.Flags().StringP("rule", "r", "smart", "sentence segmentation rule (newline, smart, linguistic)")
	rootCmd.Flags().IntP("max-chars", "m", caption.DefaultMaxChars, "maximum characters per caption line")
	rootCmd.Flags().Int("group-size", 1, "caption lines per cue")
	rootCmd.Flags().String("punctuation", "keep", "caption punctuation (keep, half, full, strip)")
	rootCmd.Flags().String("style", "", "speaking style, e.g. cheerful")
	rootCmd.Flags().Bool("refresh-credentials", false, "renew transport credentials before the run, ignoring the refresh cooldown")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run documents when they change")
	rootCmd.Flags().BoolP("all", "a", false, "include files ignored by .gitignore when searching directories")

	// Config bindings
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("output.dir", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("voices", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("output.whole", rootCmd.Flags().Lookup("whole"))
	_ = viper.BindPFlag("output.lines", rootCmd.Flags().Lookup("lines"))
	_ = viper.BindPFlag("output.captions", rootCmd.Flags().Lookup("captions"))
	_ = viper.BindPFlag("caption.rule", rootCmd.Flags().Lookup("rule"))
	_ = viper.BindPFlag("caption.max_chars", rootCmd.Flags().Lookup("max-chars"))
	_ = viper.BindPFlag("caption.group_size", rootCmd.Flags().Lookup("group-size"))
	_ = viper.BindPFlag("caption.punctuation", rootCmd.Flags().Lookup("punctuation"))
	_ = viper.BindPFlag("synth.style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("synth.refresh_on_start", rootCmd.Flags().Lookup("refresh-credentials"))
	_ = viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))

	setDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", "./out")
	v.SetDefault("output.whole", true)
	v.SetDefault("output.lines", false)
	v.SetDefault("output.captions", true)
	v.SetDefault("voices", []string{"zh-CN-XiaoxiaoNeural"})
	v.SetDefault("voice_list_url", "")

	v.SetDefault("caption.rule", "smart")
	v.SetDefault("caption.max_chars", caption.DefaultMaxChars)
	v.SetDefault("caption.group_size", 1)
	v.SetDefault("caption.min_cue", caption.DefaultMinCue)
	v.SetDefault("caption.punctuation", "keep")
	v.SetDefault("linguistic.command", "")

	v.SetDefault("synth.endpoint", "")
	v.SetDefault("synth.token_url", "")
	v.SetDefault("synth.output_format", "audio-24khz-48kbitrate-mono-mp3")
	v.SetDefault("synth.cli", "edge-tts")
	v.SetDefault("synth.rate", "+0%")
	v.SetDefault("synth.pitch", "+0Hz")
	v.SetDefault("synth.volume", "+0%")
	v.SetDefault("synth.style", "")
	v.SetDefault("synth.style_degree", 0.0)
	v.SetDefault("synth.role", "")
	v.SetDefault("synth.refresh_cooldown", "30s")
	v.SetDefault("synth.refresh_on_start", false)
	v.SetDefault("synth.retry_delay", "1s")
	v.SetDefault("synth.timeout", "60s")
	v.SetDefault("synth.requests_per_minute", 60)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.max_size", 100)
	v.SetDefault("cache.memory_size", 16)
	v.SetDefault("cache.compression", 3)

	v.SetDefault("probe.ffprobe", "ffprobe")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_enabled", false)
	v.SetDefault("log.file", "")
	v.SetDefault("all", false)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voxcue")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voxcue")}, dirs...)
	}

	if c := os.Getenv("VOXCUE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voxcue")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voxcue")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "voxcue.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
