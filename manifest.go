package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/voxcue/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// manifest is the job loaded with --manifest, nil otherwise.
var manifest *jobManifest

// jobManifest describes a batch in one file:
//
//	documents: [intro.md, chapters/]
//	voices: [zh-CN-XiaoxiaoNeural, en-US-AriaNeural]
//	settings:
//	  output: {lines: true}
//	  caption: {punctuation: strip}
//
// Settings use the same keys as the config file and take precedence over
// it; command-line flags still win.
type jobManifest struct {
	Documents []string       `yaml:"documents"`
	Voices    []string       `yaml:"voices"`
	Settings  map[string]any `yaml:"settings"`
}

func loadManifest(path string) (*jobManifest, error) {
	path = utils.ExpandPath(path)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest: %w", err)
	}

	var m jobManifest
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unable to parse manifest %s: %w", path, err)
	}
	if len(m.Documents) == 0 {
		return nil, errors.New("manifest lists no documents")
	}

	// documents are relative to the manifest
	base := filepath.Dir(path)
	for i, d := range m.Documents {
		d = utils.ExpandPath(d)
		if !filepath.IsAbs(d) {
			d = filepath.Join(base, d)
		}
		m.Documents[i] = d
	}
	return &m, nil
}

// apply merges the manifest's voices and settings into v.
func (m *jobManifest) apply(v *viper.Viper) error {
	settings := make(map[string]any, len(m.Settings)+1)
	for k, val := range m.Settings {
		settings[k] = val
	}
	if len(m.Voices) > 0 {
		settings["voices"] = m.Voices
	}
	if len(settings) == 0 {
		return nil
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("unable to apply manifest settings: %w", err)
	}
	return nil
}
