// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz    QuizConfig    `toml:"quiz"`
	Storage StorageConfig `toml:"storage"`
	Content ContentConfig `toml:"content"`
	Log     LogConfig     `toml:"log"`
}

// QuizConfig maps quiz defaults. Timed is accepted but not acted on.
type QuizConfig struct {
	Category   *string `toml:"category"`
	Difficulty *string `toml:"difficulty"`
	Count      *int    `toml:"count"`
	Timed      *bool   `toml:"timed"`
}

// StorageConfig maps persistence settings.
type StorageConfig struct {
	DB *string `toml:"db"`
}

// ContentConfig maps the content override directory.
type ContentConfig struct {
	Dir *string `toml:"dir"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
	Mode  *string `toml:"mode"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
// Keys the file sets that FileConfig does not know are returned as undecoded.
func LoadConfig(path string) (FileConfig, []string, error) {
	if path == "" {
		return FileConfig{}, nil, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil, nil
		}
		return FileConfig{}, nil, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, nil, fmt.Errorf("failed to decode config: %w", err)
	}
	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return cfg, unknown, nil
}

// Template is written by `courtgram config` when no file exists yet.
const Template = `# courtgram configuration

[quiz]
# category = "all"          # all, punctuation, grammar, legal-style
# difficulty = "mixed"      # mixed, beginner, intermediate, advanced
# count = 5
# timed = false             # reserved, not implemented

[storage]
# db = "~/.local/share/courtgram/courtgram.db"

[content]
# dir = ""                  # directory with lessons/reference/scenarios/questions .toml overrides

[log]
# level = "warn"
# mode = "prod"             # prod (JSON) or dev (console)
# file = "~/.local/state/courtgram/courtgram.log"   # or "stderr"
`

// WriteTemplate creates path with Template unless it already exists.
func WriteTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
