package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. WRAPPED_PATHS_RAW_DIR.
const EnvPrefix = "WRAPPED"

// Config holds the settings for an analysis run.
type Config struct {
	Year          int           `mapstructure:"year"`
	Owner         string        `mapstructure:"owner"`
	AssistantName string        `mapstructure:"assistant_name"`
	Paths         PathsConfig   `mapstructure:"paths"`
	Log           LogConfig     `mapstructure:"log"`
	History       HistoryConfig `mapstructure:"history"`
	Notify        NotifyConfig  `mapstructure:"notify"`
	Publish       PublishConfig `mapstructure:"publish"`
	Narrate       NarrateConfig `mapstructure:"narrate"`
	OpenAI        OpenAIConfig  `mapstructure:"openai"`
	Obsidian      VaultConfig   `mapstructure:"obsidian"`
}

type PathsConfig struct {
	RawDir      string `mapstructure:"raw_dir"`
	AnalysisDir string `mapstructure:"analysis_dir"`
	OutputDir   string `mapstructure:"output_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

type NotifyConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	SkipWhenFocused bool `mapstructure:"skip_when_focused"`
}

type PublishConfig struct {
	GitAutoPush bool `mapstructure:"git_auto_push"`
}

type NarrateConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// VaultConfig points at an Obsidian vault that receives a Markdown note.
type VaultConfig struct {
	VaultPath string `mapstructure:"vault_path"`
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("year", 2025)
	v.SetDefault("owner", "")
	v.SetDefault("assistant_name", "Claude")
	v.SetDefault("paths.raw_dir", "raw-exports")
	v.SetDefault("paths.analysis_dir", "analysis")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "analysis/history.db")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.skip_when_focused", true)
	v.SetDefault("publish.git_auto_push", false)
	v.SetDefault("narrate.enabled", false)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 600)
	v.SetDefault("obsidian.vault_path", "")
}

// UserConfigPath is the user-global config file, read before the file
// passed to Load. Empty when the home directory is unknown.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "wrapped.yaml")
}

// Load reads the user-global config, overlays the YAML file at path, then
// overlays WRAPPED_* environment variables (OPENAI_API_KEY and CLAUDE_VAULT
// are honored too).
// Missing files are skipped; a file that exists but cannot be parsed is an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("obsidian.vault_path", EnvPrefix+"_OBSIDIAN_VAULT_PATH", "CLAUDE_VAULT")

	for _, p := range []string{UserConfigPath(), path} {
		if p == "" {
			continue
		}
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
