package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"issuetrack/internal/model"

	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the complete issuetrack configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	List    ListConfig    `mapstructure:"list" yaml:"list"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
}

// APIConfig points the client at the remote issue store.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// TimeoutSeconds bounds CLI requests. 0 disables the timeout; the TUI list view
	// never applies one.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ListConfig holds the list view's initial sort and page size.
type ListConfig struct {
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
	SortBy   string `mapstructure:"sort_by" yaml:"sort_by"`
	SortDesc bool   `mapstructure:"sort_desc" yaml:"sort_desc"`
	// DiscardStaleResponses drops list responses from any fetch but the most recent
	// one. Off by default: the last response to arrive wins.
	DiscardStaleResponses bool `mapstructure:"discard_stale_responses" yaml:"discard_stale_responses"`
}

type TUIConfig struct {
	// NotifySeconds is how long transient notifications stay in the minibuffer.
	NotifySeconds int `mapstructure:"notify_seconds" yaml:"notify_seconds"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File defaults to <config dir>/issuetrack.log when empty.
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig configures `issuetrack serve`.
type ServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
	Seed   bool   `mapstructure:"seed" yaml:"seed"`
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 10,
		},
		List: ListConfig{
			PageSize: model.DefaultPageSize,
			SortBy:   string(model.SortByUpdatedAt),
			SortDesc: true,
		},
		TUI: TUIConfig{
			NotifySeconds: 3,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
			Seed: true,
		},
	}
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c TUIConfig) NotifyDuration() time.Duration {
	return time.Duration(c.NotifySeconds) * time.Second
}

// Sort returns the configured initial sort. Validate guarantees the field parses.
func (c ListConfig) Sort() model.SortSpec {
	f, err := model.ParseSortField(c.SortBy)
	if err != nil {
		return model.DefaultSort()
	}
	return model.SortSpec{Field: f, Descending: c.SortDesc}
}

// LogFile resolves the log path, falling back to the config directory.
func (c LoggingConfig) LogFile() string {
	if strings.TrimSpace(c.File) != "" {
		return c.File
	}
	return filepath.Join(Dir(), "issuetrack.log")
}

// DatabasePath resolves the reference server's sqlite path.
func (c ServerConfig) DatabasePath() string {
	if strings.TrimSpace(c.DBPath) != "" {
		return c.DBPath
	}
	return filepath.Join(Dir(), "issues.sqlite")
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_seconds", d.API.TimeoutSeconds)
	v.SetDefault("list.page_size", d.List.PageSize)
	v.SetDefault("list.sort_by", d.List.SortBy)
	v.SetDefault("list.sort_desc", d.List.SortDesc)
	v.SetDefault("list.discard_stale_responses", d.List.DiscardStaleResponses)
	v.SetDefault("tui.notify_seconds", d.TUI.NotifySeconds)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.seed", d.Server.Seed)
}

// NewViper returns a viper instance with defaults, env binding (ISSUETRACK_API_BASE_URL
// for api.base_url, ...) and the config file search path set up. cfgFile overrides
// the search path when non-empty.
func NewViper(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix("ISSUETRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadInConfig reads the config file if there is one. A missing file is not an error.
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the config directory: $ISSUETRACK_CONFIG_DIR, then
// $XDG_CONFIG_HOME/issuetrack, then ~/.config/issuetrack.
func Dir() string {
	if v := strings.TrimSpace(os.Getenv("ISSUETRACK_CONFIG_DIR")); v != "" {
		return v
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "issuetrack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".issuetrack"
	}
	return filepath.Join(home, ".config", "issuetrack")
}

func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes cfg to path atomically, refusing to clobber an existing file
// unless force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	b, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}
