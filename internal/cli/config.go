package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rolodex/internal/logging"
	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// config.yaml keys.
const (
	keyBaseURL       = "base_url"
	keyToken         = "token"
	keyTimeout       = "timeout"
	keyLogLevel      = "log.level"
	keyLogFormat     = "log.format"
	keyFilterSort    = "filter.sort_order"
	keyServerAddr    = "server.addr"
	keyServerDataDir = "server.data_dir"
	keyServerToken   = "server.token"
	keyServerRate    = "server.rate_limit"
	keyServerBurst   = "server.burst"
)

const envPrefix = "ROLODEX"

// Defaults.
const (
	defaultAddr    = "127.0.0.1:8080"
	defaultBaseURL = "http://" + defaultAddr
)

// fileConfig is the shape written to config.yaml by init.
type fileConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token,omitempty"`
	Timeout string        `yaml:"timeout"`
	Log     logSection    `yaml:"log"`
	Filter  filterSection `yaml:"filter"`
	Server  serverSection `yaml:"server"`
}

type logSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type filterSection struct {
	SortOrder string `yaml:"sort_order"`
}

type serverSection struct {
	Addr      string  `yaml:"addr"`
	DataDir   string  `yaml:"data_dir,omitempty"`
	Token     string  `yaml:"token,omitempty"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		BaseURL: defaultBaseURL,
		Timeout: types.DefaultTimeout.String(),
		Log:     logSection{Level: "info", Format: logging.FormatText},
		Filter:  filterSection{SortOrder: string(types.SortDescending)},
		Server:  serverSection{Addr: defaultAddr, RateLimit: 20, Burst: 40},
	}
}

// loadConfig reads config.yaml from configDir into v and layers ROLODEX_*
// environment variables over it. A missing config.yaml is not an error.
func loadConfig(v *viper.Viper, configDir string) error {
	d := defaultFileConfig()
	v.SetDefault(keyBaseURL, d.BaseURL)
	v.SetDefault(keyTimeout, d.Timeout)
	v.SetDefault(keyLogLevel, d.Log.Level)
	v.SetDefault(keyLogFormat, d.Log.Format)
	v.SetDefault(keyFilterSort, d.Filter.SortOrder)
	v.SetDefault(keyServerAddr, d.Server.Addr)
	v.SetDefault(keyServerRate, d.Server.RateLimit)
	v.SetDefault(keyServerBurst, d.Server.Burst)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// clientConfig returns the connection settings for the contact API.
func clientConfig(v *viper.Viper) (types.Config, error) {
	timeout, err := parseDuration(v.GetString(keyTimeout))
	if err != nil {
		return types.Config{}, err
	}
	cfg := types.Config{
		BaseURL: v.GetString(keyBaseURL),
		Token:   v.GetString(keyToken),
		Timeout: timeout,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// initialFilter returns the filter the store starts with.
func initialFilter(v *viper.Viper) (types.FilterCriteria, error) {
	order, err := types.ParseSortOrder(v.GetString(keyFilterSort))
	if err != nil {
		return types.FilterCriteria{}, fmt.Errorf("%s: %w", keyFilterSort, err)
	}
	f := types.DefaultFilter()
	if order != "" {
		f.SortOrder = order
	}
	return f, nil
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", keyTimeout, err)
	}
	return d, nil
}

func newLogger(v *viper.Viper, w io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  v.GetString(keyLogLevel),
		Format: v.GetString(keyLogFormat),
	}, w)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(configDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultFileConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
