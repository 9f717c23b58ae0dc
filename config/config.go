package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultLogLevel = "info"

	// EnvPrefix is the prefix of environment variables overriding config keys,
	// e.g. POC1TO2_OUT or POC1TO2_LOG_LEVEL.
	EnvPrefix = "POC1TO2"
)

// Config is the runtime configuration of a single conversion.
type Config struct {
	PlotFile string `mapstructure:"plot"`

	// OutDir selects copy mode when set. The plot is converted in place otherwise.
	OutDir string `mapstructure:"out"`

	Quiet             bool   `mapstructure:"quiet"`
	LogLevel          string `mapstructure:"log-level"`
	DisableSpaceCheck bool   `mapstructure:"disable-space-check"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
	}
}

func (cfg *Config) Validate() error {
	if cfg.PlotFile == "" {
		return errors.New("plot file is required")
	}
	if _, err := cfg.Level(); err != nil {
		return err
	}
	return nil
}

func (cfg *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("invalid `log-level`; expected one of debug, info, warn, error, given: %q", cfg.LogLevel)
	}
	return lvl, nil
}

// NewViper returns a viper instance reading overrides from POC1TO2_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(smutil.GetCanonicalPath(path))
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %v: %w", path, err)
	}
	return nil
}

// Load decodes v on top of the defaults.
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
