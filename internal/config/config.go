// Package config loads runtime settings from defaults, an optional config
// file, DAYPLAN_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const EnvPrefix = "DAYPLAN"

var ErrInvalidConfig = errors.New("config: invalid runtime config")

type RuntimeConfig struct {
	DBPath              string `mapstructure:"db_path"`
	WorkStart           string `mapstructure:"work_start"`
	WorkEnd             string `mapstructure:"work_end"`
	MaxDeepFocusMinutes int    `mapstructure:"max_deep_focus_minutes"`
	BufferMinutes       int    `mapstructure:"buffer_minutes"`
	ReminderLeadMinutes int    `mapstructure:"reminder_lead_minutes"`
	ReminderBuffer      int    `mapstructure:"reminder_buffer"`
	DefaultTaskMinutes  int    `mapstructure:"default_task_minutes"`
	LogLevel            string `mapstructure:"log_level"`
	LogFormat           string `mapstructure:"log_format"`
	LogFile             string `mapstructure:"log_file"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	prefs := model.DefaultPreferences()
	return RuntimeConfig{
		DBPath:              "dayplan.db",
		WorkStart:           prefs.WorkingHours.Start,
		WorkEnd:             prefs.WorkingHours.End,
		MaxDeepFocusMinutes: prefs.MaxDeepFocusMinutes,
		BufferMinutes:       prefs.BufferMinutes,
		ReminderLeadMinutes: 10,
		ReminderBuffer:      64,
		DefaultTaskMinutes:  30,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// SetDefaults registers every key so that environment overrides are seen by
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := DefaultRuntimeConfig()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("work_start", d.WorkStart)
	v.SetDefault("work_end", d.WorkEnd)
	v.SetDefault("max_deep_focus_minutes", d.MaxDeepFocusMinutes)
	v.SetDefault("buffer_minutes", d.BufferMinutes)
	v.SetDefault("reminder_lead_minutes", d.ReminderLeadMinutes)
	v.SetDefault("reminder_buffer", d.ReminderBuffer)
	v.SetDefault("default_task_minutes", d.DefaultTaskMinutes)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)
}

// Load reads configuration into v. An explicit configPath must exist; the
// default location ($XDG_CONFIG_HOME/dayplan/config.yaml) is optional.
func Load(v *viper.Viper, configPath string) (RuntimeConfig, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return RuntimeConfig{}, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dayplan"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return RuntimeConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// Preferences returns the scheduling preferences used when none are stored.
func (c RuntimeConfig) Preferences() model.Preferences {
	return model.Preferences{
		WorkingHours:        model.WorkingHours{Start: c.WorkStart, End: c.WorkEnd},
		MaxDeepFocusMinutes: c.MaxDeepFocusMinutes,
		BufferMinutes:       c.BufferMinutes,
	}
}

func (c RuntimeConfig) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%w: db_path is required", ErrInvalidConfig)
	}
	if err := c.Preferences().Validate(); err != nil {
		return err
	}
	if c.ReminderLeadMinutes < 0 {
		return fmt.Errorf("%w: reminder_lead_minutes must not be negative", ErrInvalidConfig)
	}
	if c.ReminderBuffer <= 0 {
		return fmt.Errorf("%w: reminder_buffer must be positive", ErrInvalidConfig)
	}
	if c.DefaultTaskMinutes < model.MinTaskMinutes || c.DefaultTaskMinutes > model.MaxTaskMinutes {
		return fmt.Errorf("%w: default_task_minutes must be between %d and %d",
			ErrInvalidConfig, model.MinTaskMinutes, model.MaxTaskMinutes)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
