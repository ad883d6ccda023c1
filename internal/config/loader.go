package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load builds the effective configuration: defaults, then an optional
// macadam.yaml in the working directory, then MACADAM_* environment
// variables, then any runtime override maps (highest precedence).
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	return load(ctx, "", overrides...)
}

// LoadFile is Load with an explicit config file path. The file must exist.
func LoadFile(ctx context.Context, path string, overrides ...map[string]any) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	return load(ctx, path, overrides...)
}

func load(_ context.Context, path string, overrides ...map[string]any) (*Config, error) {
	v := viper.New()

	v.SetDefault("name_prefix", "macadam")
	v.SetDefault("shell", "#!/bin/bash")
	v.SetDefault("engine", "auto")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("submit.rate_per_second", 0.0)
	v.SetDefault("submit.burst", 1)

	v.SetEnvPrefix("MACADAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short aliases kept alongside the replacer-derived names.
	_ = v.BindEnv("logging.level", "MACADAM_LOG_LEVEL")
	_ = v.BindEnv("name_prefix", "MACADAM_NAME_PREFIX")
	_ = v.BindEnv("engine", "MACADAM_ENGINE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("macadam")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	for _, o := range overrides {
		if err := v.MergeConfigMap(o); err != nil {
			return nil, fmt.Errorf("merge overrides: %w", err)
		}
	}

	var cfg Config
	decode := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decode); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
