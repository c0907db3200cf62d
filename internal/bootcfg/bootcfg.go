// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bootcfg is the process bootstrap configuration: the handful of
// daemon-level settings (data directory, listen addresses, log level,
// metrics port) a supervisor must know before the northbound engine even
// exists. It is deliberately separate from the northbound configuration
// tree in package northbound, which owns the live, commit-able protocol
// configuration once the process is up; bootcfg only ever gets loaded
// once, at startup, the way dittofs's pkg/config loads its static server
// settings before the control-plane database takes over dynamic config.
package bootcfg

import (
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level process bootstrap configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Listen  ListenConfig  `mapstructure:"listen"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// LoggingConfig controls the zap logger built in internal/log.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// ZapLevel parses Level into a zapcore.Level. Validate must have already
// confirmed Level is one of the accepted strings, so the error path here
// is unreachable in practice but still handled rather than ignored.
func (l LoggingConfig) ZapLevel() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("parsing log level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// StoreConfig configures the badger-backed kvstore.Store.
type StoreConfig struct {
	// Dir is the directory badger opens its database in. Required: the
	// boot counter and transaction journal have nowhere else to live.
	Dir string `mapstructure:"dir" validate:"required"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// ListenConfig is the set of local addresses each protocol instance binds
// its raw sockets to. Empty fields mean that protocol is not enabled at
// the transport level, independent of whether it's enabled in the
// northbound configuration tree (a protocol can be configured but not yet
// given a socket during a staged rollout).
type ListenConfig struct {
	ISIS   string `mapstructure:"isis"`
	OSPFv2 string `mapstructure:"ospfv2" validate:"omitempty,hostname_port"`
	OSPFv3 string `mapstructure:"ospfv3" validate:"omitempty,hostname_port"`
	LDP    string `mapstructure:"ldp" validate:"omitempty,hostname_port"`
	BGP    string `mapstructure:"bgp" validate:"omitempty,hostname_port"`
}

// Default returns the built-in defaults, applied before any config file
// or environment variable is read.
func Default() Config {
	return Config{
		Logging:         LoggingConfig{Level: "info"},
		Store:           StoreConfig{Dir: "/var/lib/polyd"},
		Metrics:         MetricsConfig{Enabled: true, Addr: "127.0.0.1:9090"},
		Listen:          ListenConfig{OSPFv2: "0.0.0.0:0", BGP: "0.0.0.0:179"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads the bootstrap configuration from defaults, configPath (if
// non-empty), and POLYD_-prefixed environment variables, in that order of
// increasing precedence, then validates the result.
//
// Precedence (highest to lowest):
//  1. Environment variables (POLYD_*)
//  2. Configuration file
//  3. Default values
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POLYD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	setDefaults(v, def)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("store.dir", def.Store.Dir)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.addr", def.Metrics.Addr)
	v.SetDefault("listen.ospfv2", def.Listen.OSPFv2)
	v.SetDefault("listen.bgp", def.Listen.BGP)
	v.SetDefault("shutdown_timeout", def.ShutdownTimeout)
}

var validate = validator.New()

// Validate runs struct-tag validation over cfg. bgp/packet's capability
// admission uses its own *validator.Validate instance and does not call
// this function.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
