// Package config loads the process configuration, mirroring the teacher's
// own BurntSushi/toml-based loader: decode, apply defaults, validate.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"mdaggregator/internal/domain/symbol"
)

type Config struct {
	LogLevel string `toml:"log_level"`

	FanOut struct {
		Addr string `toml:"addr"`
	} `toml:"fanout"`

	Reconnect struct {
		DelaySeconds int `toml:"delay_seconds"`
		MaxAttempts  int `toml:"max_attempts"`
	} `toml:"reconnect"`

	Exchange struct {
		Binance  VenueConfig `toml:"binance"`
		Kraken   VenueConfig `toml:"kraken"`
		Coinbase VenueConfig `toml:"coinbase"`
		Bybit    VenueConfig `toml:"bybit"`
		OKX      VenueConfig `toml:"okx"`
	} `toml:"exchange"`
}

type VenueConfig struct {
	Enabled bool `toml:"enabled"`
}

// EnabledVenues returns the canonical venue names whose config entry is
// enabled, in a fixed order so startup logging is deterministic.
func (c *Config) EnabledVenues() []string {
	var out []string
	if c.Exchange.Binance.Enabled {
		out = append(out, symbol.Binance)
	}
	if c.Exchange.Kraken.Enabled {
		out = append(out, symbol.Kraken)
	}
	if c.Exchange.Coinbase.Enabled {
		out = append(out, symbol.Coinbase)
	}
	if c.Exchange.Bybit.Enabled {
		out = append(out, symbol.Bybit)
	}
	if c.Exchange.OKX.Enabled {
		out = append(out, symbol.OKX)
	}
	return out
}

// ReconnectDelay is the configured fixed backoff delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Reconnect.DelaySeconds) * time.Second
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in the §4.2 baseline values whenever the config
// leaves a field unset, so the defaults exactly match the spec even
// without a config.toml present.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.FanOut.Addr == "" {
		cfg.FanOut.Addr = "0.0.0.0:5555"
	}
	if cfg.Reconnect.DelaySeconds <= 0 {
		cfg.Reconnect.DelaySeconds = 5
	}
	if cfg.Reconnect.MaxAttempts <= 0 {
		cfg.Reconnect.MaxAttempts = 10
	}
}

func validate(cfg *Config) error {
	if len(cfg.EnabledVenues()) == 0 {
		return errors.New("no exchange enabled in config")
	}
	return nil
}
