/*
 * config.go, part of goifp.
 *
 * Copyright 2024 The goifp authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package config loads the goifp configuration from YAML files and GOIFP_*
// environment variables.
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/rmera/goifp/internal/logging"
	"github.com/rmera/goifp/rules"
)

// Config is the whole goifp configuration.
type Config struct {
	Log         logging.LogConfig `mapstructure:"log"`
	Fingerprint FingerprintConfig `mapstructure:"fingerprint"`
	// Rules maps rule names to their parameters. Parameters not given keep their
	// defaults.
	Rules map[string]map[string]interface{} `mapstructure:"rules"`
}

// FingerprintConfig holds the settings of a fingerprint run.
type FingerprintConfig struct {
	Interactions    []string `mapstructure:"interactions"`
	ProximityCutoff float64  `mapstructure:"proximity_cutoff"`
	Workers         int      `mapstructure:"workers"`
	Ordered         bool     `mapstructure:"ordered"`
	CanonicalOrder  bool     `mapstructure:"canonical_order"`
	FailFast        bool     `mapstructure:"fail_fast"`
	CacheSize       int      `mapstructure:"cache_size"`
	Skip            int      `mapstructure:"skip"`
	Step            int      `mapstructure:"step"`
	KeepHits        bool     `mapstructure:"keep_hits"`
}

// ErrInvalidConfig marks validation errors.
var ErrInvalidConfig = errors.New("config: invalid configuration")

func invalid(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("config: "+format, args...), ErrInvalidConfig)
}

// Validate checks cfg for values no run could use.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return invalid("nil configuration")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return errors.Mark(errors.Wrap(err, "config: log.level"), ErrInvalidConfig)
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format must be json or console, not %q", cfg.Log.Format)
	}
	fp := cfg.Fingerprint
	if len(fp.Interactions) == 0 {
		return invalid("fingerprint.interactions is empty")
	}
	for _, name := range fp.Interactions {
		if _, ok := rules.CanonicalName(name); !ok {
			return invalid("fingerprint.interactions: unknown interaction %q", name)
		}
	}
	if fp.ProximityCutoff < 0 {
		return invalid("fingerprint.proximity_cutoff must not be negative")
	}
	if fp.Workers < 1 {
		return invalid("fingerprint.workers must be at least 1")
	}
	if fp.CacheSize < 0 {
		return invalid("fingerprint.cache_size must not be negative")
	}
	if fp.Skip < 0 || fp.Step < 1 {
		return invalid("fingerprint.skip must not be negative and fingerprint.step must be at least 1")
	}
	for name := range cfg.Rules {
		if _, ok := rules.CanonicalName(name); !ok {
			return invalid("rules: unknown interaction %q", name)
		}
	}
	return nil
}

// Registry builds a rule registry with the rules section applied over the defaults.
func (cfg *Config) Registry() (*rules.Registry, error) {
	return rules.NewRegistryFromConfig(cfg.Rules)
}

// SelectedRules returns the rules listed in fingerprint.interactions, built from reg.
func (cfg *Config) SelectedRules(reg *rules.Registry) ([]rules.Rule, error) {
	names := make([]string, len(cfg.Fingerprint.Interactions))
	for i, n := range cfg.Fingerprint.Interactions {
		names[i], _ = rules.CanonicalName(n)
	}
	return reg.Select(names...)
}
