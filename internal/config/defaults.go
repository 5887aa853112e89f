/*
 * defaults.go, part of goifp.
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

package config

import (
	"runtime"

	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/internal/logging"
	"github.com/rmera/goifp/rules"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = "console"
	DefaultStep      = 1
)

// setDefaults registers the defaults in v, so that every key is known to viper and
// can be overridden from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})
	v.SetDefault("fingerprint.interactions", append([]string(nil), rules.DefaultInteractions...))
	v.SetDefault("fingerprint.proximity_cutoff", 0.0)
	v.SetDefault("fingerprint.workers", runtime.NumCPU())
	v.SetDefault("fingerprint.ordered", false)
	v.SetDefault("fingerprint.canonical_order", false)
	v.SetDefault("fingerprint.fail_fast", false)
	v.SetDefault("fingerprint.cache_size", fingerprint.DefaultCacheSize)
	v.SetDefault("fingerprint.skip", 0)
	v.SetDefault("fingerprint.step", DefaultStep)
	v.SetDefault("fingerprint.keep_hits", true)
}

// ApplyDefaults fills the zero-value fields of cfg that have a non-zero default.
// Boolean fields are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Fingerprint.Interactions) == 0 {
		cfg.Fingerprint.Interactions = append([]string(nil), rules.DefaultInteractions...)
	}
	if cfg.Fingerprint.Workers == 0 {
		cfg.Fingerprint.Workers = runtime.NumCPU()
	}
	if cfg.Fingerprint.Step == 0 {
		cfg.Fingerprint.Step = DefaultStep
	}
}

// Default returns the configuration used when there is no file and no environment.
func Default() *Config {
	cfg := &Config{Fingerprint: FingerprintConfig{CacheSize: fingerprint.DefaultCacheSize, KeepHits: true}}
	ApplyDefaults(cfg)
	return cfg
}

// PipelineOptions returns the fingerprint options that correspond to the configuration.
func (cfg *Config) PipelineOptions(logger logging.Logger) []fingerprint.Option {
	fp := cfg.Fingerprint
	return []fingerprint.Option{
		fingerprint.Workers(fp.Workers),
		fingerprint.Ordered(fp.Ordered),
		fingerprint.CanonicalOrder(fp.CanonicalOrder),
		fingerprint.FailFast(fp.FailFast),
		fingerprint.ProximityCutoff(fp.ProximityCutoff),
		fingerprint.CacheSize(fp.CacheSize),
		fingerprint.KeepHits(fp.KeepHits),
		fingerprint.WithLogger(logger),
	}
}
