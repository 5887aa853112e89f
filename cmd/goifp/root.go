/*
 * root.go, part of goifp.
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

package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rmera/goifp/internal/config"
	"github.com/rmera/goifp/internal/logging"
	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Workers    int
}

// appContext carries the configuration and logger to the subcommands.
type appContext struct {
	Config *config.Config
	Logger logging.Logger
}

type appContextKey struct{}

// NewRootCommand returns the goifp command with all its subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "goifp",
		Short: "Interaction fingerprints for protein-ligand complexes",
		Long: "goifp detects non-covalent interactions between ligand and target residues,\n" +
			"frame by frame, and encodes them as a binary fingerprint matrix.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (YAML); GOIFP_* environment variables also apply")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.IntVarP(&opts.Workers, "workers", "w", 0, "frames processed in parallel; overrides the config")

	cmd.AddCommand(newRunCommand(), newDockCommand(), newSimilarityCommand(), newRulesCommand())
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Workers != 0 {
		cfg.Fingerprint.Workers = opts.Workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	logging.SetDefault(logger)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, &appContext{Config: cfg, Logger: logger}))
	return nil
}

// getAppContext returns what persistentPreRun stored, or the defaults if it didn't run.
func getAppContext(cmd *cobra.Command) *appContext {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(appContextKey{}).(*appContext); ok {
			return c
		}
	}
	return &appContext{Config: config.Default(), Logger: logging.Default()}
}
