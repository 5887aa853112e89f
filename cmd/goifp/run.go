/*
 * run.go, part of goifp.
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
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/chemgraph"
	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/ifpio"
	"github.com/rmera/goifp/internal/logging"
	"github.com/rmera/goifp/traj/dcd"
	"github.com/rmera/goifp/traj/stf"
	"github.com/spf13/cobra"
)

const (
	defaultLigandSel = "ligand"
	defaultTargetSel = "protein"
)

type runOptions struct {
	Top    string
	Traj   string
	Ligand string
	Target string
	Out    string
	Hits   string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fingerprint a structure or a trajectory",
		Long: "run reads a PDB topology (every MODEL is a frame) or, with --traj, an STF\n" +
			"trajectory, and writes the fingerprint table.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFingerprint(cmd.Context(), getAppContext(cmd), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Top, "top", "", "topology PDB file")
	f.StringVar(&opts.Traj, "traj", "", "STF or DCD trajectory; if empty, the models of the PDB file are the frames")
	f.StringVar(&opts.Ligand, "ligand", defaultLigandSel, "ligand atom selection")
	f.StringVar(&opts.Target, "target", defaultTargetSel, "target atom selection")
	f.StringVarP(&opts.Out, "out", "o", "ifp.tsv", "fingerprint table; names ending in .zst are compressed")
	f.StringVar(&opts.Hits, "hits", "", "if given, JSON file for the detailed hits")
	_ = cmd.MarkFlagRequired("top")
	return cmd
}

func runFingerprint(ctx context.Context, app *appContext, opts *runOptions) error {
	log := app.Logger.Named("run")
	mol, err := chem.PDBFileRead(opts.Top)
	if err != nil {
		return errors.Wrapf(err, "reading %s", opts.Top)
	}
	if len(mol.Coords) == 0 {
		return errors.Newf("%s has no coordinates", opts.Top)
	}
	if err := chemgraph.Perceive(mol.Topology, mol.Coords[0]); err != nil {
		return err
	}
	var traj chem.Traj = mol
	if opts.Traj != "" {
		r, closeTraj, err := openTraj(opts.Traj)
		if err != nil {
			return errors.Wrapf(err, "opening %s", opts.Traj)
		}
		defer closeTraj()
		if r.Len() != mol.Len() {
			return errors.Newf("%s has %d atoms, but %s has %d", opts.Traj, r.Len(), opts.Top, mol.Len())
		}
		traj = r
	}
	fp := app.Config.Fingerprint
	src := fingerprint.NewTrajSource(traj, mol.Topology, fp.Skip, fp.Step)
	M, err := fingerprintSource(ctx, app, src, fingerprint.QuerySelection(opts.Ligand, opts.Target), log)
	if M == nil {
		return err
	}
	if werr := writeOutputs(M, opts.Out, opts.Hits, log); werr != nil {
		return werr
	}
	return err
}

// openTraj opens a DCD trajectory if the name ends in .dcd, and an STF one otherwise.
func openTraj(name string) (chem.Traj, func(), error) {
	if strings.HasSuffix(strings.ToLower(name), ".dcd") {
		r, err := dcd.New(name)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}
	r, _, err := stf.New(name)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

// fingerprintSource runs the pipeline over src and returns the sealed matrix. Frame
// errors are returned with the matrix of the frames that worked.
func fingerprintSource(ctx context.Context, app *appContext, src fingerprint.FrameSource, sel fingerprint.Selection, log logging.Logger) (*fingerprint.Matrix, error) {
	cfg := app.Config
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	rs, err := cfg.SelectedRules(reg)
	if err != nil {
		return nil, err
	}
	metrics := fingerprint.NewMetrics("goifp")
	promReg := prometheus.NewRegistry()
	if err := metrics.Register(promReg); err != nil {
		return nil, err
	}
	opts := append(cfg.PipelineOptions(app.Logger), fingerprint.WithMetrics(metrics))
	p, err := fingerprint.NewPipeline(rs, sel, opts...)
	if err != nil {
		return nil, err
	}
	runErr := p.Run(ctx, src)
	if runErr != nil && p.Processed() == 0 {
		return nil, runErr
	}
	if runErr != nil {
		log.Warn("some frames failed", logging.Int64("failed", p.Failed()), logging.Err(runErr))
	}
	C := p.Columns()
	C.Seal()
	M, err := C.Matrix()
	if err != nil {
		return nil, err
	}
	logMetrics(promReg, log)
	return M, runErr
}

// logMetrics logs the counters and gauges gathered in reg.
func logMetrics(reg *prometheus.Registry, log logging.Logger) {
	families, err := reg.Gather()
	if err != nil {
		log.Warn("gathering metrics", logging.Err(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []logging.Field{logging.String("metric", mf.GetName())}
			for _, l := range m.GetLabel() {
				fields = append(fields, logging.String(l.GetName(), l.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, logging.Float64("value", m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				fields = append(fields, logging.Float64("value", m.GetGauge().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields, logging.Int64("count", int64(m.GetHistogram().GetSampleCount())),
					logging.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			log.Debug("metric", fields...)
		}
	}
}

func writeOutputs(M *fingerprint.Matrix, table, hits string, log logging.Logger) error {
	if err := ifpio.WriteTableFile(table, M); err != nil {
		return err
	}
	log.Info("fingerprint written", logging.String("file", table),
		logging.Int("frames", M.Rows()), logging.Int("columns", M.Cols()))
	if hits == "" {
		return nil
	}
	f, err := os.Create(hits)
	if err != nil {
		return errors.Wrap(err, "creating hits file")
	}
	if err := ifpio.WriteHitsJSON(f, M); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing hits file")
}

// residueList formats residue IDs for logs.
func residueList(rs []chem.Residue) string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID.String()
	}
	return strings.Join(ids, ",")
}
