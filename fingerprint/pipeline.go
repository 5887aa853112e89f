/*
 * pipeline.go, part of goifp.
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

package fingerprint

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/internal/logging"
	"github.com/rmera/goifp/rules"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Selection returns the ligand and target residues of a structure.
type Selection func(s Structure) (ligand, target []chem.Residue, err error)

// FixedSelection returns a Selection that ignores the structure and always returns
// the given residues. It is the usual choice for trajectories.
func FixedSelection(ligand, target []chem.Residue) Selection {
	return func(Structure) ([]chem.Residue, []chem.Residue, error) {
		return ligand, target, nil
	}
}

// Pipeline fingerprints the frames of a FrameSource in parallel, and ingests the
// results into its ColumnSpace.
type Pipeline struct {
	opts      Options
	rules     []rules.Rule
	selection Selection
	cutoff    float64
	assembler *Assembler
	columns   *ColumnSpace
	log       logging.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// NewPipeline returns a pipeline that applies rs to the residues chosen by sel.
// The rules slice is copied.
func NewPipeline(rs []rules.Rule, sel Selection, opts ...Option) (*Pipeline, error) {
	o := newOptions(opts)
	if o.Workers < 1 {
		return nil, configError("at least one worker is needed, got %d", o.Workers)
	}
	if sel == nil {
		return nil, configError("no residue selection")
	}
	cutoff, err := ResolveCutoff(o.ProximityCutoff, rs)
	if err != nil {
		return nil, err
	}
	eval, err := NewEvaluator(o.CacheSize)
	if err != nil {
		return nil, err
	}
	snapshot := make([]rules.Rule, len(rs))
	copy(snapshot, rs)
	return &Pipeline{
		opts:      o,
		rules:     snapshot,
		selection: sel,
		cutoff:    cutoff,
		assembler: NewAssembler(eval),
		columns:   NewColumnSpace(opts...),
		log:       o.Logger.Named("pipeline"),
	}, nil
}

// Columns returns the ColumnSpace where the pipeline ingests frames.
func (P *Pipeline) Columns() *ColumnSpace { return P.columns }

// Cutoff returns the prefilter distance in use.
func (P *Pipeline) Cutoff() float64 { return P.cutoff }

// Processed returns the number of frames ingested so far.
func (P *Pipeline) Processed() int64 { return P.processed.Load() }

// Failed returns the number of frames that failed so far.
func (P *Pipeline) Failed() int64 { return P.failed.Load() }

// process fingerprints one frame.
func (P *Pipeline) process(ctx context.Context, fr Frame) (*FrameResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fr.Structure == nil {
		return nil, errors.New("no structure")
	}
	lig, tgt, err := P.selection(fr.Structure)
	if err != nil {
		return nil, errors.Wrap(err, "selecting residues")
	}
	start := time.Now()
	res, err := P.assembler.Assemble(ctx, fr, lig, tgt, P.rules, P.cutoff)
	if err != nil {
		return nil, err
	}
	P.opts.Metrics.frameDone(res, time.Since(start))
	return res, nil
}

func (P *Pipeline) ingest(res *FrameResult) error {
	if err := P.columns.Ingest(res); err != nil {
		return err
	}
	P.processed.Inc()
	P.opts.Metrics.columns(P.columns.ColumnCount())
	P.log.Debug("frame ingested", logging.Int("frame", res.Frame), logging.Int("columns", len(res.Hits)))
	return nil
}

// reorder ingests results in submission order. Failed frames are pushed as nil so
// later frames are not held back.
type reorder struct {
	mu      sync.Mutex
	next    int
	pending map[int]*FrameResult
	ingest  func(*FrameResult) error
}

func (r *reorder) push(seq int, res *FrameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[seq] = res
	var errs error
	for {
		res, ok := r.pending[r.next]
		if !ok {
			return errs
		}
		delete(r.pending, r.next)
		r.next++
		if res != nil {
			if err := r.ingest(res); err != nil {
				errs = multierr.Append(errs, &FrameError{Frame: res.Frame, Err: err})
			}
		}
	}
}

// Run reads src until it is exhausted, fingerprinting and ingesting every frame.
// It doesn't seal the column space, so Run can be called again with more frames.
//
// Frames that fail are reported as *FrameError. Unless FailFast is set, the other
// frames are still processed and all failures are returned together. If ctx is
// cancelled, no more frames are read, and the frames already ingested remain in
// the column space.
func (P *Pipeline) Run(ctx context.Context, src FrameSource) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(P.opts.Workers)
	var (
		errMu sync.Mutex
		errs  error
	)
	record := func(err error) error {
		if P.opts.FailFast {
			return err
		}
		errMu.Lock()
		errs = multierr.Append(errs, err)
		errMu.Unlock()
		return nil
	}
	var order *reorder
	if P.opts.Ordered {
		order = &reorder{pending: make(map[int]*FrameResult), ingest: P.ingest}
	}
	P.log.Info("run started", logging.Int("workers", P.opts.Workers), logging.Float64("cutoff", P.cutoff),
		logging.Strings("rules", ruleNames(P.rules)), logging.Bool("ordered", P.opts.Ordered))

	var readErr error
	for seq := 0; gctx.Err() == nil; seq++ {
		fr, err := src.Next(gctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if gctx.Err() == nil {
				readErr = errors.Wrap(err, "fingerprint: reading frames")
			}
			break
		}
		seq, fr := seq, fr
		g.Go(func() error {
			res, err := P.process(gctx, fr)
			if err != nil {
				P.failed.Inc()
				P.opts.Metrics.frameFailed()
				P.log.Warn("frame failed", logging.Int("frame", fr.Index), logging.Err(err))
				if order != nil {
					if err := order.push(seq, nil); err != nil {
						record(err)
					}
				}
				return record(&FrameError{Frame: fr.Index, Err: err})
			}
			if order != nil {
				if err := order.push(seq, res); err != nil {
					return record(err)
				}
				return nil
			}
			if err := P.ingest(res); err != nil {
				return record(&FrameError{Frame: fr.Index, Err: err})
			}
			return nil
		})
	}
	werr := g.Wait()
	err := multierr.Combine(werr, errs, readErr, ctx.Err())
	P.log.Info("run finished", logging.Int64("processed", P.Processed()), logging.Int64("failed", P.Failed()),
		logging.Int("columns", P.columns.ColumnCount()))
	return err
}

func ruleNames(rs []rules.Rule) []string {
	return lo.Map(rs, func(r rules.Rule, _ int) string { return r.Name() })
}

// Selector is a Structure that can evaluate atom selection queries, such as
// *chem.Topology.
type Selector interface {
	Structure
	Select(query string) ([]int, error)
}

// QuerySelection returns a Selection that evaluates the ligand and target queries on
// each structure, which must implement Selector. Each residue with selected atoms is
// kept, restricted to those atoms.
func QuerySelection(ligand, target string) Selection {
	return func(s Structure) ([]chem.Residue, []chem.Residue, error) {
		sel, ok := s.(Selector)
		if !ok {
			return nil, nil, errors.Newf("fingerprint: structure %T can't evaluate selections", s)
		}
		lig, err := selectResidues(sel, ligand)
		if err != nil {
			return nil, nil, errors.Wrap(err, "fingerprint: ligand selection")
		}
		tgt, err := selectResidues(sel, target)
		if err != nil {
			return nil, nil, errors.Wrap(err, "fingerprint: target selection")
		}
		return lig, tgt, nil
	}
}

func selectResidues(s Selector, query string) ([]chem.Residue, error) {
	idx, err := s.Select(query)
	if err != nil {
		return nil, err
	}
	in := make(map[int]bool, len(idx))
	for _, i := range idx {
		in[i] = true
	}
	var ret []chem.Residue
	for _, r := range s.Residues() {
		atoms := lo.Filter(r.Atoms, func(i int, _ int) bool { return in[i] })
		if len(atoms) > 0 {
			ret = append(ret, chem.Residue{ID: r.ID, Atoms: atoms})
		}
	}
	return ret, nil
}
