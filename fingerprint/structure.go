/*
 * structure.go, part of goifp.
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

// Package fingerprint turns the interaction rules into interaction fingerprints.
// For each frame, an Assembler finds the ligand and target residues close enough
// to interact, and evaluates the rules on each such pair. The ColumnSpace collects
// the results of all frames, assigning a column to each combination of residue
// pair and interaction ever seen, and builds the final fingerprint Matrix, where
// the rows of early frames are padded with zeros for columns discovered later.
// A Pipeline runs all of this over a FrameSource with a pool of workers.
package fingerprint

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/pattern"
	v3 "github.com/rmera/goifp/v3"
)

// Structure is the frame-invariant part of a system: atoms, bonds, residues and
// substructure matching. A *chem.Topology is a Structure. Structures are used as
// cache keys, so implementations must be comparable, which pointers are.
type Structure interface {
	chem.Atomer
	Residues() []chem.Residue
	Match(p *pattern.Pattern, within []int) [][]int
}

// Snapshot is a structure with the coordinates of one frame.
type Snapshot struct {
	Structure Structure
	Coords    *v3.Matrix
}

func (s Snapshot) check() error {
	if s.Structure == nil {
		return errors.New("no structure")
	}
	if s.Coords == nil {
		return errors.New("no coordinates")
	}
	if n, m := s.Structure.Len(), s.Coords.NVecs(); n != m {
		return errors.Newf("%d atoms but %d coordinates", n, m)
	}
	return nil
}

// Frame is a snapshot with its index in the trajectory or pose set.
type Frame struct {
	Index int
	Snapshot
}

// FrameSource yields frames in order. Next returns io.EOF when there are no more frames.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
}

// SliceSource is a FrameSource for frames already in memory.
type SliceSource struct {
	frames []Frame
	pos    int
}

// NewSliceSource returns a source that yields frames in the given order.
func NewSliceSource(frames ...Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

func (S *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if S.pos >= len(S.frames) {
		return Frame{}, io.EOF
	}
	S.pos++
	return S.frames[S.pos-1], nil
}

// TrajSource reads frames from a trajectory, all with the same structure.
// The first skip frames are discarded, and after that only one in every step frames
// is returned. Frame indexes are positions in the trajectory.
type TrajSource struct {
	traj      chem.Traj
	structure Structure
	skip      int
	step      int
	read      int
	started   bool
}

// NewTrajSource returns a source for traj. A step smaller than 1 is taken as 1.
func NewTrajSource(traj chem.Traj, s Structure, skip, step int) *TrajSource {
	if step < 1 {
		step = 1
	}
	if skip < 0 {
		skip = 0
	}
	return &TrajSource{traj: traj, structure: s, skip: skip, step: step}
}

func (T *TrajSource) discard(n int) error {
	for i := 0; i < n; i++ {
		if err := T.traj.Next(nil); err != nil {
			return trajErr(err)
		}
		T.read++
	}
	return nil
}

func trajErr(err error) error {
	var last chem.LastFrameError
	if errors.As(err, &last) {
		return io.EOF
	}
	return errors.Wrap(err, "fingerprint: reading trajectory")
}

func (T *TrajSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	n := T.step - 1
	if !T.started {
		n = T.skip
		T.started = true
	}
	if err := T.discard(n); err != nil {
		return Frame{}, err
	}
	coords := v3.Zeros(T.traj.Len())
	if err := T.traj.Next(coords); err != nil {
		return Frame{}, trajErr(err)
	}
	T.read++
	return Frame{Index: T.read - 1, Snapshot: Snapshot{Structure: T.structure, Coords: coords}}, nil
}
