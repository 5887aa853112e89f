/*
 * assembler.go, part of goifp.
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
	"fmt"
	"math"

	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/rules"
	"github.com/samber/lo"
)

// PairKey identifies a ligand residue and a target residue.
type PairKey struct {
	Ligand chem.ResidueID
	Target chem.ResidueID
}

// Column is an interaction between a pair of residues: a column of the fingerprint.
type Column struct {
	Pair PairKey
	Rule string
}

func (c Column) String() string {
	return fmt.Sprintf("%s-%s:%s", c.Pair.Ligand, c.Pair.Target, c.Rule)
}

// Less orders columns by ligand residue, target residue and rule name.
func (c Column) Less(o Column) bool {
	if c.Pair.Ligand != o.Pair.Ligand {
		return c.Pair.Ligand.Less(o.Pair.Ligand)
	}
	if c.Pair.Target != o.Pair.Target {
		return c.Pair.Target.Less(o.Pair.Target)
	}
	return c.Rule < o.Rule
}

// FrameResult is the fingerprint of one frame, as the hits for each column with at
// least one hit.
type FrameResult struct {
	Frame int
	Hits  map[Column][]rules.Hit
}

// ResolveCutoff returns the prefilter distance to use with rs. A cutoff of 0 gives the
// largest of DefaultProximityCutoff and the longest rule distance. A cutoff shorter than
// a rule distance would hide interactions, so it is an error.
func ResolveCutoff(cutoff float64, rs []rules.Rule) (float64, error) {
	maxd := rules.MaxDistance(rs)
	switch {
	case cutoff == 0:
		return math.Max(DefaultProximityCutoff, maxd), nil
	case cutoff < 0 || math.IsNaN(cutoff):
		return 0, configError("invalid proximity cutoff %g", cutoff)
	case cutoff < maxd:
		return 0, configError("proximity cutoff %g is shorter than the %g A needed by the active rules", cutoff, maxd)
	}
	return cutoff, nil
}

// Assembler fingerprints single frames.
type Assembler struct {
	eval *Evaluator
}

// NewAssembler returns an Assembler that evaluates residue pairs with eval.
func NewAssembler(eval *Evaluator) *Assembler {
	return &Assembler{eval: eval}
}

// Assemble evaluates rs on every pair of a ligand residue and a target residue that
// have atoms within cutoff of each other, and returns the merged hits. The cutoff is
// resolved with ResolveCutoff. A residue is never paired with itself.
func (A *Assembler) Assemble(ctx context.Context, frame Frame, ligRes, tgtRes []chem.Residue, rs []rules.Rule, cutoff float64) (*FrameResult, error) {
	cutoff, err := ResolveCutoff(cutoff, rs)
	if err != nil {
		return nil, err
	}
	if err := frame.check(); err != nil {
		return nil, err
	}
	snap := frame.Snapshot
	coords := snap.Coords
	ret := &FrameResult{Frame: frame.Index, Hits: make(map[Column][]rules.Hit)}
	if len(rs) == 0 {
		return ret, nil
	}
	owner := make(map[int]int)
	var tatoms []int
	for i, r := range tgtRes {
		for _, a := range r.Atoms {
			owner[a] = i
			tatoms = append(tatoms, a)
		}
	}
	ttree := chem.NewAtomTree(coords, tatoms)

	waterCut := 0.0
	for _, r := range rs {
		if isWaterAware(r) {
			waterCut = math.Max(waterCut, r.MaxDistance())
		}
	}
	var waters []chem.Residue
	var wowner map[int]int
	var wtree *chem.AtomTree
	if waterCut > 0 {
		waters = lo.Filter(snap.Structure.Residues(), func(r chem.Residue, _ int) bool { return r.ID.IsWater() })
		wowner = make(map[int]int)
		var watoms []int
		for i, w := range waters {
			for _, a := range w.Atoms {
				wowner[a] = i
				watoms = append(watoms, a)
			}
		}
		wtree = chem.NewAtomTree(coords, watoms)
	}

	for _, lig := range ligRes {
		near := make(map[int]bool)
		nearW := make(map[int]bool)
		for _, a := range lig.Atoms {
			p := coords.Vec(a)
			for _, t := range ttree.Within(p, cutoff) {
				near[owner[t]] = true
			}
			if wtree != nil {
				for _, w := range wtree.Within(p, waterCut) {
					nearW[wowner[w]] = true
				}
			}
		}
		var ligWaters []chem.Residue
		for i, w := range waters {
			if nearW[i] {
				ligWaters = append(ligWaters, w)
			}
		}
		for i, tgt := range tgtRes {
			if !near[i] || tgt.ID == lig.ID {
				continue
			}
			hits, err := A.eval.evaluate(ctx, lig, tgt, snap, rs, ligWaters)
			if err != nil {
				return nil, err
			}
			pair := PairKey{Ligand: lig.ID, Target: tgt.ID}
			for name, h := range hits {
				ret.Hits[Column{Pair: pair, Rule: name}] = h
			}
		}
	}
	return ret, nil
}
