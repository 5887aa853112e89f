/*
 * evaluator.go, part of goifp.
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

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/rules"
	"github.com/samber/lo"
)

type groupKey struct {
	structure Structure
	residue   chem.ResidueID
	role      rules.Role
}

// Evaluator applies interaction rules to pairs of residues. Atom groups depend only on
// the topology, so they are cached across frames. An Evaluator is safe for concurrent use.
type Evaluator struct {
	cache *lru.Cache[groupKey, []rules.AtomGroup]
}

// NewEvaluator returns an Evaluator that caches the groups of up to cacheSize
// (structure, residue, role) combinations. A cacheSize of 0 disables the cache.
func NewEvaluator(cacheSize int) (*Evaluator, error) {
	if cacheSize < 0 {
		return nil, configError("negative cache size %d", cacheSize)
	}
	if cacheSize == 0 {
		return &Evaluator{}, nil
	}
	c, err := lru.New[groupKey, []rules.AtomGroup](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "fingerprint: creating evaluator cache")
	}
	return &Evaluator{cache: c}, nil
}

func (E *Evaluator) groups(s Structure, res chem.Residue, role rules.Role) []rules.AtomGroup {
	key := groupKey{structure: s, residue: res.ID, role: role}
	if E.cache != nil {
		if g, ok := E.cache.Get(key); ok {
			return g
		}
	}
	var ret []rules.AtomGroup
	if p := role.Pattern(); p != nil {
		ret = lo.Map(s.Match(p, res.Atoms), func(m []int, _ int) rules.AtomGroup { return rules.AtomGroup(m) })
	}
	if E.cache != nil {
		E.cache.Add(key, ret)
	}
	return ret
}

// side returns a Side for res with groups for all the given roles. Groups already
// present in the side are not looked up again.
func (E *Evaluator) side(S *rules.Side, res chem.Residue, snap Snapshot, roles []rules.Role) *rules.Side {
	if S == nil {
		S = rules.NewSide(res.ID, res.Atoms, snap.Structure, snap.Coords)
	}
	for _, role := range roles {
		if _, ok := S.Groups[role]; ok {
			continue
		}
		S.Groups[role] = E.groups(snap.Structure, res, role)
	}
	return S
}

// Evaluate applies rs to the ligand residue lig and the target residue tgt, in the
// given snapshot. It returns the hits of each rule that produced any. The water
// molecules available to water-mediated rules are all those in the structure.
func (E *Evaluator) Evaluate(ctx context.Context, lig, tgt chem.Residue, snap Snapshot, rs []rules.Rule) (map[string][]rules.Hit, error) {
	if err := snap.check(); err != nil {
		return nil, err
	}
	var waters []chem.Residue
	if lo.SomeBy(rs, isWaterAware) {
		waters = lo.Filter(snap.Structure.Residues(), func(r chem.Residue, _ int) bool { return r.ID.IsWater() })
	}
	return E.evaluate(ctx, lig, tgt, snap, rs, waters)
}

func isWaterAware(r rules.Rule) bool {
	_, ok := r.(rules.WaterAware)
	return ok
}

func (E *Evaluator) evaluate(ctx context.Context, lig, tgt chem.Residue, snap Snapshot, rs []rules.Rule, waters []chem.Residue) (map[string][]rules.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ls, ts *rules.Side
	var ws []*rules.Side
	ret := make(map[string][]rules.Hit)
	for _, r := range rs {
		ls = E.side(ls, lig, snap, r.LigandPatterns())
		ts = E.side(ts, tgt, snap, r.TargetPatterns())
		if wa, ok := r.(rules.WaterAware); ok {
			if ws == nil {
				ws = make([]*rules.Side, len(waters))
			}
			for i, w := range waters {
				ws[i] = E.side(ws[i], w, snap, wa.WaterPatterns())
			}
			ls.Waters = ws
		}
		if hits := r.Detect(ls, ts); len(hits) > 0 {
			ret[r.Name()] = hits
		}
	}
	return ret, nil
}
