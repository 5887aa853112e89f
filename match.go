/*
 * match.go, part of goifp.
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

package chem

import (
	"github.com/rmera/goifp/pattern"
)

// topoGraph exposes a Topology as a pattern.Graph.
type topoGraph struct {
	*Topology
}

func (g topoGraph) Element(i int) string { return g.Atoms[i].Symbol }

func (g topoGraph) Charge(i int) int { return g.Atoms[i].Charge }

func (g topoGraph) Aromatic(i int) bool { return g.Atoms[i].Aromatic }

func (g topoGraph) Neighbors(i int) []int {
	at := g.Atoms[i]
	ret := make([]int, 0, len(at.Bonds))
	for _, b := range at.Bonds {
		ret = append(ret, b.Cross(at).index)
	}
	return ret
}

func (g topoGraph) BondOrder(i, j int) float64 {
	b := g.Bond(i, j)
	if b == nil {
		return 0
	}
	if b.Order <= 0 {
		return 1
	}
	return b.Order
}

func (g topoGraph) Rings() [][]int { return g.Topology.Rings }

// Match returns the groups of atoms of the topology that match the pattern p,
// considering only the atoms in within (or all the atoms, if within is nil).
// The topology must have its bonds, and, for most patterns, also its rings, aromaticity
// and formal charges, assigned. See the chemgraph package.
func (T *Topology) Match(p *pattern.Pattern, within []int) [][]int {
	return pattern.Find(topoGraph{T}, p, within)
}
