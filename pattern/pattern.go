/*
 * pattern.go, part of goifp.
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

// Package pattern implements declarative substructure queries over molecular graphs,
// and a matcher that returns the groups of atoms that satisfy them. The queries are
// the ones the interaction rules need: single atoms with element, charge, aromaticity,
// hydrogen-count and neighborhood constraints, small bonded groups (a donor and its
// hydrogen, a halogen and its carbon) and whole rings.
package pattern

// Graph is what the matcher needs to know about a molecule.
type Graph interface {
	Len() int
	Element(i int) string
	Charge(i int) int
	Aromatic(i int) bool
	InRing(i int) bool
	Neighbors(i int) []int
	//BondOrder returns the order of the bond between i and j, or 0 if they are not bonded.
	BondOrder(i, j int) float64
	Rings() [][]int
}

// Tri is a three-state condition.
type Tri int

const (
	Any Tri = iota
	Yes
	No
)

func (t Tri) ok(b bool) bool {
	switch t {
	case Yes:
		return b
	case No:
		return !b
	}
	return true
}

// ChargeQuery constrains the formal charge of an atom.
type ChargeQuery int

const (
	AnyCharge ChargeQuery = iota
	Neutral
	Positive
	Negative
	NotPositive
	NotNegative
)

func (c ChargeQuery) ok(q int) bool {
	switch c {
	case Neutral:
		return q == 0
	case Positive:
		return q > 0
	case Negative:
		return q < 0
	case NotPositive:
		return q <= 0
	case NotNegative:
		return q >= 0
	}
	return true
}

// AtomQuery describes one atom of a pattern. Zero values mean "anything".
// If Or is not empty, the atom must also match at least one of the alternatives.
type AtomQuery struct {
	Elements    []string
	NotElements []string
	Aromatic    Tri
	InRing      Tri
	Charge      ChargeQuery
	//Number of bonded hydrogens.
	H *Range
	//Degree counts all neighbors, hydrogens included.
	Degree *Range
	//The atom can't be bonded to any atom of these elements.
	NoNeighbors []string
	//Extra arbitrary condition.
	Func func(g Graph, i int) bool
	Or   []AtomQuery
}

// Range is an inclusive range of integers. A negative Max means no maximum.
type Range struct {
	Min, Max int
}

func (r *Range) ok(n int) bool {
	if r == nil {
		return true
	}
	return n >= r.Min && (r.Max < 0 || n <= r.Max)
}

// Exactly returns a Range that only contains n.
func Exactly(n int) *Range { return &Range{Min: n, Max: n} }

// AtLeast returns a Range with no maximum.
func AtLeast(n int) *Range { return &Range{Min: n, Max: -1} }

// Between returns the range [min,max].
func Between(min, max int) *Range { return &Range{Min: min, Max: max} }

// BondQuery requires atoms From and To of the pattern to be bonded. Order 0 means any order.
type BondQuery struct {
	From, To int
	Order    float64
}

// RingQuery matches whole rings.
type RingQuery struct {
	Sizes    []int
	Aromatic Tri
}

// Pattern is a substructure query. If Ring is not nil, the pattern matches rings
// and Atoms and Bonds are ignored. Otherwise each match is a group with one atom per
// AtomQuery, in the same order as Atoms.
type Pattern struct {
	Name  string
	Atoms []AtomQuery
	Bonds []BondQuery
	Ring  *RingQuery
}

// Atom returns a single-atom pattern.
func Atom(name string, q AtomQuery) *Pattern {
	return &Pattern{Name: name, Atoms: []AtomQuery{q}}
}

// Rings returns a ring pattern.
func Rings(name string, aromatic Tri, sizes ...int) *Pattern {
	return &Pattern{Name: name, Ring: &RingQuery{Sizes: sizes, Aromatic: aromatic}}
}
