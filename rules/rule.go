/*
 * rule.go, part of goifp.
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

// Package rules implements the interaction rules, which decide, from the geometry of a
// ligand residue and a target residue in one frame, whether a given type of
// non-covalent interaction occurs between them. It also contains the registry that
// keeps the active rules.
package rules

import (
	"fmt"

	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/pattern"
	v3 "github.com/rmera/goifp/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Role is the part a group of atoms can play in an interaction.
type Role string

const (
	Hydrophobe    Role = "Hydrophobic"
	HBondDonor    Role = "HBondDonor"
	HBondAcceptor Role = "HBondAcceptor"
	Cation        Role = "Cation"
	Anion         Role = "Anion"
	AromaticRing  Role = "AromaticRing"
	XBondDonor    Role = "XBondDonor"
	XBondAcceptor Role = "XBondAcceptor"
	Metal         Role = "Metal"
	Chelating     Role = "Chelating"
	AnyAtom       Role = "AnyAtom"
)

var rolePatterns = map[Role]*pattern.Pattern{
	Hydrophobe:    pattern.Hydrophobic,
	HBondDonor:    pattern.HBondDonor,
	HBondAcceptor: pattern.HBondAcceptor,
	Cation:        pattern.Cation,
	Anion:         pattern.Anion,
	AromaticRing:  pattern.AromaticRing,
	XBondDonor:    pattern.XBondDonor,
	XBondAcceptor: pattern.XBondAcceptor,
	Metal:         pattern.Metal,
	Chelating:     pattern.Chelating,
	AnyAtom:       pattern.AnyAtom,
}

// Pattern returns the substructure pattern whose matches play the role.
// It returns nil for unknown roles.
func (r Role) Pattern() *pattern.Pattern {
	return rolePatterns[r]
}

// AtomGroup is an ordered set of atom indexes that plays a role, for instance
// a donor atom and its hydrogen, or the atoms of a ring in ring order.
type AtomGroup []int

// Side is one of the two residues in an evaluation, with the atom groups that
// can play each of the roles the rules need, and the coordinates of the frame.
type Side struct {
	Residue chem.ResidueID
	Atoms   []int
	Groups  map[Role][]AtomGroup
	//Water molecules in the frame, available to rules that need them.
	Waters []*Side
	mol    chem.Atomer
	coords *v3.Matrix
}

// NewSide returns a Side without groups for the residue id, with the given atoms
// of mol, and positions from coords.
func NewSide(id chem.ResidueID, atoms []int, mol chem.Atomer, coords *v3.Matrix) *Side {
	return &Side{Residue: id, Atoms: atoms, Groups: make(map[Role][]AtomGroup), mol: mol, coords: coords}
}

// Pos returns the position of the ith atom of the molecule.
func (S *Side) Pos(i int) r3.Vec {
	return S.coords.Vec(i)
}

// Positions returns the positions of the atoms in g.
func (S *Side) Positions(g AtomGroup) []r3.Vec {
	return S.coords.Vecs(g)
}

// Element returns the element symbol of the ith atom of the molecule.
func (S *Side) Element(i int) string {
	return S.mol.Atom(i).Symbol
}

// Neighbors returns the indexes of the atoms bonded to the ith atom.
func (S *Side) Neighbors(i int) []int {
	at := S.mol.Atom(i)
	ret := make([]int, 0, len(at.Bonds))
	for _, b := range at.Bonds {
		ret = append(ret, b.Cross(at).Index())
	}
	return ret
}

// Hit is one occurrence of an interaction. Atoms are indexes in the ligand and
// target molecules, and are always reported in that orientation, regardless of
// which side donates.
type Hit struct {
	Rule        string             `json:"rule"`
	LigandAtoms []int              `json:"ligand_atoms"`
	TargetAtoms []int              `json:"target_atoms"`
	Distance    float64            `json:"distance"`
	Angles      map[string]float64 `json:"angles,omitempty"`
	//Atoms of the bridging water, for water-mediated interactions.
	Water []int `json:"water,omitempty"`
	//The variant that produced the hit, for composite rules.
	Via string `json:"via,omitempty"`
}

// Rule is an interaction type. Detect must be a pure function of its inputs, and
// safe for concurrent use.
type Rule interface {
	Name() string
	//Roles the rule needs the ligand residue to have groups for.
	LigandPatterns() []Role
	//Roles the rule needs the target residue to have groups for.
	TargetPatterns() []Role
	//No hit can have atoms farther apart than this.
	MaxDistance() float64
	Detect(lig, tgt *Side) []Hit
}

// Validator is implemented by rules with parameters that can be invalid.
type Validator interface {
	Validate() error
}

// Parametrized is implemented by rules that expose their parameters.
type Parametrized interface {
	Params() interface{}
}

// WaterAware is implemented by rules that need the water molecules of the frame.
// The Waters of the ligand Side will have groups for WaterPatterns.
type WaterAware interface {
	WaterPatterns() []Role
}

// hitSet collects hits, discarding those with the same atoms as a previous one.
type hitSet struct {
	seen map[string]bool
	hits []Hit
}

func (h *hitSet) add(hit Hit) {
	if h.seen == nil {
		h.seen = make(map[string]bool)
	}
	key := fmt.Sprint(hit.LigandAtoms, hit.TargetAtoms, hit.Water)
	if h.seen[key] {
		return
	}
	h.seen[key] = true
	h.hits = append(h.hits, hit)
}

func inRange(v, min, max float64) bool {
	return v >= min && v <= max
}
