/*
 * contact.go, part of goifp.
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

package rules

import (
	chem "github.com/rmera/goifp"
)

// ContactRule detects interactions between a group with one role and a group with
// another role, closer than a distance. Distances are measured between group centroids
// which, for the single-atom groups of the built-in roles, are just the atoms.
// Hydrophobic, ionic and metal interactions are contact rules.
type ContactRule struct {
	name    string
	ligRole Role
	tgtRole Role
	params  DistanceParams
}

// NewContactRule returns a contact rule between the ligand role lig and the target
// role tgt.
func NewContactRule(name string, lig, tgt Role, p DistanceParams) *ContactRule {
	return &ContactRule{name: name, ligRole: lig, tgtRole: tgt, params: p}
}

// NewHydrophobic returns the Hydrophobic rule.
func NewHydrophobic(p DistanceParams) *ContactRule {
	return NewContactRule("Hydrophobic", Hydrophobe, Hydrophobe, p)
}

// NewCationic returns the Cationic rule: a cation in the ligand, an anion in the target.
func NewCationic(p DistanceParams) *ContactRule {
	return NewContactRule("Cationic", Cation, Anion, p)
}

// NewAnionic returns the Anionic rule: an anion in the ligand, a cation in the target.
func NewAnionic(p DistanceParams) *ContactRule {
	return NewContactRule("Anionic", Anion, Cation, p)
}

// NewMetalDonor returns the MetalDonor rule: a metal in the ligand, coordinated by
// the target.
func NewMetalDonor(p DistanceParams) *ContactRule {
	return NewContactRule("MetalDonor", Metal, Chelating, p)
}

// NewMetalAcceptor returns the MetalAcceptor rule: a metal in the target, coordinated
// by the ligand.
func NewMetalAcceptor(p DistanceParams) *ContactRule {
	return NewContactRule("MetalAcceptor", Chelating, Metal, p)
}

func (r *ContactRule) Name() string           { return r.name }
func (r *ContactRule) LigandPatterns() []Role { return []Role{r.ligRole} }
func (r *ContactRule) TargetPatterns() []Role { return []Role{r.tgtRole} }
func (r *ContactRule) MaxDistance() float64   { return r.params.Distance }
func (r *ContactRule) Params() interface{}    { return r.params }
func (r *ContactRule) Validate() error        { return r.params.Validate(r.name) }

func (r *ContactRule) Detect(lig, tgt *Side) []Hit {
	var hits hitSet
	for _, lg := range lig.Groups[r.ligRole] {
		lc, err := chem.Centroid(lig.Positions(lg))
		if err != nil {
			continue
		}
		for _, tg := range tgt.Groups[r.tgtRole] {
			tc, err := chem.Centroid(tgt.Positions(tg))
			if err != nil {
				continue
			}
			if d := chem.Distance(lc, tc); d <= r.params.Distance {
				hits.add(Hit{Rule: r.name, LigandAtoms: lg, TargetAtoms: tg, Distance: d})
			}
		}
	}
	return hits.hits
}

// VdWContactRule detects pairs of atoms closer than the sum of their van der Waals
// radii plus a tolerance. Atoms of elements without a known radius are ignored.
type VdWContactRule struct {
	params VdWParams
	maxRad float64
}

// NewVdWContact returns the VdWContact rule.
func NewVdWContact(p VdWParams) *VdWContactRule {
	return &VdWContactRule{params: p, maxRad: chem.MaxVdWRadius()}
}

func (r *VdWContactRule) Name() string           { return "VdWContact" }
func (r *VdWContactRule) LigandPatterns() []Role { return []Role{AnyAtom} }
func (r *VdWContactRule) TargetPatterns() []Role { return []Role{AnyAtom} }
func (r *VdWContactRule) MaxDistance() float64   { return 2*r.maxRad + r.params.Tolerance }
func (r *VdWContactRule) Params() interface{}    { return r.params }
func (r *VdWContactRule) Validate() error        { return r.params.Validate(r.Name()) }

func (r *VdWContactRule) Detect(lig, tgt *Side) []Hit {
	var hits hitSet
	for _, lg := range lig.Groups[AnyAtom] {
		i := lg[0]
		ri, ok := chem.VdWRadius(lig.Element(i))
		if !ok {
			continue
		}
		pi := lig.Pos(i)
		for _, tg := range tgt.Groups[AnyAtom] {
			j := tg[0]
			rj, ok := chem.VdWRadius(tgt.Element(j))
			if !ok {
				continue
			}
			if d := chem.Distance(pi, tgt.Pos(j)); d <= ri+rj+r.params.Tolerance {
				hits.add(Hit{Rule: r.Name(), LigandAtoms: lg, TargetAtoms: tg, Distance: d})
			}
		}
	}
	return hits.hits
}
