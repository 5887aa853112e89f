/*
 * bondorder.go, part of goifp.
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

import "math"

// AssignBondOrders infers bond orders and formal charges from the allowed valences of
// each element, for structures that come with explicit hydrogens but without bond orders,
// such as most PDB files from simulations. Bonds with undetermined order are first set
// to single. Then, for each atom:
//
// If the atom exceeds its only allowed valence, it gets a positive formal charge (ammonium N).
//
// Otherwise, the first neighbor that lacks the same number of electrons as the atom gets a
// double (1 electron) or triple (2 electrons) bond to it. If no neighbor shares a need with the
// atom, and the atom lacks one electron, a neutral saturated N neighbor takes a double bond and
// a positive charge (amidinium and guanidinium groups, protonated histidine). Failing that, the
// atom gets a negative charge equal to the electrons it lacks (carboxylate O).
//
// Atoms of elements without valence data (metals, for instance) are left untouched.
func AssignBondOrders(mol *Topology) {
	for _, at := range mol.Atoms {
		for _, b := range at.Bonds {
			if b.Order <= 0 {
				b.Order = 1
			}
		}
	}
	for _, at := range mol.Atoms {
		valences, ok := symbolValences[at.Symbol]
		if !ok || len(at.Bonds) == 0 {
			continue
		}
		electrons := missingElectrons(at, valences)
		if len(electrons) == 1 && electrons[0] < 0 {
			at.Charge = -electrons[0]
			continue
		}
		neighbors := at.Neighbors()
		for i, na := range neighbors {
			navalences, ok := symbolValences[na.Symbol]
			if !ok {
				continue
			}
			common, found := minCommon(electrons, missingElectrons(na, navalences))
			if found && common == 0 {
				continue
			}
			if !found {
				if i == len(neighbors)-1 && !chargeNeighborN(at, electrons) {
					at.Charge = -electrons[0]
				}
				continue
			}
			b := at.Bonds[i]
			switch common {
			case 1:
				b.Order = 2
			case 2:
				b.Order = 3
			}
			break
		}
	}
}

// chargeNeighborN looks for a neutral N bonded to at with a complete valence. If at
// lacks exactly one electron and such N exists, their bond becomes double and the N gets
// a +1 charge. It returns true if the change was made.
func chargeNeighborN(at *Atom, electrons []int) bool {
	if len(electrons) != 1 || electrons[0] != 1 {
		return false
	}
	for i, na := range at.Neighbors() {
		if na.Symbol != "N" || na.Charge != 0 {
			continue
		}
		if e := missingElectrons(na, symbolValences["N"]); e[0] != 0 {
			continue
		}
		at.Bonds[i].Order = 2
		na.Charge = 1
		return true
	}
	return false
}

// missingElectrons returns, for each allowed valence, the difference between the valence and
// the current bond-order sum of the atom, corrected by its formal charge.
// A cation has one bond more than its neutral form, an anion one less.
func missingElectrons(at *Atom, valences []int) []int {
	vtot := at.Valence() - at.Charge
	ret := make([]int, 0, len(valences))
	for _, v := range valences {
		ret = append(ret, v-vtot)
	}
	return ret
}

// minCommon returns the smallest value present in both slices, and whether there is any.
func minCommon(a, b []int) (int, bool) {
	best := math.MaxInt
	found := false
	for _, v := range a {
		for _, w := range b {
			if v == w && v < best {
				best = v
				found = true
			}
		}
	}
	return best, found
}
