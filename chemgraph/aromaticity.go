/*
 * aromaticity.go, part of goifp.
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

package chemgraph

import (
	"strings"

	chem "github.com/rmera/goifp"
)

// Names of the atoms in the aromatic rings of the standard aminoacids.
var aromaticTemplates = map[string][][]string{
	"PHE": {{"CG", "CD1", "CD2", "CE1", "CE2", "CZ"}},
	"TYR": {{"CG", "CD1", "CD2", "CE1", "CE2", "CZ"}},
	"TRP": {{"CG", "CD1", "NE1", "CE2", "CD2"}, {"CD2", "CE2", "CE3", "CZ2", "CZ3", "CH2"}},
	"HIS": {{"CG", "ND1", "CE1", "NE2", "CD2"}},
}

func init() {
	for _, h := range []string{"HID", "HIE", "HIP", "HSD", "HSE", "HSP", "HSH"} {
		aromaticTemplates[h] = aromaticTemplates["HIS"]
	}
}

// Aromaticity flags as aromatic the atoms of the aromatic rings of top, and returns those
// rings. The rings must have been set in top. Rings whose atoms are all already flagged as
// aromatic (for instance, from aromatic bonds in an SDF file) are kept as aromatic. Rings in
// standard aminoacids are identified by atom names. Other rings are tested with the 4n+2 rule,
// counting pi electrons from a Kekule structure. Rings fused with an aromatic ring are tested
// again until no new aromatic ring appears.
func Aromaticity(top *chem.Topology) [][]int {
	aromatic := make([]bool, len(top.Rings))
	for i, r := range top.Rings {
		aromatic[i] = allAromatic(top, r) || templateAromatic(top, r)
	}
	for changed := true; changed; {
		changed = false
		for i, r := range top.Rings {
			if aromatic[i] || isAminoacidRing(top, r) {
				continue
			}
			if huckel(top, r) {
				aromatic[i] = true
				changed = true
				for _, v := range r {
					top.Atom(v).Aromatic = true
				}
			}
		}
	}
	var ret [][]int
	for i, r := range top.Rings {
		if !aromatic[i] {
			continue
		}
		for _, v := range r {
			top.Atom(v).Aromatic = true
		}
		ret = append(ret, r)
	}
	return ret
}

func allAromatic(top *chem.Topology, r []int) bool {
	for _, v := range r {
		if !top.Atom(v).Aromatic {
			return false
		}
	}
	return true
}

func isAminoacidRing(top *chem.Topology, r []int) bool {
	return chem.ResidueIDOf(top.Atom(r[0])).IsAminoacid()
}

func templateAromatic(top *chem.Topology, r []int) bool {
	first := top.Atom(r[0])
	templates, ok := aromaticTemplates[strings.ToUpper(first.MolName)]
	if !ok {
		return false
	}
	names := make(map[string]bool, len(r))
	for _, v := range r {
		names[strings.ToUpper(top.Atom(v).Name)] = true
	}
	for _, t := range templates {
		if len(t) != len(names) {
			continue
		}
		found := true
		for _, n := range t {
			found = found && names[n]
		}
		if found {
			return true
		}
	}
	return false
}

// huckel counts the pi electrons of the ring and applies the 4n+2 rule.
func huckel(top *chem.Topology, r []int) bool {
	inRing := make(map[int]bool, len(r))
	for _, v := range r {
		inRing[v] = true
	}
	electrons := 0
	for _, v := range r {
		e, ok := piElectrons(top, top.Atom(v), inRing)
		if !ok {
			return false
		}
		electrons += e
	}
	return electrons >= 2 && (electrons-2)%4 == 0
}

// piElectrons returns the number of electrons the atom contributes to the pi system
// of the ring, and false if the atom can't be part of an aromatic ring.
func piElectrons(top *chem.Topology, at *chem.Atom, inRing map[int]bool) (int, bool) {
	var endo, fused, exoHetero bool
	for _, b := range at.Bonds {
		if b.Order < 1.5 {
			continue
		}
		n := b.Cross(at)
		switch {
		case inRing[n.Index()]:
			endo = true
		case top.InRing(n.Index()):
			fused = true
		case n.Symbol == "O" || n.Symbol == "S" || n.Symbol == "N":
			exoHetero = true
		default:
			return 0, false
		}
	}
	switch {
	case endo:
		return 1, true
	case fused:
		return 1, true
	case exoHetero:
		return 0, true
	}
	//only single bonds from here on.
	switch at.Symbol {
	case "N", "P":
		if at.Charge > 0 {
			return 0, false
		}
		return 2, true
	case "O", "S", "Se":
		return 2, true
	case "C":
		if at.Charge < 0 {
			return 2, true
		}
		if at.Charge > 0 {
			return 0, true
		}
	}
	return 0, false
}
