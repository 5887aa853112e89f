/*
 * residues.go, part of goifp.
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
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ResidueID identifies a residue by name, number and chain.
type ResidueID struct {
	Name   string
	Number int
	Chain  string
}

// String returns the residue ID as NAMEnumber.chain, e.g. ASP129.A. The chain part
// is omitted if the chain is empty.
func (R ResidueID) String() string {
	if R.Chain == "" {
		return fmt.Sprintf("%s%d", R.Name, R.Number)
	}
	return fmt.Sprintf("%s%d.%s", R.Name, R.Number, R.Chain)
}

// Less orders residue IDs by chain, then number, then name.
func (R ResidueID) Less(o ResidueID) bool {
	if R.Chain != o.Chain {
		return R.Chain < o.Chain
	}
	if R.Number != o.Number {
		return R.Number < o.Number
	}
	return R.Name < o.Name
}

var residRE = regexp.MustCompile(`^(.*?)(-?\d+)$`)

// ParseResidueID parses strings in the format produced by ResidueID.String.
// The number is taken as the trailing digits of the part before the dot.
func ParseResidueID(s string) (ResidueID, error) {
	s = strings.TrimSpace(s)
	namenum, chain, _ := strings.Cut(s, ".")
	m := residRE.FindStringSubmatch(namenum)
	if m == nil {
		return ResidueID{}, newCError(true, "ParseResidueID", "no residue number in %q", s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return ResidueID{}, newCError(true, "ParseResidueID", "can't parse residue number in %q: %s", s, err.Error())
	}
	return ResidueID{Name: m[1], Number: n, Chain: chain}, nil
}

// Residue is a set of atoms in a topology sharing a ResidueID.
type Residue struct {
	ID    ResidueID
	Atoms []int
}

var waterNames = map[string]bool{
	"HOH": true, "WAT": true, "SOL": true, "H2O": true, "TIP": true,
	"TIP3": true, "TIP4": true, "TIP5": true, "T3P": true, "T4P": true, "SPC": true,
}

// IsWater returns true if the residue name is one commonly used for water molecules.
func (R ResidueID) IsWater() bool {
	return waterNames[strings.ToUpper(R.Name)]
}

var aminoacids = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true, "GLN": true, "GLU": true,
	"GLY": true, "HIS": true, "ILE": true, "LEU": true, "LYS": true, "MET": true, "PHE": true,
	"PRO": true, "SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true, "HID": true,
	"HIE": true, "HIP": true, "HSD": true, "HSE": true, "HSP": true, "CYX": true, "ASH": true,
	"GLH": true, "LYN": true, "MSE": true, "SEC": true, "PYL": true,
}

// IsAminoacid returns true if the residue name is that of a standard (or commonly
// protonation-renamed) aminoacid.
func (R ResidueID) IsAminoacid() bool {
	return aminoacids[strings.ToUpper(R.Name)]
}

// ResidueIDOf returns the ResidueID of the atom.
func ResidueIDOf(at *Atom) ResidueID {
	return ResidueID{Name: at.MolName, Number: at.MolID, Chain: at.Chain}
}

// Residues groups the atoms of the topology in residues. Residues are returned
// in the order of their first atom in the topology.
func (T *Topology) Residues() []Residue {
	pos := make(map[ResidueID]int)
	ret := make([]Residue, 0, len(T.Atoms)/10+1)
	for i, at := range T.Atoms {
		id := ResidueIDOf(at)
		p, ok := pos[id]
		if !ok {
			p = len(ret)
			pos[id] = p
			ret = append(ret, Residue{ID: id})
		}
		ret[p].Atoms = append(ret[p].Atoms, i)
	}
	return ret
}
