/*
 * bonds.go, part of goifp.
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
	"sort"

	v3 "github.com/rmera/goifp/v3"
)

// constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond is a covalent bond between two atoms.
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Dist  float64
	Order float64 //Order 0 means undetermined
}

// Cross returns the atom bonded to origin through B.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //I think this got to be a programming error, so a panic is warranted.
}

// NewBond bonds at1 and at2 with a bond of the given order and index, and returns the bond.
func NewBond(index int, at1, at2 *Atom, order float64) *Bond {
	b := &Bond{Index: index, At1: at1, At2: at2, Order: order}
	at1.Bonds = append(at1.Bonds, b)
	at2.Bonds = append(at2.Bonds, b)
	return b
}

func sortBonds(b []*Bond) {
	sort.Slice(b, func(i, j int) bool { return b[i].Index < b[j].Index })
}

// return a new *Bond slice without b
func takefromslice(bonds []*Bond, b *Bond) []*Bond {
	newb := make([]*Bond, 0, len(bonds))
	for _, v := range bonds {
		if v != b {
			newb = append(newb, v)
		}
	}
	return newb
}

// RemoveBond removes b from both of its atoms.
func RemoveBond(b *Bond) error {
	lenb1 := len(b.At1.Bonds)
	lenb2 := len(b.At2.Bonds)
	b.At1.Bonds = takefromslice(b.At1.Bonds, b)
	b.At2.Bonds = takefromslice(b.At2.Bonds, b)
	if len(b.At1.Bonds) == lenb1 || len(b.At2.Bonds) == lenb2 {
		return newCError(true, "RemoveBond", "Failed to remove bond Index:%d from atoms %d and %d", b.Index, b.At1.index, b.At2.index)
	}
	return nil
}

// AssignBonds assigns bonds to a molecule based on a simple distance
// criterium, similar to that described in DOI:10.1186/1758-2946-3-33
// Metal ions are not bonded to anything, since in biomolecular structures
// they are better described as coordinated. Existing bonds are discarded.
// The order of the new bonds is left undetermined (0).
func AssignBonds(coord *v3.Matrix, mol *Topology) error {
	tot := mol.Len()
	if coord.NVecs() != tot {
		return newCError(true, "AssignBonds", "%d coordinates given for %d atoms", coord.NVecs(), tot)
	}
	mol.FillIndexes()
	maxcov := 0.0
	for i := 0; i < tot; i++ {
		at := mol.Atom(i)
		at.Bonds = nil
		if IsMetal(at.Symbol) {
			continue
		}
		cov, ok := symbolCovrad[at.Symbol]
		if !ok {
			return newCError(true, "AssignBonds", "Couldn't find the covalent radius for %s %d", at.Symbol, i)
		}
		if cov > maxcov {
			maxcov = cov
		}
	}
	tree := NewAtomTree(coord, nil)
	var nextIndex int
	for i := 0; i < tot; i++ {
		at1 := mol.Atom(i)
		if IsMetal(at1.Symbol) {
			continue
		}
		cov1 := symbolCovrad[at1.Symbol]
		p1 := coord.Vec(i)
		for _, j := range tree.Within(p1, cov1+maxcov+bondtol) {
			if j <= i {
				continue
			}
			at2 := mol.Atom(j)
			if IsMetal(at2.Symbol) {
				continue
			}
			d := Distance(p1, coord.Vec(j))
			if d < cov1+symbolCovrad[at2.Symbol]+bondtol && d > tooclose {
				b := NewBond(nextIndex, at1, at2, 0)
				b.Dist = d
				nextIndex++
			}
		}
	}

	//Now we check that no atom has too many bonds.
	for i := 0; i < tot; i++ {
		at := mol.Atom(i)
		max := symbolMaxBonds[at.Symbol]
		if max == 0 { //means there is not a specified number of bonds for this atom.
			continue
		}
		sort.Slice(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for len(at.Bonds) > max {
			err := RemoveBond(at.Bonds[len(at.Bonds)-1]) //we remove the longest bond
			if err != nil {
				return errDecorate(err, "AssignBonds")
			}
		}
	}
	return nil
}
