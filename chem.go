/*
 * chem.go, part of goifp.
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

	v3 "github.com/rmera/goifp/v3"
)

// Atom contains the atoms read except for the coordinates, which will be in a matrix
// and the b-factors, which are in a separate slice of float64.
type Atom struct {
	Name      string
	ID        int //serial number in the original file
	index     int //position in the topology, set by FillIndexes
	MolName   string
	MolID     int
	Chain     string
	Symbol    string
	Charge    int //formal charge
	Occupancy float64
	Aromatic  bool
	Het       bool // is hetatm in the pdb file?
	Bonds     []*Bond
}

//Atom methods

// Index returns the position of the atom in its topology.
func (A *Atom) Index() int {
	return A.index
}

// Copy returns a copy of the Atom object. Bonds are not copied.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	N.Bonds = nil
	return &N
}

// Neighbors returns the atoms bonded to A.
func (A *Atom) Neighbors() []*Atom {
	ret := make([]*Atom, 0, len(A.Bonds))
	for _, b := range A.Bonds {
		ret = append(ret, b.Cross(A))
	}
	return ret
}

// Valence returns the sum of the orders of the bonds of A. Bonds of unknown order
// count as single.
func (A *Atom) Valence() int {
	v := 0.0
	for _, b := range A.Bonds {
		if b.Order <= 0 {
			v++
			continue
		}
		v += b.Order
	}
	return int(v + 0.5)
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates and b-factors)
type Topology struct {
	Atoms []*Atom
	Rings [][]int //each ring is a slice of atom indexes, in ring order.
	name  string
	ring  map[int]bool
}

// NewTopology returns a Topology with the given atoms, and fills the atom indexes.
func NewTopology(name string, ats []*Atom) *Topology {
	top := &Topology{Atoms: ats, name: name}
	top.FillIndexes()
	return top
}

/*Topology methods*/

// Name returns the name of the topology, typically the file it was read from.
func (T *Topology) Name() string {
	return T.name
}

// SetName sets the name of the topology.
func (T *Topology) SetName(name string) {
	T.name = name
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic(fmt.Sprintf("Topology: Requested Atom %d out of bounds", i))
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Charge returns the sum of the formal charges of all atoms.
func (T *Topology) Charge() int {
	c := 0
	for _, v := range T.Atoms {
		c += v.Charge
	}
	return c
}

// FillIndexes sets the index of each atom to its position in the topology.
func (T *Topology) FillIndexes() {
	for i, v := range T.Atoms {
		v.index = i
	}
}

// SetRings replaces the rings of the topology.
func (T *Topology) SetRings(rings [][]int) {
	T.Rings = rings
	T.ring = make(map[int]bool)
	for _, r := range rings {
		for _, v := range r {
			T.ring[v] = true
		}
	}
}

// InRing returns true if the ith atom belongs to any ring.
func (T *Topology) InRing(i int) bool {
	return T.ring[i]
}

// Bonds returns each bond in the topology once, sorted by bond index.
func (T *Topology) Bonds() []*Bond {
	seen := make(map[*Bond]bool)
	ret := make([]*Bond, 0, len(T.Atoms))
	for _, at := range T.Atoms {
		for _, b := range at.Bonds {
			if seen[b] {
				continue
			}
			seen[b] = true
			ret = append(ret, b)
		}
	}
	sortBonds(ret)
	return ret
}

// Bond returns the bond between the atoms i and j, or nil if they are not bonded.
func (T *Topology) Bond(i, j int) *Bond {
	for _, b := range T.Atom(i).Bonds {
		if b.Cross(T.Atoms[i]).index == j {
			return b
		}
	}
	return nil
}

// MergeTopologies returns a new topology with copies of the atoms of tops, in order.
// Bonds and rings are copied, with indexes shifted to the new positions.
func MergeTopologies(name string, tops ...*Topology) *Topology {
	var ats []*Atom
	var rings [][]int
	offsets := make([]int, len(tops))
	for i, t := range tops {
		offsets[i] = len(ats)
		for _, at := range t.Atoms {
			ats = append(ats, at.Copy())
		}
		for _, r := range t.Rings {
			nr := make([]int, len(r))
			for j, v := range r {
				nr[j] = v + offsets[i]
			}
			rings = append(rings, nr)
		}
	}
	ret := NewTopology(name, ats)
	nbonds := 0
	for i, t := range tops {
		for _, b := range t.Bonds() {
			nb := NewBond(nbonds, ats[b.At1.index+offsets[i]], ats[b.At2.index+offsets[i]], b.Order)
			nb.Dist = b.Dist
			nbonds++
		}
	}
	if rings != nil {
		ret.SetRings(rings)
	}
	return ret
}

// Molecule contains all the info for a molecule in many frames: A topology
// and a set of coordinates and b-factors per frame. Molecule implements Traj,
// so a multi-model PDB file can be iterated like any trajectory.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
	current  int
}

// NewMolecule makes a molecule with the given topology and coordinates.
// It returns error if the number of atoms and coordinates don't match.
func NewMolecule(top *Topology, coords []*v3.Matrix, bfactors [][]float64) (*Molecule, error) {
	for i, c := range coords {
		if c.NVecs() != top.Len() {
			return nil, newCError(true, "NewMolecule", "frame %d has %d coordinates, the topology has %d atoms", i, c.NVecs(), top.Len())
		}
	}
	return &Molecule{Topology: top, Coords: coords, Bfactors: bfactors}, nil
}

// Readable returns true if there are frames left to read.
func (M *Molecule) Readable() bool {
	return M.current < len(M.Coords)
}

// Next puts the next frame of the molecule in output. If output is nil, the frame is skipped.
// Returns a LastFrameError when there are no frames left.
func (M *Molecule) Next(output *v3.Matrix, box ...[]float64) error {
	if !M.Readable() {
		return newLastFrameError(M.Name(), "Next")
	}
	if output != nil {
		if output.NVecs() != M.Len() {
			return newCError(true, "Next", "output matrix has %d vectors, the molecule has %d atoms", output.NVecs(), M.Len())
		}
		output.Copy(M.Coords[M.current])
	}
	M.current++
	return nil
}

// Rewind sets the molecule to read again from the first frame.
func (M *Molecule) Rewind() {
	M.current = 0
}

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// lastFrameError does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "molecule" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
