/*
 * mol2.go, part of goifp.
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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/goifp/v3"
)

// Mol2FileRead reads all the molecules in a Tripos MOL2 file. Each MOLECULE record
// is returned as a Molecule with one frame and its own topology. Atoms are grouped in
// residues by their substructure name ("ASP129", "LIG1.G"), and only the bonds
// between atoms of the same residue are kept.
//
// Bond types 1, 2 and 3 give those orders, "am" gives 1, "ar" gives 1.5 and marks
// both atoms as aromatic, and "un" or "du" leave the order undetermined (0), so it
// can be inferred later. Bonds of type "nc" are ignored. Formal charges are taken
// from the atom types: N.4 is +1, carboxylate and phosphate oxygens (O.co2) get -1
// on all but one of them, and a C.cat carbon gives +1 to one of its nitrogens.
func Mol2FileRead(name string) ([]*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newCError(true, "Mol2FileRead", "can't open %s: %s", name, err.Error())
	}
	defer f.Close()
	mols, err := Mol2Read(f)
	return mols, errDecorate(err, "Mol2FileRead")
}

// Mol2Read reads all the MOLECULE records of a MOL2 file from r. See Mol2FileRead.
func Mol2Read(r io.Reader) ([]*Molecule, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)
	var ret []*Molecule
	var cur *mol2Record
	section := ""
	line := 0
	finish := func() error {
		if cur == nil {
			return nil
		}
		mol, err := cur.molecule()
		if err != nil {
			return err
		}
		ret = append(ret, mol)
		return nil
	}
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, "@<TRIPOS>") {
			section = strings.TrimPrefix(text, "@<TRIPOS>")
			if section == "MOLECULE" {
				if err := finish(); err != nil {
					return nil, errDecorate(err, "Mol2Read")
				}
				cur = &mol2Record{record: len(ret) + 1, ids: make(map[int]int)}
			}
			continue
		}
		if cur == nil {
			continue
		}
		var err error
		switch section {
		case "MOLECULE":
			err = cur.header(text)
		case "ATOM":
			err = cur.atom(text)
		case "BOND":
			err = cur.bond(text)
		}
		if err != nil {
			return nil, newCError(true, "Mol2Read", "line %d: %s", line, err.Error())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newCError(true, "Mol2Read", "%s", err.Error())
	}
	if err := finish(); err != nil {
		return nil, errDecorate(err, "Mol2Read")
	}
	if len(ret) == 0 {
		return nil, newCError(true, "Mol2Read", "no molecules in MOL2")
	}
	return ret, nil
}

type mol2Bond struct {
	a1, a2 int
	kind   string
}

// mol2Record accumulates one MOLECULE record.
type mol2Record struct {
	record         int
	headerLines    int
	name           string
	natoms, nbonds int
	atoms          []*Atom
	types          []string
	coords         []float64
	ids            map[int]int //atom_id to position
	bonds          []mol2Bond
}

func (m *mol2Record) errorf(format string, args ...interface{}) error {
	args = append([]interface{}{m.record}, args...)
	return newCError(true, "mol2Record", "record %d: "+format, args...)
}

func (m *mol2Record) header(text string) error {
	m.headerLines++
	switch m.headerLines {
	case 1:
		m.name = text
	case 2:
		f := strings.Fields(text)
		var err error
		if m.natoms, err = strconv.Atoi(f[0]); err != nil {
			return m.errorf("bad atom count %q", f[0])
		}
		if len(f) > 1 {
			if m.nbonds, err = strconv.Atoi(f[1]); err != nil {
				return m.errorf("bad bond count %q", f[1])
			}
		}
	}
	return nil
}

// mol2Symbol returns the element of a Tripos atom type, like C.ar or Cl.
func mol2Symbol(atype string) string {
	sym, _, _ := strings.Cut(atype, ".")
	return normalizeSymbol(sym)
}

// mol2Residue builds the residue of an atom from the substructure id and name
// columns. Names without a number take it from the id.
func mol2Residue(substID, substName string) ResidueID {
	if substName == "" {
		return ResidueID{Name: SDFResName, Number: SDFResID, Chain: SDFResChain}
	}
	if id, err := ParseResidueID(substName); err == nil {
		return id
	}
	n, err := strconv.Atoi(substID)
	if err != nil {
		n = SDFResID
	}
	name, chain, _ := strings.Cut(substName, ".")
	return ResidueID{Name: name, Number: n, Chain: chain}
}

func (m *mol2Record) atom(text string) error {
	f := strings.Fields(text)
	if len(f) < 6 {
		return m.errorf("atom line with %d fields", len(f))
	}
	id, err := strconv.Atoi(f[0])
	if err != nil {
		return m.errorf("bad atom id %q", f[0])
	}
	if _, ok := m.ids[id]; ok {
		return m.errorf("atom id %d repeated", id)
	}
	for _, c := range f[2:5] {
		x, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return m.errorf("bad coordinates for atom %d: %s", id, err.Error())
		}
		m.coords = append(m.coords, x)
	}
	var substID, substName string
	if len(f) > 6 {
		substID = f[6]
	}
	if len(f) > 7 {
		substName = f[7]
	}
	res := mol2Residue(substID, substName)
	at := &Atom{Name: f[1], ID: id, MolName: res.Name, MolID: res.Number, Chain: res.Chain,
		Symbol: mol2Symbol(f[5]), Occupancy: 1, Het: !res.IsAminoacid()}
	if f[5] == "N.4" {
		at.Charge = 1
	}
	m.ids[id] = len(m.atoms)
	m.atoms = append(m.atoms, at)
	m.types = append(m.types, f[5])
	return nil
}

func (m *mol2Record) bond(text string) error {
	f := strings.Fields(text)
	if len(f) < 4 {
		return m.errorf("bond line with %d fields", len(f))
	}
	a1, err1 := strconv.Atoi(f[1])
	a2, err2 := strconv.Atoi(f[2])
	if err1 != nil || err2 != nil {
		return m.errorf("bad bond line %q", text)
	}
	m.bonds = append(m.bonds, mol2Bond{a1: a1, a2: a2, kind: strings.ToLower(f[3])})
	return nil
}

var mol2Orders = map[string]float64{"1": 1, "2": 2, "3": 3, "am": 1, "ar": 1.5, "un": 0, "du": 0}

func (m *mol2Record) molecule() (*Molecule, error) {
	if len(m.atoms) != m.natoms {
		return nil, m.errorf("%d atoms declared but %d read", m.natoms, len(m.atoms))
	}
	if len(m.bonds) != m.nbonds {
		return nil, m.errorf("%d bonds declared but %d read", m.nbonds, len(m.bonds))
	}
	top := NewTopology(m.name, m.atoms)
	index := 0
	for _, b := range m.bonds {
		i, ok1 := m.ids[b.a1]
		j, ok2 := m.ids[b.a2]
		if !ok1 || !ok2 {
			return nil, m.errorf("bond between unknown atoms %d and %d", b.a1, b.a2)
		}
		order, ok := mol2Orders[b.kind]
		if !ok {
			continue
		}
		at1, at2 := m.atoms[i], m.atoms[j]
		if ResidueIDOf(at1) != ResidueIDOf(at2) {
			continue
		}
		if order == 1.5 && !m.charged(i) && !m.charged(j) {
			at1.Aromatic = true
			at2.Aromatic = true
		}
		NewBond(index, at1, at2, order)
		index++
	}
	m.fixCharged(top)
	c, err := v3.NewMatrix(m.coords)
	if err != nil {
		return nil, errDecorate(err, "mol2Record")
	}
	mol, err := NewMolecule(top, []*v3.Matrix{c}, nil)
	return mol, errDecorate(err, "mol2Record")
}

// charged returns true for atoms whose "ar" bonds describe a delocalized charge
// rather than an aromatic ring.
func (m *mol2Record) charged(i int) bool {
	return m.types[i] == "O.co2" || m.types[i] == "C.cat"
}

// fixCharged turns the delocalized bonds of carboxylates, phosphates and guanidinium
// groups into one double bond, with the charge on the other, singly bonded atoms.
func (m *mol2Record) fixCharged(top *Topology) {
	for i, at := range top.Atoms {
		var partners []*Bond
		var charge int
		switch {
		case m.types[i] == "C.cat":
			charge = 1
			for _, b := range at.Bonds {
				if b.Cross(at).Symbol == "N" {
					partners = append(partners, b)
				}
			}
		default:
			charge = -1
			for _, b := range at.Bonds {
				if m.types[b.Cross(at).index] == "O.co2" {
					partners = append(partners, b)
				}
			}
		}
		if len(partners) == 0 {
			continue
		}
		for k, b := range partners {
			o := b.Cross(at)
			if k == 0 {
				b.Order = 2
				if charge > 0 {
					//the nitrogen of the double bond carries the charge
					o.Charge = charge
				}
				continue
			}
			b.Order = 1
			if charge < 0 {
				o.Charge = charge
			}
		}
	}
}
