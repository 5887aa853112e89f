/*
 * sdf.go, part of goifp.
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

// Residue data given to the atoms of molecules read from SDF files, which
// don't carry residue information.
const (
	SDFResName  = "LIG"
	SDFResID    = 1
	SDFResChain = "G"
)

// SDFFileRead reads all the records in a V2000 SDF (or MOL) file. Each record is
// returned as a Molecule with one frame and its own topology, named after the
// record's title line. Bond orders are taken from the file, and bonds of type 4
// (aromatic) get order 1.5 and mark both atoms as aromatic.
func SDFFileRead(name string) ([]*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newCError(true, "SDFFileRead", "can't open %s: %s", name, err.Error())
	}
	defer f.Close()
	mols, err := SDFRead(f)
	return mols, errDecorate(err, "SDFFileRead")
}

// SDFRead reads all the records of a V2000 SDF from r. See SDFFileRead.
func SDFRead(r io.Reader) ([]*Molecule, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)
	var ret []*Molecule
	for {
		mol, err := sdfReadRecord(sc, len(ret)+1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "SDFRead")
		}
		ret = append(ret, mol)
	}
	if err := sc.Err(); err != nil {
		return nil, newCError(true, "SDFRead", "%s", err.Error())
	}
	if len(ret) == 0 {
		return nil, newCError(true, "SDFRead", "no molecules in SDF")
	}
	return ret, nil
}

func padTo(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func sdfInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// sdfCharges maps the charge codes of the V2000 atom block to formal charges.
var sdfCharges = map[int]int{1: 3, 2: 2, 3: 1, 5: -1, 6: -2, 7: -3}

// sdfReadRecord reads one record, up to and including its $$$$ line, if any.
// Returns io.EOF if there are no records left.
func sdfReadRecord(sc *bufio.Scanner, record int) (*Molecule, error) {
	var header [3]string
	for i := 0; i < 3; i++ {
		if !sc.Scan() {
			if i == 0 {
				return nil, io.EOF
			}
			return nil, newCError(true, "sdfReadRecord", "record %d: unexpected end of file in header", record)
		}
		header[i] = sc.Text()
		//blank lines between records
		if i == 0 && strings.TrimSpace(header[0]) == "" && record > 1 {
			i--
		}
	}
	if !sc.Scan() {
		return nil, newCError(true, "sdfReadRecord", "record %d: missing counts line", record)
	}
	counts := padTo(sc.Text(), 39)
	if strings.Contains(counts, "V3000") {
		return nil, newCError(true, "sdfReadRecord", "record %d: V3000 records are not supported", record)
	}
	natoms, err := sdfInt(counts[0:3])
	if err != nil {
		return nil, newCError(true, "sdfReadRecord", "record %d: bad atom count: %s", record, err.Error())
	}
	nbonds, err := sdfInt(counts[3:6])
	if err != nil {
		return nil, newCError(true, "sdfReadRecord", "record %d: bad bond count: %s", record, err.Error())
	}
	atoms := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		if !sc.Scan() {
			return nil, newCError(true, "sdfReadRecord", "record %d: unexpected end of file in atom block", record)
		}
		line := padTo(sc.Text(), 39)
		for _, f := range [][2]int{{0, 10}, {10, 20}, {20, 30}} {
			c, err := strconv.ParseFloat(strings.TrimSpace(line[f[0]:f[1]]), 64)
			if err != nil {
				return nil, newCError(true, "sdfReadRecord", "record %d: bad coordinates for atom %d: %s", record, i+1, err.Error())
			}
			coords = append(coords, c)
		}
		symbol := normalizeSymbol(line[31:34])
		at := &Atom{Name: symbol + strconv.Itoa(i+1), ID: i + 1, MolName: SDFResName, MolID: SDFResID,
			Chain: SDFResChain, Symbol: symbol, Occupancy: 1, Het: true}
		if code, err := sdfInt(line[36:39]); err == nil {
			at.Charge = sdfCharges[code]
		}
		atoms = append(atoms, at)
	}
	top := NewTopology(strings.TrimSpace(header[0]), atoms)
	for i := 0; i < nbonds; i++ {
		if !sc.Scan() {
			return nil, newCError(true, "sdfReadRecord", "record %d: unexpected end of file in bond block", record)
		}
		line := padTo(sc.Text(), 9)
		a1, err1 := sdfInt(line[0:3])
		a2, err2 := sdfInt(line[3:6])
		order, err3 := sdfInt(line[6:9])
		if err1 != nil || err2 != nil || err3 != nil || a1 < 1 || a2 < 1 || a1 > natoms || a2 > natoms {
			return nil, newCError(true, "sdfReadRecord", "record %d: bad bond line %q", record, sc.Text())
		}
		at1, at2 := atoms[a1-1], atoms[a2-1]
		o := float64(order)
		if order == 4 {
			o = 1.5
			at1.Aromatic = true
			at2.Aromatic = true
		}
		NewBond(i, at1, at2, o)
	}
	//properties block. The M  CHG lines replace the charges of the atom block.
	chgReset := false
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "$$$$") {
			break
		}
		if !strings.HasPrefix(line, "M  CHG") {
			continue
		}
		if !chgReset {
			for _, at := range atoms {
				at.Charge = 0
			}
			chgReset = true
		}
		fields := strings.Fields(line[6:])
		for j := 1; j+1 < len(fields); j += 2 {
			a, err1 := strconv.Atoi(fields[j])
			q, err2 := strconv.Atoi(fields[j+1])
			if err1 != nil || err2 != nil || a < 1 || a > natoms {
				return nil, newCError(true, "sdfReadRecord", "record %d: bad charge line %q", record, line)
			}
			atoms[a-1].Charge = q
		}
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, errDecorate(err, "sdfReadRecord")
	}
	mol, err := NewMolecule(top, []*v3.Matrix{m}, nil)
	return mol, errDecorate(err, "sdfReadRecord")
}
