/*
 * files.go, part of goifp.
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
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/goifp/v3"
)

// symbolFromName tries to guess a chemical element symbol from a PDB atom name.
// It is mostly based on Amber/CHARMM names, and deals only with common bio-elements.
func symbolFromName(name string) (string, error) {
	name = strings.ToUpper(strings.TrimLeft(name, "0123456789"))
	if name == "" {
		return "", fmt.Errorf("symbolFromName: empty atom name")
	}
	//CA and CD are carbons in proteins.
	two := map[string]string{"CL": "Cl", "BR": "Br", "ZN": "Zn", "MG": "Mg", "FE": "Fe", "NA": "Na",
		"CU": "Cu", "MN": "Mn", "SE": "Se", "CO": "Co", "NI": "Ni"}
	if len(name) == 2 {
		if s, ok := two[name]; ok {
			return s, nil
		}
	}
	switch name[0] {
	case 'H', 'C', 'N', 'O', 'P', 'S', 'F', 'I', 'K':
		return string(name[0]), nil
	}
	return "", fmt.Errorf("symbolFromName: couldn't guess symbol from PDB name %q", name)
}

// normalizeSymbol puts a symbol in the usual case, i.e. "CL" becomes "Cl".
func normalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// parsePDBCharge parses charges in the PDB format, i.e. "1+" or "2-".
func parsePDBCharge(s string) int {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return 0
	}
	q, err := strconv.Atoi(s[:1])
	if err != nil {
		return 0
	}
	if s[1] == '-' {
		return -q
	}
	return q
}

// readPDBAtomLine parses a valid ATOM or HETATM line of a PDB file, and returns an Atom
// with the info except for the coordinates and b-factors, which are put in coords and
// returned, respectively.
func readPDBAtomLine(line string, coords []float64) (*Atom, []float64, float64, error) {
	at := new(Atom)
	var err error
	at.Het = strings.HasPrefix(line, "HETATM")
	at.ID, err = strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return nil, nil, 0, err
	}
	at.Name = strings.TrimSpace(line[12:16])
	//PDB says that pos. 17 is for other thing but it is
	//used for residue name in many cases
	at.MolName = strings.TrimSpace(line[17:21])
	at.Chain = strings.TrimSpace(line[21:22])
	at.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, nil, 0, err
	}
	coords, bfac, err := readPDBCoords(line, coords)
	if err != nil {
		return nil, nil, 0, err
	}
	//The occupancy is optional
	at.Occupancy, err = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	if err != nil {
		at.Occupancy = 1
	}
	at.Symbol = normalizeSymbol(line[76:78])
	at.Charge = parsePDBCharge(line[78:80])
	if at.Symbol == "" {
		at.Symbol, err = symbolFromName(at.Name)
		if err != nil {
			log.Printf("readPDBAtomLine: %s", err.Error())
		}
	}
	return at, coords, bfac, nil
}

// readPDBCoords appends the coordinates in line to coords and returns the b-factor.
// Missing b-factors are read as zero.
func readPDBCoords(line string, coords []float64) ([]float64, float64, error) {
	for _, f := range [][2]int{{30, 38}, {38, 46}, {46, 54}} {
		c, err := strconv.ParseFloat(strings.TrimSpace(line[f[0]:f[1]]), 64)
		if err != nil {
			return nil, 0, err
		}
		coords = append(coords, c)
	}
	bfac, err := strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	if err != nil {
		bfac = 0
	}
	return coords, bfac, nil
}

// PDBFileRead reads a PDB file. Returns a Molecule with one frame per model in the file.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, newCError(true, "PDBFileRead", "can't open %s: %s", pdbname, err.Error())
	}
	defer pdbfile.Close()
	mol, err := PDBRead(pdbfile)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead")
	}
	mol.SetName(pdbname)
	return mol, nil
}

// PDBRead reads a PDB file from an io.Reader. Returns a Molecule with one frame per model.
// The topology is taken from the first model, the following models must have the same atoms.
// Lines that are neither ATOM, HETATM, MODEL nor ENDMDL are ignored.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(pdb)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	molecule := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0, 300)}
	bfactors := [][]float64{make([]float64, 0, 100)}
	firstModel := true
	inModel := false
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if len(line) < 80 {
				line = line + strings.Repeat(" ", 80-len(line))
			}
			c := len(coords) - 1
			var bfac float64
			var err error
			if firstModel {
				var at *Atom
				at, coords[c], bfac, err = readPDBAtomLine(line, coords[c])
				if err == nil {
					molecule = append(molecule, at)
				}
			} else {
				coords[c], bfac, err = readPDBCoords(line, coords[c])
			}
			if err != nil {
				return nil, newCError(true, "PDBRead", "can't read line %d: %s", lineno, err.Error())
			}
			bfactors[c] = append(bfactors[c], bfac)
		case strings.HasPrefix(line, "MODEL"):
			if inModel {
				return nil, newCError(true, "PDBRead", "MODEL without ENDMDL at line %d", lineno)
			}
			inModel = true
			if len(coords[len(coords)-1]) > 0 {
				firstModel = false
				coords = append(coords, make([]float64, 0, 3*len(molecule)))
				bfactors = append(bfactors, make([]float64, 0, len(molecule)))
			}
		case strings.HasPrefix(line, "ENDMDL"):
			inModel = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newCError(true, "PDBRead", "error reading the PDB: %s", err.Error())
	}
	if len(molecule) == 0 {
		return nil, newCError(true, "PDBRead", "no atoms in PDB")
	}
	//A trailing MODEL record without atoms.
	if len(coords) > 1 && len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
		bfactors = bfactors[:len(bfactors)-1]
	}
	mcoords := make([]*v3.Matrix, len(coords))
	for i, c := range coords {
		var err error
		if len(c) != 3*len(molecule) {
			return nil, newCError(true, "PDBRead", "model %d has %d atoms, the first one has %d", i+1, len(c)/3, len(molecule))
		}
		mcoords[i], err = v3.NewMatrix(c)
		if err != nil {
			return nil, errDecorate(err, "PDBRead")
		}
	}
	mol, err := NewMolecule(NewTopology("", molecule), mcoords, bfactors)
	return mol, errDecorate(err, "PDBRead")
}

// PDBFileWrite writes the coordinates, one model per frame, and the atoms in mol to
// a PDB file with the given name. bfact can be nil.
func PDBFileWrite(name string, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	out, err := os.Create(name)
	if err != nil {
		return newCError(true, "PDBFileWrite", "can't create %s: %s", name, err.Error())
	}
	defer out.Close()
	return errDecorate(PDBWrite(out, coords, mol, bfact), "PDBFileWrite")
}

// PDBWrite writes the coordinates, one model per frame, and the atoms in mol, in PDB format.
func PDBWrite(out io.Writer, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	w := bufio.NewWriter(out)
	fmt.Fprint(w, "REMARK     WRITTEN WITH GOIFP\n")
	for j, c := range coords {
		if c.NVecs() != mol.Len() {
			return newCError(true, "PDBWrite", "frame %d has %d coordinates, the molecule has %d atoms", j, c.NVecs(), mol.Len())
		}
		if len(coords) > 1 {
			fmt.Fprintf(w, "MODEL     %4d\n", j+1)
		}
		chainprev := mol.Atom(0).Chain
		for i := 0; i < mol.Len(); i++ {
			at := mol.Atom(i)
			if at.Chain != chainprev {
				fmt.Fprint(w, "TER\n")
				chainprev = at.Chain
			}
			first := "ATOM"
			if at.Het {
				first = "HETATM"
			}
			var bf float64
			if len(bfact) > j && len(bfact[j]) > i {
				bf = bfact[j][i]
			}
			name := at.Name
			//4-char names start at column 13, the others at 14.
			if len(name) < 4 {
				name = " " + name
			}
			chain := at.Chain
			if chain == "" {
				chain = " "
			}
			v := c.Vec(i)
			_, err := fmt.Fprintf(w, "%-6s%5d %-4s %-4s%1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%2s\n", first, at.ID, name, at.MolName, chain[:1],
				at.MolID, v.X, v.Y, v.Z, at.Occupancy, bf, strings.ToUpper(at.Symbol), formatPDBCharge(at.Charge))
			if err != nil {
				return newCError(true, "PDBWrite", "can't write atom %d: %s", i, err.Error())
			}
		}
		if len(coords) > 1 {
			fmt.Fprint(w, "ENDMDL\n")
		}
	}
	fmt.Fprint(w, "END\n")
	if err := w.Flush(); err != nil {
		return newCError(true, "PDBWrite", "%s", err.Error())
	}
	return nil
}

func formatPDBCharge(q int) string {
	switch {
	case q > 0:
		return fmt.Sprintf("%d+", q)
	case q < 0:
		return fmt.Sprintf("%d-", -q)
	}
	return ""
}
