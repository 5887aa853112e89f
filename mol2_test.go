package chem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An acetate and a methylammonium residue joined by a bond that must be dropped,
// a benzene whose substructure name has no number, and a guanidinium.
const mol2Fixture = `# two ligands
@<TRIPOS>MOLECULE
complex
 6 5 2
SMALL
USER_CHARGES

@<TRIPOS>ATOM
      1 C1          0.0000    0.0000    0.0000 C.3       1 ACE1        0.0000
      2 C2          1.5000    0.0000    0.0000 C.2       1 ACE1        0.0000
      3 O1          2.1000    1.1000    0.0000 O.co2     1 ACE1       -0.5000
      4 O2          2.1000   -1.1000    0.0000 O.co2     1 ACE1       -0.5000
      5 N1          5.0000    0.0000    0.0000 N.4       2 MAM2        1.0000
      6 C3          6.5000    0.0000    0.0000 C.3       2 MAM2        0.0000
@<TRIPOS>BOND
     1     1     2    1
     2     2     3   ar
     3     2     4   ar
     4     5     6    1
     5     1     5    1
@<TRIPOS>MOLECULE
benzene
 6 6
SMALL
NO_CHARGES
@<TRIPOS>ATOM
 1 C1 1.4000 0.0000 0.0000 C.ar 5 BEN
 2 C2 0.7000 1.2124 0.0000 C.ar 5 BEN
 3 C3 -0.7000 1.2124 0.0000 C.ar 5 BEN
 4 C4 -1.4000 0.0000 0.0000 C.ar 5 BEN
 5 C5 -0.7000 -1.2124 0.0000 C.ar 5 BEN
 6 C6 0.7000 -1.2124 0.0000 C.ar 5 BEN
@<TRIPOS>BOND
 1 1 2 ar
 2 2 3 ar
 3 3 4 ar
 4 4 5 ar
 5 5 6 ar
 6 6 1 ar
@<TRIPOS>MOLECULE
guanidinium
 4 3
SMALL
NO_CHARGES
@<TRIPOS>ATOM
 1 CZ 0.0000 0.0000 0.0000 C.cat 1 ARG7.A
 2 NE 1.3000 0.0000 0.0000 N.pl3 1 ARG7.A
 3 NH1 -0.6500 1.1300 0.0000 N.pl3 1 ARG7.A
 4 NH2 -0.6500 -1.1300 0.0000 N.pl3 1 ARG7.A
@<TRIPOS>BOND
 1 1 2 ar
 2 1 3 ar
 3 1 4 ar
`

func TestMol2Read(t *testing.T) {
	mols, err := Mol2Read(strings.NewReader(mol2Fixture))
	require.NoError(t, err)
	require.Len(t, mols, 3)

	cpx := mols[0]
	assert.Equal(t, "complex", cpx.Name())
	assert.Equal(t, 6, cpx.Len())
	res := cpx.Residues()
	require.Len(t, res, 2)
	assert.Equal(t, ResidueID{Name: "ACE", Number: 1}, res[0].ID)
	assert.Equal(t, []int{0, 1, 2, 3}, res[0].Atoms)
	assert.Equal(t, ResidueID{Name: "MAM", Number: 2}, res[1].ID)
	//the bond between residues is gone
	assert.Len(t, cpx.Bonds(), 4)
	assert.Nil(t, cpx.Bond(0, 4))
	assert.Equal(t, 2.0, cpx.Bond(1, 2).Order)
	assert.Equal(t, 1.0, cpx.Bond(1, 3).Order)
	assert.Equal(t, 0, cpx.Atom(2).Charge)
	assert.Equal(t, -1, cpx.Atom(3).Charge)
	assert.Equal(t, 1, cpx.Atom(4).Charge)
	assert.Equal(t, 0, cpx.Charge())
	for _, at := range cpx.Atoms {
		assert.False(t, at.Aromatic, at.Name)
	}
	assert.InDelta(t, -1.1, cpx.Coords[0].At(3, 1), 1e-9)

	benzene := mols[1]
	require.Len(t, benzene.Residues(), 1)
	assert.Equal(t, ResidueID{Name: "BEN", Number: 5}, benzene.Residues()[0].ID)
	assert.Len(t, benzene.Bonds(), 6)
	for _, at := range benzene.Atoms {
		assert.True(t, at.Aromatic)
		assert.Equal(t, "C", at.Symbol)
	}
	assert.Equal(t, 1.5, benzene.Bond(0, 5).Order)

	gua := mols[2]
	assert.Equal(t, "ARG7.A", ResidueIDOf(gua.Atom(0)).String())
	assert.False(t, gua.Atom(0).Het)
	assert.Equal(t, 1, gua.Charge())
	assert.Equal(t, 1, gua.Atom(1).Charge)
	assert.Equal(t, 2.0, gua.Bond(0, 1).Order)
	assert.Equal(t, 1.0, gua.Bond(0, 3).Order)
}

func TestMol2FileRead(t *testing.T) {
	name := filepath.Join(t.TempDir(), "ligands.mol2")
	require.NoError(t, os.WriteFile(name, []byte(mol2Fixture), 0o644))
	mols, err := Mol2FileRead(name)
	require.NoError(t, err)
	assert.Len(t, mols, 3)

	_, err = Mol2FileRead(filepath.Join(t.TempDir(), "missing.mol2"))
	assert.Error(t, err)
}

func TestMol2ReadErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"no records": "@<TRIPOS>ATOM\n 1 C1 0 0 0 C.3\n",
		"atom count": "@<TRIPOS>MOLECULE\nx\n 2 0\n@<TRIPOS>ATOM\n 1 C1 0 0 0 C.3\n",
		"bond count": "@<TRIPOS>MOLECULE\nx\n 1 1\n@<TRIPOS>ATOM\n 1 C1 0 0 0 C.3\n",
		"coords":     "@<TRIPOS>MOLECULE\nx\n 1 0\n@<TRIPOS>ATOM\n 1 C1 0 zero 0 C.3\n",
		"bond atoms": "@<TRIPOS>MOLECULE\nx\n 1 1\n@<TRIPOS>ATOM\n 1 C1 0 0 0 C.3\n@<TRIPOS>BOND\n 1 1 9 1\n",
		"repeated":   "@<TRIPOS>MOLECULE\nx\n 2 0\n@<TRIPOS>ATOM\n 1 C1 0 0 0 C.3\n 1 C2 1 0 0 C.3\n",
	}
	for name, in := range cases {
		_, err := Mol2Read(strings.NewReader(in))
		assert.Error(t, err, name)
	}
}
