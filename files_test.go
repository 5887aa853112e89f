package chem

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/goifp/v3"
)

const pdbFixture = `REMARK   a lysine fragment, a zinc ion and a water
MODEL        1
ATOM      1  N   LYS A  12       1.000   2.000   3.000  1.00 10.00           N1+
ATOM      2  CA  LYS A  12       2.000   2.000   3.000  1.00 11.00           C
HETATM    3  ZN  ZN  B 301       5.000   5.000   5.000  1.00 20.00          ZN2+
HETATM    4  O   HOH B 401      -1.500   0.250   0.000  1.00 30.00           O
ENDMDL
MODEL        2
ATOM      1  N   LYS A  12       1.100   2.000   3.000  1.00 10.00           N1+
ATOM      2  CA  LYS A  12       2.100   2.000   3.000  1.00 11.00           C
HETATM    3  ZN  ZN  B 301       5.100   5.000   5.000  1.00 20.00          ZN2+
HETATM    4  O   HOH B 401      -1.400   0.250   0.000  1.00 30.00           O
ENDMDL
END
`

const sdfFixture = `acetate
  goifp

  7  6  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.5000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    2.1000    1.0500    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    2.1000   -1.0500    0.0000 O   0  5  0  0  0  0  0  0  0  0  0  0
   -0.3600    1.0200    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3600   -0.5100    0.8800 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3600   -0.5100   -0.8800 H   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  2  3  2  0
  2  4  1  0
  1  5  1  0
  1  6  1  0
  1  7  1  0
M  CHG  1   4  -1
M  END
> <score>
-5.2

$$$$
pyrrole
  goifp

  5  5  0  0  0  0  0  0  0  0999 V2000
    1.2000    0.0000    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    0.3708    1.1413    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.9708    0.7053    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.9708   -0.7053    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    0.3708   -1.1413    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  4  0
  2  3  4  0
  3  4  4  0
  4  5  4  0
  5  1  4  0
M  END
$$$$
`

func TestPDBRead(t *testing.T) {
	mol, err := PDBRead(strings.NewReader(pdbFixture))
	require.NoError(t, err)
	require.Equal(t, 4, mol.Len())
	require.Len(t, mol.Coords, 2)

	n := mol.Atom(0)
	assert.Equal(t, "N", n.Name)
	assert.Equal(t, "LYS", n.MolName)
	assert.Equal(t, 12, n.MolID)
	assert.Equal(t, "A", n.Chain)
	assert.Equal(t, 1, n.Charge)
	assert.False(t, n.Het)

	zn := mol.Atom(2)
	assert.Equal(t, "Zn", zn.Symbol)
	assert.Equal(t, 2, zn.Charge)
	assert.True(t, zn.Het)
	assert.Equal(t, "HOH401.B", ResidueIDOf(mol.Atom(3)).String())

	assert.InDelta(t, 5.1, mol.Coords[1].At(2, 0), 1e-9)
	assert.InDelta(t, 30.0, mol.Bfactors[0][3], 1e-9)
	assert.Equal(t, 3, mol.Charge())
}

func TestPDBReadErrors(t *testing.T) {
	_, err := PDBRead(strings.NewReader("REMARK nothing\nEND\n"))
	assert.Error(t, err)

	//the second model lacks an atom
	lines := strings.Split(pdbFixture, "\n")
	short := strings.Join(append(append([]string{}, lines[:11]...), lines[12:]...), "\n")
	_, err = PDBRead(strings.NewReader(short))
	assert.Error(t, err)
}

func TestMoleculeTraj(t *testing.T) {
	mol, err := PDBRead(strings.NewReader(pdbFixture))
	require.NoError(t, err)
	frame := v3.Zeros(mol.Len())
	require.NoError(t, mol.Next(frame))
	assert.InDelta(t, 1.0, frame.At(0, 0), 1e-9)
	require.NoError(t, mol.Next(frame))
	assert.InDelta(t, 1.1, frame.At(0, 0), 1e-9)
	err = mol.Next(frame)
	var last LastFrameError
	require.True(t, errors.As(err, &last))
	assert.False(t, mol.Readable())
	mol.Rewind()
	assert.True(t, mol.Readable())
	assert.NoError(t, mol.Next(nil))

	assert.Error(t, mol.Next(v3.Zeros(2)))
}

func TestPDBWriteRead(t *testing.T) {
	mol, err := PDBRead(strings.NewReader(pdbFixture))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, PDBWrite(&buf, mol.Coords, mol, mol.Bfactors))
	back, err := PDBRead(&buf)
	require.NoError(t, err)
	require.Equal(t, mol.Len(), back.Len())
	require.Len(t, back.Coords, 2)
	for i := 0; i < mol.Len(); i++ {
		a, b := mol.Atom(i), back.Atom(i)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Symbol, b.Symbol)
		assert.Equal(t, a.Charge, b.Charge)
		assert.Equal(t, ResidueIDOf(a), ResidueIDOf(b))
		assert.Equal(t, a.Het, b.Het)
	}
	assert.InDelta(t, 0, mat3Diff(mol.Coords[1], back.Coords[1]), 1e-6)

	name := filepath.Join(t.TempDir(), "single.pdb")
	require.NoError(t, PDBFileWrite(name, mol.Coords[:1], mol, nil))
	single, err := PDBFileRead(name)
	require.NoError(t, err)
	assert.Len(t, single.Coords, 1)
	assert.Equal(t, name, single.Name())
}

func mat3Diff(a, b *v3.Matrix) float64 {
	var d float64
	for i := 0; i < a.NVecs(); i++ {
		d += Distance(a.Vec(i), b.Vec(i))
	}
	return d
}

func TestSDFRead(t *testing.T) {
	mols, err := SDFRead(strings.NewReader(sdfFixture))
	require.NoError(t, err)
	require.Len(t, mols, 2)

	acetate := mols[0]
	assert.Equal(t, "acetate", acetate.Name())
	assert.Equal(t, 7, acetate.Len())
	assert.Equal(t, -1, acetate.Charge())
	assert.Equal(t, -1, acetate.Atom(3).Charge)
	assert.Equal(t, 2.0, acetate.Bond(1, 2).Order)
	assert.Len(t, acetate.Bonds(), 6)
	assert.Equal(t, "LIG1.G", ResidueIDOf(acetate.Atom(0)).String())
	assert.InDelta(t, -1.05, acetate.Coords[0].At(3, 1), 1e-9)

	pyrrole := mols[1]
	assert.Equal(t, "pyrrole", pyrrole.Name())
	for _, at := range pyrrole.Atoms {
		assert.True(t, at.Aromatic)
	}
	assert.Equal(t, 1.5, pyrrole.Bond(0, 4).Order)
}

func TestSDFReadErrors(t *testing.T) {
	_, err := SDFRead(strings.NewReader(""))
	assert.Error(t, err)
	v3000 := "x\n\n\n  0  0  0     0  0            999 V3000\n"
	_, err = SDFRead(strings.NewReader(v3000))
	assert.Error(t, err)
	truncated := strings.Join(strings.Split(sdfFixture, "\n")[:8], "\n")
	_, err = SDFRead(strings.NewReader(truncated))
	assert.Error(t, err)
}

func TestSymbolFromName(t *testing.T) {
	cases := map[string]string{"CA": "C", "CD1": "C", "HG21": "H", "1HB": "H", "ZN": "Zn", "CL": "Cl", "OXT": "O", "SD": "S"}
	for name, want := range cases {
		got, err := symbolFromName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := symbolFromName("XX")
	assert.Error(t, err)
}
