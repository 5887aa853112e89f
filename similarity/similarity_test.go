package similarity

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bits(n uint, on ...uint) *bitset.BitSet {
	b := bitset.New(n)
	for _, i := range on {
		b.Set(i)
	}
	return b
}

var (
	lig = chem.ResidueID{Name: "LIG", Number: 1}
	asp = chem.ResidueID{Name: "ASP", Number: 12, Chain: "A"}
	phe = chem.ResidueID{Name: "PHE", Number: 40, Chain: "A"}
)

func col(t chem.ResidueID, rule string) fingerprint.Column {
	return fingerprint.Column{Pair: fingerprint.PairKey{Ligand: lig, Target: t}, Rule: rule}
}

// three frames over three columns:
//
//	1 1 0
//	1 0 0
//	1 1 1
func matrix(t *testing.T) *fingerprint.Matrix {
	cols := []fingerprint.Column{col(asp, "Cationic"), col(asp, "HBAcceptor"), col(phe, "PiStacking")}
	M, err := fingerprint.NewMatrix([]int{0, 1, 2}, cols, []*bitset.BitSet{bits(3, 0, 1), bits(3, 0), bits(3, 0, 1, 2)})
	require.NoError(t, err)
	return M
}

func TestTanimotoAndDice(t *testing.T) {
	a, b := bits(8, 0, 1, 2), bits(8, 1, 2, 3)
	assert.InDelta(t, 0.5, Tanimoto(a, b), 1e-12)
	assert.InDelta(t, 2.0/3.0, Dice(a, b), 1e-12)
	assert.Equal(t, 1.0, Tanimoto(a, a))
	assert.Equal(t, Tanimoto(a, b), Tanimoto(b, a))

	empty := bitset.New(0)
	assert.Equal(t, 0.0, Tanimoto(empty, bitset.New(8)))
	assert.Equal(t, 0.0, Dice(empty, empty))
	assert.Equal(t, 0.0, Tanimoto(a, bits(8, 5)))
}

func TestPairwise(t *testing.T) {
	S := Pairwise(matrix(t), Tanimoto)
	require.Equal(t, 3, S.SymmetricDim())
	assert.Equal(t, 1.0, S.At(0, 0))
	assert.InDelta(t, 0.5, S.At(0, 1), 1e-12)
	assert.InDelta(t, 2.0/3.0, S.At(2, 0), 1e-12)
	assert.InDelta(t, 1.0/3.0, S.At(1, 2), 1e-12)

	E, err := fingerprint.NewMatrix(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, Pairwise(E, Dice).SymmetricDim())
}

func TestCrossSimilarity(t *testing.T) {
	A := matrix(t)
	//same interactions, columns in a different order, plus one A never saw.
	cols := []fingerprint.Column{col(phe, "PiStacking"), col(asp, "Cationic"), col(phe, "Hydrophobic")}
	B, err := fingerprint.NewMatrix([]int{7, 8}, cols, []*bitset.BitSet{bits(3, 1), bits(3, 0, 2)})
	require.NoError(t, err)

	columns, ra, rb := Align(A, B)
	require.Len(t, columns, 4)
	assert.Equal(t, col(phe, "Hydrophobic"), columns[3])
	assert.Equal(t, []uint{0}, setBits(rb[0]))
	assert.Equal(t, []uint{2, 3}, setBits(rb[1]))
	assert.Equal(t, []uint{0, 1}, setBits(ra[0]))

	X := CrossSimilarity(A, B, Tanimoto)
	r, c := X.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	assert.Equal(t, 1.0, X.At(1, 0))
	assert.InDelta(t, 0.5, X.At(0, 0), 1e-12)
	assert.InDelta(t, 0.25, X.At(2, 1), 1e-12)
	assert.Equal(t, 0.0, X.At(0, 1))
}

func setBits(b *bitset.BitSet) []uint {
	var ret []uint
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		ret = append(ret, i)
	}
	return ret
}

func TestOccupancy(t *testing.T) {
	M := matrix(t)
	occ := Occupancy(M)
	require.Len(t, occ, 3)
	assert.InDelta(t, 1.0, occ[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, occ[1], 1e-12)
	assert.InDelta(t, 1.0/3.0, occ[2], 1e-12)

	cols, vals := Frequent(M, 0.5)
	assert.Equal(t, []fingerprint.Column{col(asp, "Cationic"), col(asp, "HBAcceptor")}, cols)
	assert.Len(t, vals, 2)
}

func TestCounts(t *testing.T) {
	M := matrix(t)
	byRule := CountByInteraction(M)
	require.Len(t, byRule, 3)
	assert.Equal(t, map[string]int{"Cationic": 1, "HBAcceptor": 1}, byRule[0])
	assert.Equal(t, map[string]int{"Cationic": 1, "HBAcceptor": 1, "PiStacking": 1}, byRule[2])

	byRes := CountByResidue(M)
	assert.Equal(t, map[chem.ResidueID]int{asp: 1}, byRes[1])
	assert.Equal(t, map[chem.ResidueID]int{asp: 2, phe: 1}, byRes[2])

	assert.Equal(t, []chem.ResidueID{asp, phe}, Residues(M))
}
