package chem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/goifp/v3"
)

func newAtoms(symbols ...string) []*Atom {
	ret := make([]*Atom, len(symbols))
	for i, s := range symbols {
		ret[i] = &Atom{Name: s, ID: i + 1, Symbol: s, MolName: "MOL", MolID: 1}
	}
	return ret
}

func TestAssignBondsWater(t *testing.T) {
	top := NewTopology("water", newAtoms("O", "H", "H"))
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0})
	require.NoError(t, err)
	require.NoError(t, AssignBonds(coords, top))
	assert.Len(t, top.Bonds(), 2)
	assert.Len(t, top.Atom(0).Bonds, 2)
	assert.Nil(t, top.Bond(1, 2))
	assert.NotNil(t, top.Bond(0, 2))
}

func TestAssignBondsSkipsMetals(t *testing.T) {
	top := NewTopology("zinc", newAtoms("Zn", "O"))
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 2.0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, AssignBonds(coords, top))
	assert.Empty(t, top.Bonds())

	bad := NewTopology("unknown", newAtoms("Xx", "O"))
	assert.Error(t, AssignBonds(coords, bad))
}

func TestRemoveBond(t *testing.T) {
	ats := newAtoms("C", "C", "C")
	b := NewBond(0, ats[0], ats[1], 1)
	NewBond(1, ats[1], ats[2], 1)
	require.NoError(t, RemoveBond(b))
	assert.Empty(t, ats[0].Bonds)
	assert.Len(t, ats[1].Bonds, 1)
	assert.Error(t, RemoveBond(b))
}

func TestBondOrdersCarboxylate(t *testing.T) {
	mols, err := SDFRead(strings.NewReader(sdfFixture))
	require.NoError(t, err)
	top := mols[0].Topology
	for _, at := range top.Atoms {
		at.Charge = 0
	}
	require.NoError(t, AssignBonds(mols[0].Coords[0], top))
	require.Len(t, top.Bonds(), 6)
	AssignBondOrders(top)
	var doubles, charged int
	for _, b := range top.Bonds() {
		if b.Order == 2 {
			doubles++
			assert.Equal(t, "O", b.Cross(top.Atom(1)).Symbol)
		}
	}
	for _, at := range top.Atoms {
		if at.Charge != 0 {
			charged++
			assert.Equal(t, "O", at.Symbol)
			assert.Equal(t, -1, at.Charge)
		}
	}
	assert.Equal(t, 1, doubles)
	assert.Equal(t, 1, charged)
	assert.Equal(t, -1, top.Charge())
}

// guanidinium of an arginine side chain, CD-NE(H)-CZ(NH1H2)(NH2H2), plus CD hydrogens.
func guanidinium() *Topology {
	ats := newAtoms("C", "N", "C", "N", "N", "H", "H", "H", "H", "H", "H", "H", "H")
	bonds := [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}, {1, 5}, {3, 6}, {3, 7}, {4, 8}, {4, 9}, {0, 10}, {0, 11}, {0, 12}}
	for i, b := range bonds {
		NewBond(i, ats[b[0]], ats[b[1]], 0)
	}
	return NewTopology("guanidinium", ats)
}

func TestBondOrdersGuanidinium(t *testing.T) {
	top := guanidinium()
	AssignBondOrders(top)
	assert.Equal(t, 1, top.Charge())
	cz := top.Atom(2)
	assert.Equal(t, 4, cz.Valence())
	var double *Bond
	for _, b := range cz.Bonds {
		if b.Order == 2 {
			require.Nil(t, double)
			double = b
		}
	}
	require.NotNil(t, double)
	n := double.Cross(cz)
	assert.Equal(t, "N", n.Symbol)
	assert.Equal(t, 1, n.Charge)
}

func TestBondOrdersAmmonium(t *testing.T) {
	ats := newAtoms("N", "C", "H", "H", "H", "H", "H", "H")
	for i, b := range [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 5}, {1, 6}, {1, 7}} {
		NewBond(i, ats[b[0]], ats[b[1]], 0)
	}
	top := NewTopology("methylammonium", ats)
	AssignBondOrders(top)
	assert.Equal(t, 1, top.Atom(0).Charge)
	assert.Equal(t, 1, top.Charge())
	for _, b := range top.Bonds() {
		assert.Equal(t, 1.0, b.Order)
	}
}

func TestAtomTree(t *testing.T) {
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0, 3, 0, 0, 10, 0, 0})
	require.NoError(t, err)
	tree := NewAtomTree(coords, nil)
	assert.Equal(t, []int{0, 1}, tree.Within(r3.Vec{X: -0.5}, 1.5))
	//inclusive
	assert.Equal(t, []int{1, 2}, tree.Within(r3.Vec{X: 2}, 1))
	//sorted by distance, not by index
	assert.Equal(t, []int{2, 1, 0}, tree.Within(r3.Vec{X: 2.8}, 3))
	i, d := tree.Nearest(r3.Vec{X: 9})
	assert.Equal(t, 3, i)
	assert.InDelta(t, 1.0, d, 1e-12)

	sub := NewAtomTree(coords, []int{2, 3})
	i, _ = sub.Nearest(r3.Vec{})
	assert.Equal(t, 2, i)
	empty := NewAtomTree(coords, []int{})
	assert.Empty(t, empty.Within(r3.Vec{}, 100))
	i, _ = empty.Nearest(r3.Vec{})
	assert.Equal(t, -1, i)
}

func TestMergeTopologies(t *testing.T) {
	water := NewTopology("water", newAtoms("O", "H", "H"))
	wc, err := v3.NewMatrix([]float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0})
	require.NoError(t, err)
	require.NoError(t, AssignBonds(wc, water))
	co := NewTopology("co", newAtoms("C", "O"))
	cc, err := v3.NewMatrix([]float64{0, 0, 0, 1.13, 0, 0})
	require.NoError(t, err)
	require.NoError(t, AssignBonds(cc, co))
	co.SetRings([][]int{{0, 1}})

	M := MergeTopologies("both", water, co)
	require.Equal(t, 5, M.Len())
	assert.Len(t, M.Bonds(), 3)
	assert.NotNil(t, M.Bond(3, 4))
	assert.Nil(t, M.Bond(2, 3))
	assert.True(t, M.InRing(3))
	assert.False(t, M.InRing(0))
	assert.Equal(t, 3, M.Atom(3).Index())

	//the originals are untouched
	M.Atom(0).Name = "OW"
	assert.Equal(t, "O", water.Atom(0).Name)
	assert.Len(t, water.Atom(0).Bonds, 2)
}
