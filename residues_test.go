package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResidueID(t *testing.T) {
	cases := []struct {
		in   string
		want ResidueID
	}{
		{"ASP129.A", ResidueID{Name: "ASP", Number: 129, Chain: "A"}},
		{"LIG1", ResidueID{Name: "LIG", Number: 1}},
		{"HOH-5.W", ResidueID{Name: "HOH", Number: -5, Chain: "W"}},
		{" 1AB42.B ", ResidueID{Name: "1AB", Number: 42, Chain: "B"}},
	}
	for _, c := range cases {
		got, err := ParseResidueID(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got)
	}
	_, err := ParseResidueID("HOH.A")
	assert.Error(t, err)
}

func TestResidueIDString(t *testing.T) {
	id := ResidueID{Name: "TYR", Number: 38, Chain: "B"}
	assert.Equal(t, "TYR38.B", id.String())
	back, err := ParseResidueID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, back)
	assert.Equal(t, "LIG1", ResidueID{Name: "LIG", Number: 1}.String())
}

func TestResidueIDLess(t *testing.T) {
	a := ResidueID{Name: "ALA", Number: 10, Chain: "A"}
	b := ResidueID{Name: "GLY", Number: 2, Chain: "B"}
	c := ResidueID{Name: "GLY", Number: 10, Chain: "A"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Less(c))
	assert.False(t, a.Less(a))
}

func TestResidues(t *testing.T) {
	mk := func(res string, n int, chain string) *Atom {
		return &Atom{MolName: res, MolID: n, Chain: chain}
	}
	top := NewTopology("test", []*Atom{
		mk("ALA", 1, "A"), mk("ALA", 1, "A"), mk("HOH", 5, "W"), mk("ALA", 1, "A"), mk("GLY", 2, "A"),
	})
	res := top.Residues()
	require.Len(t, res, 3)
	assert.Equal(t, []int{0, 1, 3}, res[0].Atoms)
	assert.Equal(t, "HOH5.W", res[1].ID.String())
	assert.True(t, res[1].ID.IsWater())
	assert.False(t, res[1].ID.IsAminoacid())
	assert.True(t, res[2].ID.IsAminoacid())
}
