package chem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/goifp/pattern"
)

func TestTopologyMatch(t *testing.T) {
	mols, err := SDFRead(strings.NewReader(sdfFixture))
	require.NoError(t, err)
	acetate := mols[0]
	assert.Equal(t, [][]int{{2}, {3}}, acetate.Match(pattern.Anion, nil))
	assert.Equal(t, [][]int{{0}}, acetate.Match(pattern.Hydrophobic, nil))
	assert.Equal(t, [][]int{{3}}, acetate.Match(pattern.Anion, []int{0, 1, 3}))
	assert.Empty(t, acetate.Match(pattern.HBondDonor, nil))

	pyrrole := mols[1]
	pyrrole.SetRings([][]int{{0, 1, 2, 3, 4}})
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}}, pyrrole.Match(pattern.AromaticRing, nil))
	assert.True(t, pyrrole.InRing(3))
}
