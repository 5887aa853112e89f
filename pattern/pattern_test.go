package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testGraph struct {
	elements []string
	charges  []int
	aromatic []bool
	bonds    map[[2]int]float64
	rings    [][]int
}

func newTestGraph(elements ...string) *testGraph {
	return &testGraph{
		elements: elements,
		charges:  make([]int, len(elements)),
		aromatic: make([]bool, len(elements)),
		bonds:    make(map[[2]int]float64),
	}
}

func (g *testGraph) bond(i, j int, order float64) *testGraph {
	g.bonds[[2]int{i, j}] = order
	g.bonds[[2]int{j, i}] = order
	return g
}

func (g *testGraph) hydrogens(heavy int, n int) *testGraph {
	for k := 0; k < n; k++ {
		g.elements = append(g.elements, "H")
		g.charges = append(g.charges, 0)
		g.aromatic = append(g.aromatic, false)
		g.bond(heavy, len(g.elements)-1, 1)
	}
	return g
}

func (g *testGraph) Len() int                   { return len(g.elements) }
func (g *testGraph) Element(i int) string       { return g.elements[i] }
func (g *testGraph) Charge(i int) int           { return g.charges[i] }
func (g *testGraph) Aromatic(i int) bool        { return g.aromatic[i] }
func (g *testGraph) Rings() [][]int             { return g.rings }
func (g *testGraph) BondOrder(i, j int) float64 { return g.bonds[[2]int{i, j}] }
func (g *testGraph) InRing(i int) bool {
	for _, r := range g.rings {
		for _, v := range r {
			if v == i {
				return true
			}
		}
	}
	return false
}
func (g *testGraph) Neighbors(i int) []int {
	var ret []int
	for j := range g.elements {
		if _, ok := g.bonds[[2]int{i, j}]; ok {
			ret = append(ret, j)
		}
	}
	return ret
}

// acetate: CH3-C(=O)-O-
func acetate() *testGraph {
	g := newTestGraph("C", "C", "O", "O").bond(0, 1, 1).bond(1, 2, 2).bond(1, 3, 1).hydrogens(0, 3)
	g.charges[3] = -1
	return g
}

// methylammonium: CH3-NH3+
func methylammonium() *testGraph {
	g := newTestGraph("N", "C").bond(0, 1, 1).hydrogens(0, 3).hydrogens(1, 3)
	g.charges[0] = 1
	return g
}

func benzene() *testGraph {
	g := newTestGraph("C", "C", "C", "C", "C", "C")
	for i := 0; i < 6; i++ {
		g.bond(i, (i+1)%6, float64(1+i%2))
		g.aromatic[i] = true
	}
	for i := 0; i < 6; i++ {
		g.hydrogens(i, 1)
	}
	g.rings = [][]int{{0, 1, 2, 3, 4, 5}}
	return g
}

func TestRange(t *testing.T) {
	var r *Range
	assert.True(t, r.ok(100))
	assert.True(t, Exactly(2).ok(2))
	assert.False(t, Exactly(2).ok(3))
	assert.True(t, AtLeast(1).ok(7))
	assert.False(t, AtLeast(1).ok(0))
	assert.True(t, Between(3, 4).ok(4))
	assert.False(t, Between(3, 4).ok(5))
}

func TestChargeQuery(t *testing.T) {
	cases := []struct {
		q      ChargeQuery
		charge int
		want   bool
	}{
		{AnyCharge, -2, true},
		{Neutral, 0, true},
		{Neutral, 1, false},
		{Positive, 1, true},
		{Negative, 1, false},
		{NotPositive, 0, true},
		{NotPositive, 1, false},
		{NotNegative, -1, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.q.ok(c.charge), "query %d charge %d", c.q, c.charge)
	}
}

func TestAcetate(t *testing.T) {
	g := acetate()
	assert.Equal(t, [][]int{{2}, {3}}, Find(g, Anion, nil))
	assert.Equal(t, [][]int{{0}}, Find(g, Hydrophobic, nil))
	assert.Equal(t, [][]int{{2}, {3}}, Find(g, HBondAcceptor, nil))
	assert.Empty(t, Find(g, HBondDonor, nil))
	assert.Empty(t, Find(g, Cation, nil))
	assert.Equal(t, [][]int{{2}, {3}}, Find(g, Chelating, nil))
	//restricted to a subset of atoms
	assert.Equal(t, [][]int{{3}}, Find(g, Anion, []int{3, 0}))
}

func TestMethylammonium(t *testing.T) {
	g := methylammonium()
	assert.Equal(t, [][]int{{0, 2}, {0, 3}, {0, 4}}, Find(g, HBondDonor, nil))
	assert.Equal(t, [][]int{{0}}, Find(g, Cation, nil))
	assert.Empty(t, Find(g, HBondAcceptor, nil))
	//the donor hydrogen has to be in the set too
	assert.Equal(t, [][]int{{0, 3}}, Find(g, HBondDonor, []int{0, 1, 3}))
}

func TestRings(t *testing.T) {
	g := benzene()
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4, 5}}, Find(g, AromaticRing, nil))
	assert.Empty(t, Find(g, AromaticRing, []int{0, 1, 2, 3, 4}))
	assert.Empty(t, Find(g, Rings("five", Yes, 5), nil))
	assert.Empty(t, Find(g, Rings("aliphatic", No), nil))
	hyd := Find(g, Hydrophobic, nil)
	assert.Len(t, hyd, 6)
}

func TestGroupsAreUnique(t *testing.T) {
	g := newTestGraph("C", "C").bond(0, 1, 1).hydrogens(0, 3).hydrogens(1, 3)
	cc := &Pattern{
		Name:  "CC",
		Atoms: []AtomQuery{{Elements: []string{"C"}}, {Elements: []string{"C"}}},
		Bonds: []BondQuery{{From: 0, To: 1, Order: 1}},
	}
	assert.Equal(t, [][]int{{0, 1}}, Find(g, cc, nil))
	cc.Bonds[0].Order = 2
	assert.Empty(t, Find(g, cc, nil))
}

func TestHalogens(t *testing.T) {
	//chloromethane and trifluoromethyl
	g := newTestGraph("C", "Cl").bond(0, 1, 1).hydrogens(0, 3)
	assert.Equal(t, [][]int{{0, 1}}, Find(g, XBondDonor, nil))
	cf3 := newTestGraph("C", "F", "F", "F", "C").bond(0, 1, 1).bond(0, 2, 1).bond(0, 3, 1).bond(0, 4, 1).hydrogens(4, 3)
	assert.Empty(t, Find(cf3, HBondAcceptor, nil))
	fm := newTestGraph("C", "F").bond(0, 1, 1).hydrogens(0, 3)
	assert.Equal(t, [][]int{{1}}, Find(fm, HBondAcceptor, nil))
}

func TestAmideNitrogen(t *testing.T) {
	//N-methylacetamide: CH3-C(=O)-NH-CH3
	g := newTestGraph("C", "C", "O", "N", "C").bond(0, 1, 1).bond(1, 2, 2).bond(1, 3, 1).bond(3, 4, 1)
	g.hydrogens(0, 3).hydrogens(3, 1).hydrogens(4, 3)
	assert.Equal(t, [][]int{{2}}, Find(g, HBondAcceptor, nil))
	assert.Equal(t, [][]int{{3, 8}}, Find(g, HBondDonor, nil))
}

func TestMetal(t *testing.T) {
	g := newTestGraph("Zn", "O").hydrogens(1, 2)
	assert.Equal(t, [][]int{{0}}, Find(g, Metal, nil))
	assert.Len(t, Builtins(), 11)

	//cysteine thiol and methionine thioether sulfurs coordinate too
	cys := newTestGraph("C", "S").bond(0, 1, 1).hydrogens(0, 3).hydrogens(1, 1)
	assert.Equal(t, [][]int{{1}}, Find(cys, Chelating, nil))
	met := newTestGraph("C", "S", "C").bond(0, 1, 1).bond(1, 2, 1).hydrogens(0, 3).hydrogens(2, 3)
	assert.Equal(t, [][]int{{1}}, Find(met, Chelating, nil))
	assert.Same(t, Metal, Builtins()["Metal"])
}
