package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/goccy/go-json"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/ifpio"
	"github.com/rmera/goifp/traj/dcd"
	"github.com/rmera/goifp/traj/stf"
	v3 "github.com/rmera/goifp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "goifp", cmd.Use)
	for _, f := range []string{"config", "log-level", "workers"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(f), f)
	}
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "dock", "similarity", "rules"})

	_, err := execute(t, "run")
	assert.Error(t, err, "--top is required")
	_, err = execute(t, "--log-level", "loud", "rules")
	assert.Error(t, err)
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "--log-level", "error", "rules")
	require.NoError(t, err)
	var infos []ruleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 16)
	assert.Equal(t, "Hydrophobic", infos[0].Name)
	assert.True(t, infos[0].Default)
	assert.Equal(t, 4.5, infos[0].MaxDistance)
	assert.NotNil(t, infos[0].Params)
}

func TestSimilarityCommand(t *testing.T) {
	lig := chem.ResidueID{Name: "LIG", Number: 1}
	asp := chem.ResidueID{Name: "ASP", Number: 3}
	cols := []fingerprint.Column{
		{Pair: fingerprint.PairKey{Ligand: lig, Target: asp}, Rule: "Cationic"},
		{Pair: fingerprint.PairKey{Ligand: lig, Target: asp}, Rule: "HBDonor"},
	}
	a, b := bitset.New(2).Set(0), bitset.New(2).Set(0).Set(1)
	M, err := fingerprint.NewMatrix([]int{0, 1}, cols, []*bitset.BitSet{a, b})
	require.NoError(t, err)
	table := filepath.Join(t.TempDir(), "ifp.tsv.zst")
	require.NoError(t, ifpio.WriteTableFile(table, M))

	out, err := execute(t, "--log-level", "error", "similarity", "--table", table, "--occupancy", "0.9")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Frame\t0\t1", lines[0])
	assert.Equal(t, "0\t1.000\t0.500", lines[1])
	assert.Contains(t, out, "LIG1-ASP3:Cationic\t1.000")
	assert.NotContains(t, out, "HBDonor\t")

	_, err = execute(t, "similarity", "--table", table, "--metric", "cosine")
	assert.Error(t, err)
}

func TestPoseFrames(t *testing.T) {
	atom := func(name, sym, res string, id int) *chem.Atom {
		return &chem.Atom{Name: name, Symbol: sym, MolName: res, MolID: id}
	}
	protTop := chem.NewTopology("prot", []*chem.Atom{atom("CA", "C", "ALA", 1), atom("CB", "C", "ALA", 1)})
	pc, _ := v3.NewMatrix([]float64{0, 0, 0, 1.53, 0, 0})
	protein, err := chem.NewMolecule(protTop, []*v3.Matrix{pc}, nil)
	require.NoError(t, err)

	var poses []*chem.Molecule
	for i := 0; i < 2; i++ {
		top := chem.NewTopology("pose", []*chem.Atom{atom("C1", "C", "LIG", 1), atom("C2", "C", "LIG", 1)})
		c, _ := v3.NewMatrix([]float64{5 + float64(i), 0, 0, 6.5 + float64(i), 0, 0})
		p, err := chem.NewMolecule(top, []*v3.Matrix{c}, nil)
		require.NoError(t, err)
		poses = append(poses, p)
	}
	frames, err := poseFrames(protein, poses)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 1, frames[1].Index)
	assert.Equal(t, 4, frames[1].Structure.Len())
	assert.Equal(t, 6.0, frames[1].Coords.At(2, 0))

	lig, tgt, err := poseSelection(protein.Len(), "resname ALA")(frames[0].Structure)
	require.NoError(t, err)
	require.Len(t, lig, 1)
	assert.Equal(t, []int{2, 3}, lig[0].Atoms)
	require.Len(t, tgt, 1)
	assert.Equal(t, "ALA", tgt[0].ID.Name)

	_, _, err = poseSelection(4, "all")(frames[0].Structure)
	assert.Error(t, err)
}

const twoResiduePoses = `@<TRIPOS>MOLECULE
pose1
 4 2
SMALL
@<TRIPOS>ATOM
 1 C1 5.0 0.0 0.0 C.3 1 LIG1
 2 C2 6.5 0.0 0.0 C.3 1 LIG1
 3 C3 8.0 0.0 0.0 C.3 2 LIG2
 4 C4 9.5 0.0 0.0 C.3 2 LIG2
@<TRIPOS>BOND
 1 1 2 1
 2 3 4 1
@<TRIPOS>MOLECULE
pose2
 4 2
SMALL
@<TRIPOS>ATOM
 1 C1 5.5 0.0 0.0 C.3 1 LIG1
 2 C2 7.0 0.0 0.0 C.3 1 LIG1
 3 C3 8.5 0.0 0.0 C.3 2 LIG2
 4 C4 10.0 0.0 0.0 C.3 2 LIG2
@<TRIPOS>BOND
 1 1 2 1
 2 3 4 1
`

func TestReadPosesMol2(t *testing.T) {
	name := filepath.Join(t.TempDir(), "poses.MOL2")
	require.NoError(t, os.WriteFile(name, []byte(twoResiduePoses), 0o644))
	poses, err := readPoses(name)
	require.NoError(t, err)
	require.Len(t, poses, 2)

	protTop := chem.NewTopology("prot", []*chem.Atom{{Name: "CA", Symbol: "C", MolName: "ALA", MolID: 1}})
	pc, _ := v3.NewMatrix([]float64{0, 0, 0})
	protein, err := chem.NewMolecule(protTop, []*v3.Matrix{pc}, nil)
	require.NoError(t, err)
	frames, err := poseFrames(protein, poses)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	lig, _, err := poseSelection(protein.Len(), "resname ALA")(frames[1].Structure)
	require.NoError(t, err)
	require.Len(t, lig, 2)
	assert.Equal(t, "LIG1", lig[0].ID.String())
	assert.Equal(t, []int{1, 2}, lig[0].Atoms)
	assert.Equal(t, "LIG2", lig[1].ID.String())
	assert.Equal(t, []int{3, 4}, lig[1].Atoms)

	_, err = readPoses(filepath.Join(t.TempDir(), "missing.sdf"))
	assert.Error(t, err)
}

func TestOpenTraj(t *testing.T) {
	dir := t.TempDir()
	c, _ := v3.NewMatrix([]float64{1, 2, 3, 4, 5, 6})

	dw, err := dcd.NewWriter(filepath.Join(dir, "t.DCD"), 2)
	require.NoError(t, err)
	require.NoError(t, dw.WNext(c))
	require.NoError(t, dw.Close())
	sw, err := stf.NewWriter(filepath.Join(dir, "t.stf"), 2, nil)
	require.NoError(t, err)
	require.NoError(t, sw.WNext(c))
	require.NoError(t, sw.Close())

	for _, name := range []string{"t.DCD", "t.stf"} {
		traj, closeTraj, err := openTraj(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, 2, traj.Len())
		got := v3.Zeros(2)
		require.NoError(t, traj.Next(got))
		assert.InDelta(t, 5.0, got.At(1, 1), 1e-5)
		closeTraj()
		assert.False(t, traj.Readable())
	}
	_, _, err = openTraj(filepath.Join(dir, "missing.dcd"))
	assert.Error(t, err)
}
