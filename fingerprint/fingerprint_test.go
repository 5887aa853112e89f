package fingerprint

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/pattern"
	"github.com/rmera/goifp/rules"
	v3 "github.com/rmera/goifp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/spatial/r3"
)

// stubStructure matches an atom with a pattern when the atom is named after the pattern.
type stubStructure struct {
	*chem.Topology
	calls atomic.Int64
}

func (s *stubStructure) Match(p *pattern.Pattern, within []int) [][]int {
	s.calls.Inc()
	var ret [][]int
	for _, i := range within {
		if s.Atom(i).Name == p.Name {
			ret = append(ret, []int{i})
		}
	}
	return ret
}

type stubAtom struct {
	role    string
	symbol  string
	resname string
	resid   int
}

func newStub(ats ...stubAtom) *stubStructure {
	atoms := make([]*chem.Atom, len(ats))
	for i, a := range ats {
		atoms[i] = &chem.Atom{Name: a.role, Symbol: a.symbol, MolName: a.resname, MolID: a.resid}
	}
	return &stubStructure{Topology: chem.NewTopology("stub", atoms)}
}

func coords(pos ...r3.Vec) *v3.Matrix {
	m := v3.Zeros(len(pos))
	for i, p := range pos {
		m.SetVec(i, p)
	}
	return m
}

// ionPair is a ligand residue with a hydrophobic carbon and a cation, and a target
// residue with a hydrophobic carbon and an anion.
func ionPair() *stubStructure {
	return newStub(
		stubAtom{"Hydrophobic", "C", "LIG", 1},
		stubAtom{"Cation", "N", "LIG", 1},
		stubAtom{"Hydrophobic", "C", "ASP", 2},
		stubAtom{"Anion", "O", "ASP", 2},
	)
}

// ionFrame returns the coordinates of ionPair with the hydrophobic carbons 4 A apart,
// and the charged atoms 3 A apart if salt is true, or 10 A otherwise.
func ionFrame(salt bool) *v3.Matrix {
	anion := r3.Vec{Y: 13}
	if salt {
		anion = r3.Vec{Y: 6}
	}
	return coords(r3.Vec{}, r3.Vec{Y: 3}, r3.Vec{X: 4}, anion)
}

func residues(s Structure) (lig, tgt []chem.Residue) {
	for _, r := range s.Residues() {
		if r.ID.Name == "LIG" {
			lig = append(lig, r)
		} else {
			tgt = append(tgt, r)
		}
	}
	return lig, tgt
}

func ionRules() []rules.Rule {
	return []rules.Rule{rules.NewHydrophobic(rules.DefaultHydrophobicParams()), rules.NewCationic(rules.DefaultIonicParams())}
}

func TestResolveCutoff(t *testing.T) {
	rs := ionRules()
	c, err := ResolveCutoff(0, rs)
	require.NoError(t, err)
	assert.Equal(t, 6.5, c)

	c, err = ResolveCutoff(0, append(rs, rules.NewWaterBridge(rules.DefaultHBondParams())))
	require.NoError(t, err)
	assert.Equal(t, 7.0, c)

	c, err = ResolveCutoff(4.5, rs)
	require.NoError(t, err)
	assert.Equal(t, 4.5, c)

	for _, bad := range []float64{-1, 4.4} {
		_, err = ResolveCutoff(bad, rs)
		assert.True(t, errors.Is(err, ErrConfig), bad)
		var cerr *ConfigError
		assert.True(t, errors.As(err, &cerr))
	}
}

func TestEvaluate(t *testing.T) {
	s := ionPair()
	lig, tgt := residues(s)
	E, err := NewEvaluator(16)
	require.NoError(t, err)

	hits, err := E.Evaluate(context.Background(), lig[0], tgt[0], Snapshot{s, ionFrame(false)}, ionRules())
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Len(t, hits["Hydrophobic"], 1)
	calls := s.calls.Load()
	assert.Equal(t, int64(4), calls)

	hits, err = E.Evaluate(context.Background(), lig[0], tgt[0], Snapshot{s, ionFrame(true)}, ionRules())
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, []int{1}, hits["Cationic"][0].LigandAtoms)
	assert.Equal(t, []int{3}, hits["Cationic"][0].TargetAtoms)
	assert.Equal(t, calls, s.calls.Load(), "groups must come from the cache")

	_, err = E.Evaluate(context.Background(), lig[0], tgt[0], Snapshot{s, coords(r3.Vec{})}, ionRules())
	assert.Error(t, err)

	noCache, err := NewEvaluator(0)
	require.NoError(t, err)
	_, err = noCache.Evaluate(context.Background(), lig[0], tgt[0], Snapshot{s, ionFrame(true)}, ionRules())
	require.NoError(t, err)
	assert.Equal(t, calls+4, s.calls.Load())

	_, err = NewEvaluator(-1)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestEvaluateWaterBridge(t *testing.T) {
	s := newStub(
		stubAtom{"HBondDonor", "N", "LIG", 1},
		stubAtom{"HBondAcceptor", "O", "HOH", 100},
		stubAtom{"HBondDonor", "N", "SER", 5},
	)
	//The stub gives single-atom groups, so the donors are their own hydrogens, which
	//makes the D-H...A angle undefined. A bespoke rule checks that waters reach Detect.
	rule := &waterRecorder{}
	lig, tgt := residues(s)
	var target chem.Residue
	for _, r := range tgt {
		if r.ID.Name == "SER" {
			target = r
		}
	}
	E, _ := NewEvaluator(0)
	_, err := E.Evaluate(context.Background(), lig[0], target, Snapshot{s, coords(r3.Vec{}, r3.Vec{X: 2.8}, r3.Vec{X: 5.6})}, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, rule.waters, 1)
	assert.Equal(t, 100, rule.waters[0].Residue.Number)
	assert.Len(t, rule.waters[0].Groups[rules.HBondAcceptor], 1)
}

type waterRecorder struct {
	waters []*rules.Side
}

func (w *waterRecorder) Name() string                 { return "WaterRecorder" }
func (w *waterRecorder) LigandPatterns() []rules.Role { return []rules.Role{rules.HBondDonor} }
func (w *waterRecorder) TargetPatterns() []rules.Role { return []rules.Role{rules.HBondDonor} }
func (w *waterRecorder) WaterPatterns() []rules.Role  { return []rules.Role{rules.HBondAcceptor} }
func (w *waterRecorder) MaxDistance() float64         { return 7 }
func (w *waterRecorder) Detect(lig, _ *rules.Side) []rules.Hit {
	w.waters = lig.Waters
	return nil
}

func TestAssemble(t *testing.T) {
	s := newStub(
		stubAtom{"Hydrophobic", "C", "LIG", 1},
		stubAtom{"Hydrophobic", "C", "LIG", 2},
		stubAtom{"Hydrophobic", "C", "ALA", 3},
		stubAtom{"Hydrophobic", "C", "VAL", 4},
	)
	pos := coords(r3.Vec{}, r3.Vec{X: 4}, r3.Vec{Y: 4}, r3.Vec{Y: 40})
	all := s.Residues()
	rs := ionRules()[:1]
	A := NewAssembler(must(NewEvaluator(0)))

	//all residues on both sides: no residue is paired with itself.
	res, err := A.Assemble(context.Background(), Frame{Index: 7, Snapshot: Snapshot{s, pos}}, all, all, rs, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Frame)
	id := func(i int) chem.ResidueID { return all[i].ID }
	want := []Column{
		{PairKey{id(0), id(1)}, "Hydrophobic"},
		{PairKey{id(0), id(2)}, "Hydrophobic"},
		{PairKey{id(1), id(0)}, "Hydrophobic"},
		{PairKey{id(2), id(0)}, "Hydrophobic"},
	}
	got := make([]Column, 0, len(res.Hits))
	for c := range res.Hits {
		got = append(got, c)
	}
	assert.ElementsMatch(t, want, got)

	_, err = A.Assemble(context.Background(), Frame{Snapshot: Snapshot{s, pos}}, all, all, rs, 3)
	assert.True(t, errors.Is(err, ErrConfig))

	_, err = A.Assemble(context.Background(), Frame{Snapshot: Snapshot{s, nil}}, all, all, rs, 0)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = A.Assemble(ctx, Frame{Snapshot: Snapshot{s, pos}}, all, all, rs, 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func frameResult(frame int, cols ...Column) *FrameResult {
	fr := &FrameResult{Frame: frame, Hits: make(map[Column][]rules.Hit)}
	for _, c := range cols {
		fr.Hits[c] = []rules.Hit{{Rule: c.Rule}}
	}
	return fr
}

func col(lig, tgt int, rule string) Column {
	return Column{Pair: PairKey{chem.ResidueID{Name: "LIG", Number: lig}, chem.ResidueID{Name: "ALA", Number: tgt}}, Rule: rule}
}

func TestColumnSpaceStates(t *testing.T) {
	C := NewColumnSpace()
	_, err := C.Matrix()
	var ns *NotSealedError
	assert.True(t, errors.As(err, &ns))
	assert.True(t, errors.Is(err, ErrNotSealed))

	require.NoError(t, C.Ingest(frameResult(0, col(1, 1, "Hydrophobic"))))
	err = C.Ingest(frameResult(0))
	assert.True(t, errors.Is(err, ErrDuplicateFrame))

	assert.False(t, C.Sealed())
	C.Seal()
	C.Seal()
	assert.True(t, C.Sealed())
	err = C.Ingest(frameResult(1, col(1, 2, "Hydrophobic")))
	var se *SealedStateError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Frame)
	assert.True(t, errors.Is(err, ErrSealed))

	assert.Equal(t, 1, C.ColumnCount())
	p, ok := C.Lookup(col(1, 1, "Hydrophobic"))
	assert.True(t, ok)
	assert.Equal(t, 0, p)
	_, ok = C.Lookup(col(1, 2, "Hydrophobic"))
	assert.False(t, ok)
	assert.Equal(t, []int{0}, C.Frames())
	assert.Len(t, C.Hits(0), 1)
	_, err = C.Matrix()
	assert.NoError(t, err)
}

func TestBackfillAndMonotonicity(t *testing.T) {
	C := NewColumnSpace()
	frames := [][]Column{
		{},
		{col(1, 1, "A")},
		{col(1, 2, "B"), col(1, 1, "A")},
		{col(1, 3, "C")},
		{},
	}
	prev := 0
	positions := make(map[Column]int)
	for i, cols := range frames {
		require.NoError(t, C.Ingest(frameResult(i, cols...)))
		n := C.ColumnCount()
		assert.GreaterOrEqual(t, n, prev)
		prev = n
		for c, p := range positions {
			q, ok := C.Lookup(c)
			require.True(t, ok)
			assert.Equal(t, p, q)
		}
		for _, c := range C.Columns() {
			positions[c], _ = C.Lookup(c)
		}
	}
	C.Seal()
	M, err := C.Matrix()
	require.NoError(t, err)
	require.Equal(t, 5, M.Rows())
	require.Equal(t, 3, M.Cols())
	for i, cols := range frames {
		want := make([]bool, 3)
		for _, c := range cols {
			p, _ := C.Lookup(c)
			want[p] = true
		}
		for j := 0; j < 3; j++ {
			assert.Equal(t, want[j], M.Bit(i, j), "frame %d column %d", i, j)
		}
	}
	d := M.Dense()
	r, c := d.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 1.0, d.At(2, 0))
	assert.Equal(t, 0.0, d.At(0, 0))
}

func TestCanonicalOrder(t *testing.T) {
	C := NewColumnSpace(CanonicalOrder(true))
	require.NoError(t, C.Ingest(frameResult(0, col(2, 1, "Hydrophobic"))))
	require.NoError(t, C.Ingest(frameResult(1, col(1, 1, "VdWContact"), col(1, 1, "HBDonor"))))
	C.Seal()
	assert.Equal(t, "Hydrophobic", C.Columns()[0].Rule)
	M, err := C.Matrix()
	require.NoError(t, err)
	assert.Equal(t, []Column{col(1, 1, "HBDonor"), col(1, 1, "VdWContact"), col(2, 1, "Hydrophobic")}, M.Columns())
	assert.False(t, M.Bit(0, 0))
	assert.True(t, M.Bit(0, 2))
	assert.True(t, M.Bit(1, 0))
	assert.True(t, M.Bit(1, 1))
	assert.False(t, M.Bit(1, 2))

	//the space keeps assignment positions, the matrix its own
	hyd := col(2, 1, "Hydrophobic")
	p, ok := C.Lookup(hyd)
	require.True(t, ok)
	assert.Equal(t, 0, p)
	p, ok = M.Lookup(hyd)
	require.True(t, ok)
	assert.Equal(t, 2, p)
	assert.True(t, M.Bit(0, p))
	_, ok = M.Lookup(col(3, 3, "Hydrophobic"))
	assert.False(t, ok)
}

func TestConcurrentDisjointColumns(t *testing.T) {
	C := NewColumnSpace()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, C.Ingest(frameResult(i, col(1, i, fmt.Sprintf("R%d", i)))))
		}(i)
	}
	wg.Wait()
	C.Seal()
	M, err := C.Matrix()
	require.NoError(t, err)
	require.Equal(t, 100, M.Cols())
	require.Equal(t, 100, M.Rows())
	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		p, ok := C.Lookup(col(1, i, fmt.Sprintf("R%d", i)))
		require.True(t, ok)
		assert.False(t, seen[p])
		seen[p] = true
		assert.Equal(t, uint(1), M.Row(i).Count())
		assert.True(t, M.Bit(i, p))
	}
}

func TestNewMatrix(t *testing.T) {
	_, err := NewMatrix([]int{0}, nil, nil)
	assert.Error(t, err)
	M, err := NewMatrix([]int{0, 1}, []Column{col(1, 1, "A")}, nil)
	assert.Error(t, err)
	assert.Nil(t, M)
	empty, err := NewMatrix(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows())
	r, c := empty.Dense().Dims()
	assert.Zero(t, r+c)
}

func TestTrajSource(t *testing.T) {
	s := ionPair()
	var frames []*v3.Matrix
	for i := 0; i < 5; i++ {
		frames = append(frames, ionFrame(i%2 == 0))
	}
	mol, err := chem.NewMolecule(s.Topology, frames, nil)
	require.NoError(t, err)
	src := NewTrajSource(mol, s, 1, 2)
	var got []int
	for {
		fr, err := src.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 4, fr.Coords.NVecs())
		got = append(got, fr.Index)
	}
	assert.Equal(t, []int{1, 3}, got)
}

type PipelineSuite struct {
	suite.Suite
	structure *stubStructure
	lig, tgt  []chem.Residue
}

func (s *PipelineSuite) SetupTest() {
	s.structure = ionPair()
	s.lig, s.tgt = residues(s.structure)
}

func (s *PipelineSuite) frames(salt ...bool) []Frame {
	ret := make([]Frame, len(salt))
	for i, v := range salt {
		ret[i] = Frame{Index: i, Snapshot: Snapshot{s.structure, ionFrame(v)}}
	}
	return ret
}

func (s *PipelineSuite) run(frames []Frame, opts ...Option) (*Matrix, *Pipeline, error) {
	P, err := NewPipeline(ionRules(), FixedSelection(s.lig, s.tgt), opts...)
	s.Require().NoError(err)
	err = P.Run(context.Background(), NewSliceSource(frames...))
	P.Columns().Seal()
	M, merr := P.Columns().Matrix()
	s.Require().NoError(merr)
	return M, P, err
}

func (s *PipelineSuite) TestTwoFrames() {
	M, P, err := s.run(s.frames(false, true), Workers(1))
	s.Require().NoError(err)
	s.Equal(int64(2), P.Processed())
	s.Require().Equal(2, M.Cols())
	s.Equal("Hydrophobic", M.Columns()[0].Rule)
	s.Equal("Cationic", M.Columns()[1].Rule)
	s.True(M.Bit(0, 0))
	s.False(M.Bit(0, 1))
	s.True(M.Bit(1, 0))
	s.True(M.Bit(1, 1))
	s.Len(M.Hits(1), 2)
}

func (s *PipelineSuite) TestNoInteractions() {
	frames := s.frames(false, false, false)
	for i := range frames {
		frames[i].Coords = coords(r3.Vec{}, r3.Vec{Y: 3}, r3.Vec{X: 40}, r3.Vec{X: 40, Y: 3})
	}
	M, _, err := s.run(frames)
	s.Require().NoError(err)
	s.Equal(0, M.Cols())
	s.Equal(3, M.Rows())
	for i := 0; i < 3; i++ {
		s.Equal(uint(0), M.Row(i).Len())
	}
}

func (s *PipelineSuite) TestDeterminism() {
	salt := make([]bool, 30)
	for i := range salt {
		salt[i] = i%3 == 2
	}
	first, _, err := s.run(s.frames(salt...), Workers(1))
	s.Require().NoError(err)
	second, _, err := s.run(s.frames(salt...), Workers(1))
	s.Require().NoError(err)
	parallel, _, err := s.run(s.frames(salt...), Workers(4), Ordered(true))
	s.Require().NoError(err)
	for _, M := range []*Matrix{second, parallel} {
		s.Equal(first.Columns(), M.Columns())
		s.Equal(first.Frames(), M.Frames())
		for i := 0; i < first.Rows(); i++ {
			s.True(first.Row(i).Equal(M.Row(i)), "row %d", i)
		}
	}
	s.Equal("Hydrophobic", first.Columns()[0].Rule)
}

func (s *PipelineSuite) TestFrameErrors() {
	frames := s.frames(true, false, true, false)
	frames[1].Coords = nil
	frames[3].Structure = nil
	M, P, err := s.run(frames, Workers(2))
	s.Require().Error(err)
	var ferr *FrameError
	s.Require().True(errors.As(err, &ferr))
	s.Contains([]int{1, 3}, ferr.Frame)
	s.Equal(int64(2), P.Failed())
	s.Equal(int64(2), P.Processed())
	s.Equal([]int{0, 2}, M.Frames())
}

func (s *PipelineSuite) TestFailFast() {
	frames := s.frames(true, true, true)
	frames[0].Coords = nil
	_, P, err := s.run(frames, Workers(1), FailFast(true))
	var ferr *FrameError
	s.Require().True(errors.As(err, &ferr))
	s.Equal(0, ferr.Frame)
	s.Equal(int64(0), P.Processed())
}

func (s *PipelineSuite) TestCancel() {
	P, err := NewPipeline(ionRules(), FixedSelection(s.lig, s.tgt))
	s.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = P.Run(ctx, NewSliceSource(s.frames(true, true)...))
	s.True(errors.Is(err, context.Canceled))
	P.Columns().Seal()
	M, err := P.Columns().Matrix()
	s.Require().NoError(err)
	s.Equal(0, M.Rows())
}

func (s *PipelineSuite) TestConfig() {
	_, err := NewPipeline(ionRules(), FixedSelection(s.lig, s.tgt), Workers(0))
	s.True(errors.Is(err, ErrConfig))
	_, err = NewPipeline(ionRules(), nil)
	s.True(errors.Is(err, ErrConfig))
	_, err = NewPipeline(ionRules(), FixedSelection(s.lig, s.tgt), ProximityCutoff(2))
	s.True(errors.Is(err, ErrConfig))
	P, err := NewPipeline(ionRules(), FixedSelection(s.lig, s.tgt), ProximityCutoff(8))
	s.Require().NoError(err)
	s.Equal(8.0, P.Cutoff())
}

func (s *PipelineSuite) TestMetrics() {
	m := NewMetrics("goifp")
	reg := prometheus.NewRegistry()
	s.Require().NoError(m.Register(reg))
	_, _, err := s.run(s.frames(false, true), WithMetrics(m))
	s.Require().NoError(err)
	s.Equal(2.0, testutil.ToFloat64(m.FramesProcessed))
	s.Equal(0.0, testutil.ToFloat64(m.FramesFailed))
	s.Equal(2.0, testutil.ToFloat64(m.Columns))
	s.Equal(2.0, testutil.ToFloat64(m.Hits.WithLabelValues("Hydrophobic")))
	s.Equal(1.0, testutil.ToFloat64(m.Hits.WithLabelValues("Cationic")))
	s.Error(m.Register(reg))
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func TestQuerySelection(t *testing.T) {
	s := ionPair()
	lig, tgt, err := QuerySelection("resname LIG", "resname ASP and index 3")(s)
	require.NoError(t, err)
	require.Len(t, lig, 1)
	assert.Equal(t, []int{0, 1}, lig[0].Atoms)
	require.Len(t, tgt, 1)
	assert.Equal(t, "ASP", tgt[0].ID.Name)
	assert.Equal(t, []int{3}, tgt[0].Atoms)

	_, _, err = QuerySelection("resname LIG and", "protein")(s)
	assert.Error(t, err)

	var plain struct{ Structure }
	_, _, err = QuerySelection("all", "all")(plain)
	assert.Error(t, err)
}
