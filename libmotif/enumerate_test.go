package libmotif_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/fine-structures/ecomotif/libmotif"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomGraph returns a seeded G(n, p) graph with node names "n0", "n1", ...
func randomGraph(seed int64, Nv int, p float64) *libmotif.Graph {
	rng := rand.New(rand.NewSource(seed))
	X := libmotif.NewGraph()
	for i := 0; i < Nv; i++ {
		for j := i + 1; j < Nv; j++ {
			if rng.Float64() < p {
				a := motifs.Node(fmt.Sprintf("n%d", i))
				b := motifs.Node(fmt.Sprintf("n%d", j))
				X.AddEdge(a, b, rng.NormFloat64())
			}
		}
	}
	return X
}

func TestEvergladesScenario(t *testing.T) {
	X := mustRead(t, everglades)

	M := libmotif.FindMotifs(X)
	assert.Equal(t, []motifs.Motif{
		{"A", "B", "C"},
		{"B", "A", "C"},
		{"C", "B", "A"},
	}, M)

	for _, Mi := range M {
		assert.Equal(t, motifs.Motif{"A", "B", "C"}, Mi.Canonic())
		assert.False(t, Mi.Contains("D"))
	}

	// Each pivot leads its own entry
	assert.Equal(t, []motifs.Node{"A", "B", "C"}, []motifs.Node{M[0].Pivot(), M[1].Pivot(), M[2].Pivot()})
}

func TestNoTriangles(t *testing.T) {
	X := mustRead(t, "A B 1\nB C 1\n")
	assert.Empty(t, libmotif.FindMotifs(X))

	assert.Empty(t, libmotif.FindMotifs(libmotif.NewGraph()))
}

func TestSelfLoopsNeverInMotifs(t *testing.T) {
	X := mustRead(t, "A A 1\nA B 1\nB C 1\nA C 1\nB B 4\n")

	M := libmotif.FindMotifs(X)
	require.Len(t, M, 3)
	for _, Mi := range M {
		assert.Equal(t, motifs.Motif{"A", "B", "C"}, Mi.Canonic())
	}
}

func TestTriangleProperties(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		X := randomGraph(seed, 24, 0.3)
		nodes := X.Nodes()

		counts := make(map[motifs.Motif]int)
		for _, Mi := range libmotif.FindMotifs(X) {
			// No false positives
			require.True(t, X.HasEdge(Mi[0], Mi[1]), "%v", Mi)
			require.True(t, X.HasEdge(Mi[1], Mi[2]), "%v", Mi)
			require.True(t, X.HasEdge(Mi[0], Mi[2]), "%v", Mi)
			counts[Mi.Canonic()]++
		}

		// Completeness and exactly three entries per triangle
		numTriangles := 0
		for i, a := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				for k := j + 1; k < len(nodes); k++ {
					b, c := nodes[j], nodes[k]
					key := motifs.Motif{a, b, c}.Canonic()
					if X.HasEdge(a, b) && X.HasEdge(b, c) && X.HasEdge(a, c) {
						numTriangles++
						assert.Equal(t, 3, counts[key], "%v", key)
					} else {
						assert.Zero(t, counts[key], "%v", key)
					}
				}
			}
		}

		assert.Len(t, counts, numTriangles)
		assert.Equal(t, int64(numTriangles), libmotif.TriangleCount(X))
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	X := randomGraph(42, 60, 0.2)
	serial := libmotif.FindMotifs(X)
	require.NotEmpty(t, serial)

	for _, workers := range []int{0, 1, 2, 7, 500} {
		assert.Equal(t, serial, libmotif.FindMotifsParallel(X, workers), "workers=%d", workers)
	}
}

func TestEnumMotifsStream(t *testing.T) {
	X := randomGraph(7, 30, 0.25)
	assert.Equal(t, libmotif.FindMotifs(X), libmotif.EnumMotifs(X).Collect())
}

func TestUniqueMotifs(t *testing.T) {
	X := mustRead(t, everglades+"D E 1\nC E 1\nA D 1\n")

	all := libmotif.FindMotifs(X)
	unique := libmotif.UniqueMotifs(all)

	assert.Len(t, all, 3*len(unique))
	assert.Equal(t, []motifs.Motif{
		{"A", "B", "C"},
		{"A", "C", "D"},
		{"C", "D", "E"},
	}, unique)
	assert.Equal(t, int64(3), libmotif.TriangleCount(X))
}

func TestDropDupes(t *testing.T) {
	dd := libmotif.NewDropDupes(libmotif.DropDupeOpts{PoolSz: 8})

	assert.True(t, dd.TryAddMotif(motifs.Motif{"A", "B", "C"}))
	assert.False(t, dd.TryAddMotif(motifs.Motif{"C", "A", "B"}))
	assert.True(t, dd.TryAddMotif(motifs.Motif{"AB", "C", "D"}))
	assert.True(t, dd.TryAddMotif(motifs.Motif{"A", "BC", "D"}))
	assert.False(t, dd.TryAddMotif(motifs.Motif{"D", "BC", "A"}))
}
