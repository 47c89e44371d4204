package libmotif_test

import (
	"strings"
	"testing"

	"github.com/fine-structures/ecomotif/libmotif"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const everglades = `A B 1.0
B C 2.0
A C 3.0
C D 1.5
`

func mustRead(t *testing.T, edges string) *libmotif.Graph {
	t.Helper()
	X, err := libmotif.ReadEdgeList(strings.NewReader(edges), libmotif.ReadOpts{})
	require.NoError(t, err)
	require.NotNil(t, X)
	return X
}

func TestGraphBasics(t *testing.T) {
	X := mustRead(t, everglades)

	assert.Equal(t, 4, X.NumNodes())
	assert.Equal(t, 4, X.NumEdges())
	assert.Equal(t, []motifs.Node{"A", "B", "C", "D"}, X.Nodes())
	assert.Equal(t, []motifs.Node{"B", "A", "D"}, X.Neighbors("C"))
	assert.Nil(t, X.Neighbors("Z"))
	assert.Equal(t, 1, X.Degree("D"))

	assert.True(t, X.HasEdge("A", "C"))
	assert.True(t, X.HasEdge("C", "A"))
	assert.False(t, X.HasEdge("A", "D"))
	assert.False(t, X.HasEdge("A", "Z"))

	w, ok := X.Weight("D", "C")
	assert.True(t, ok)
	assert.Equal(t, 1.5, w)

	assert.Equal(t, []motifs.Edge{
		{Source: "A", Target: "B", Weight: 1.0},
		{Source: "A", Target: "C", Weight: 3.0},
		{Source: "B", Target: "C", Weight: 2.0},
		{Source: "C", Target: "D", Weight: 1.5},
	}, X.Edges())
}

func TestBuildIsIdempotent(t *testing.T) {
	X1 := mustRead(t, everglades)
	X2 := libmotif.BuildGraph(X1.Edges())
	X3 := mustRead(t, everglades)

	nodes := X1.Nodes()
	require.ElementsMatch(t, nodes, X2.Nodes())
	require.Equal(t, nodes, X3.Nodes())

	probe := append(nodes, "Z")
	for _, a := range probe {
		for _, b := range probe {
			assert.Equal(t, X1.HasEdge(a, b), X2.HasEdge(a, b), "%s-%s", a, b)
			assert.Equal(t, X1.HasEdge(a, b), X3.HasEdge(a, b), "%s-%s", a, b)
		}
	}
}

func TestDuplicateEdgeLastWriteWins(t *testing.T) {
	X := mustRead(t, "A B 1.0\nB C 2.0\nA B 9.0\n")

	assert.Equal(t, 2, X.NumEdges())
	assert.Equal(t, []motifs.Node{"B"}, X.Neighbors("A"))

	w, _ := X.Weight("A", "B")
	assert.Equal(t, 9.0, w)
	w, _ = X.Weight("B", "A")
	assert.Equal(t, 9.0, w)

	// A reversed pair is the same undirected edge
	assert.False(t, X.AddEdge("B", "A", -2))
	w, _ = X.Weight("A", "B")
	assert.Equal(t, -2.0, w)
	assert.Equal(t, 2, X.NumEdges())
}

func TestSelfLoopsAccepted(t *testing.T) {
	X := mustRead(t, "A A 1\nA B 1\nB C 1\nA C 1\n")

	assert.Equal(t, 4, X.NumEdges())
	assert.Equal(t, 1, X.NumSelfLoops())
	assert.True(t, X.HasEdge("A", "A"))
	assert.Equal(t, []motifs.Node{"A", "B", "C"}, X.Neighbors("A"))
	assert.Len(t, X.Edges(), 4)
}
