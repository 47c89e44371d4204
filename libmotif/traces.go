package libmotif

import (
	"math"

	"github.com/fine-structures/ecomotif/motifs"
	"gonum.org/v1/gonum/mat"
)

// AdjacencyMatrix returns the 0/1 adjacency matrix of X in X's node order.
// Self-loops are left out so that traces count only cycles through distinct nodes.
// Returns nil if X has no nodes.
func AdjacencyMatrix(X motifs.GraphView) (*mat.Dense, []motifs.Node) {
	nodes := X.Nodes()
	Nv := len(nodes)
	if Nv == 0 {
		return nil, nodes
	}

	index := make(map[motifs.Node]int, Nv)
	for i, n := range nodes {
		index[n] = i
	}

	A := mat.NewDense(Nv, Nv, nil)
	for i, a := range nodes {
		for _, b := range X.Neighbors(a) {
			if j := index[b]; j != i {
				A.Set(i, j, 1)
			}
		}
	}
	return A, nodes
}

// AdjacencyTraces returns tr(A^1) .. tr(A^numTraces) for the loop-free adjacency matrix A of X.
//
// This uses dense matrix products, so it is meant for graphs of modest size.
// A non-positive numTraces yields empty Traces.
func AdjacencyTraces(X motifs.GraphView, numTraces int) motifs.Traces {
	if numTraces <= 0 {
		return motifs.Traces{}
	}
	TX := make(motifs.Traces, numTraces)

	A, _ := AdjacencyMatrix(X)
	if A == nil {
		return TX
	}

	Ak := mat.DenseCopyOf(A)
	for k := 0; k < numTraces; k++ {
		if k > 0 {
			var next mat.Dense
			next.Mul(Ak, A)
			Ak = &next
		}
		TX[k] = int64(math.Round(mat.Trace(Ak)))
	}
	return TX
}

// TriangleCount returns the number of distinct triangles in X, computed as tr(A^3)/6.
func TriangleCount(X motifs.GraphView) int64 {
	return AdjacencyTraces(X, 3).NumTriangles()
}
