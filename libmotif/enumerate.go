package libmotif

import (
	"sync"
	"sync/atomic"

	"github.com/fine-structures/ecomotif/motifs"
)

// FindMotifs returns every triangle of X, discovered from each of its three nodes in turn.
//
// For each node n (in X's node order), each unordered pair {u, v} of n's neighbors is tested and
// [n, u, v] is emitted if u and v are connected. A triangle therefore appears exactly three times,
// once per pivot; use MotifStream.Canonize() and NewDropDupes() when one entry per triangle is wanted.
//
// Self-loops never form part of a motif.
func FindMotifs(X motifs.GraphView) []motifs.Motif {
	var out []motifs.Motif
	for _, n := range X.Nodes() {
		out = appendPivotMotifs(out, X, n)
	}
	return out
}

// FindMotifsParallel is FindMotifs with the node loop spread over the given number of workers.
// The output is identical to FindMotifs.
func FindMotifsParallel(X motifs.GraphView, numWorkers int) []motifs.Motif {
	nodes := X.Nodes()
	if numWorkers <= 1 || len(nodes) < 2 {
		return FindMotifs(X)
	}
	if numWorkers > len(nodes) {
		numWorkers = len(nodes)
	}

	perNode := make([][]motifs.Motif, len(nodes))
	next := int64(-1)

	wg := sync.WaitGroup{}
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= len(nodes) {
					return
				}
				perNode[i] = appendPivotMotifs(nil, X, nodes[i])
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, Mi := range perNode {
		total += len(Mi)
	}
	out := make([]motifs.Motif, 0, total)
	for _, Mi := range perNode {
		out = append(out, Mi...)
	}
	return out
}

// EnumMotifs streams the output of FindMotifs as it is produced.
func EnumMotifs(X motifs.GraphView) *motifs.MotifStream {
	stream := motifs.NewMotifStream()

	go func() {
		var scrap []motifs.Motif
		for _, n := range X.Nodes() {
			scrap = appendPivotMotifs(scrap[:0], X, n)
			for _, M := range scrap {
				stream.PushMotif(M)
			}
		}
		stream.Close()
	}()

	return stream
}

func appendPivotMotifs(out []motifs.Motif, X motifs.GraphView, pivot motifs.Node) []motifs.Motif {
	nbrs := X.Neighbors(pivot)
	if len(nbrs) < 2 {
		return out
	}

	for i, u := range nbrs {
		if u == pivot {
			continue
		}
		for _, v := range nbrs[i+1:] {
			if v == pivot {
				continue
			}
			if X.HasEdge(u, v) {
				out = append(out, motifs.Motif{pivot, u, v})
			}
		}
	}
	return out
}
