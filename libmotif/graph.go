package libmotif

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/plan-systems/klog"
)

// Graph is an undirected, weighted graph with at most one edge per node pair.
//
// Nodes iterate in order of first appearance and each node's neighbors iterate in the order they were connected.
// Neighbor lookup is O(degree) and edge lookup is O(1) since both levels are hash backed.
//
// A Graph is built once and must not be modified once shared with readers; concurrent reads are safe.
type Graph struct {
	adj       *linkedhashmap.Map // Node => *linkedhashmap.Map (Node => float64)
	edgeCount int
	loopCount int
}

func NewGraph() *Graph {
	return &Graph{
		adj: linkedhashmap.New(),
	}
}

// BuildGraph returns a new Graph containing each of the given edges.
func BuildGraph(edges []motifs.Edge) *Graph {
	X := NewGraph()
	for _, e := range edges {
		X.AddEdge(e.Source, e.Target, e.Weight)
	}
	return X
}

func (X *Graph) neighborsOf(n motifs.Node) *linkedhashmap.Map {
	nbrs, found := X.adj.Get(n)
	if !found {
		return nil
	}
	return nbrs.(*linkedhashmap.Map)
}

func (X *Graph) addNode(n motifs.Node) *linkedhashmap.Map {
	nbrs := X.neighborsOf(n)
	if nbrs == nil {
		nbrs = linkedhashmap.New()
		X.adj.Put(n, nbrs)
	}
	return nbrs
}

// AddEdge connects a and b with the given weight and returns true if this is a new edge.
//
// If a and b are already connected, only the weight is updated (last write wins).
// Self-loops are accepted and stored.
func (X *Graph) AddEdge(a, b motifs.Node, weight float64) bool {
	nbrsA := X.addNode(a)
	nbrsB := X.addNode(b)

	prev, exists := nbrsA.Get(b)
	nbrsA.Put(b, weight)
	nbrsB.Put(a, weight)

	if exists {
		klog.V(1).Infof("edge %s-%s seen again, weight %v replaces %v", a, b, weight, prev)
		return false
	}

	X.edgeCount++
	if a == b {
		X.loopCount++
		klog.V(2).Infof("self-loop at %s", a)
	}
	return true
}

func (X *Graph) NumNodes() int {
	return X.adj.Size()
}

func (X *Graph) NumEdges() int {
	return X.edgeCount
}

// NumSelfLoops returns the number of edges connecting a node to itself.
func (X *Graph) NumSelfLoops() int {
	return X.loopCount
}

func (X *Graph) HasNode(n motifs.Node) bool {
	_, found := X.adj.Get(n)
	return found
}

func (X *Graph) Nodes() []motifs.Node {
	nodes := make([]motifs.Node, 0, X.adj.Size())
	for it := X.adj.Iterator(); it.Next(); {
		nodes = append(nodes, it.Key().(motifs.Node))
	}
	return nodes
}

func (X *Graph) Neighbors(n motifs.Node) []motifs.Node {
	nbrs := X.neighborsOf(n)
	if nbrs == nil {
		return nil
	}
	out := make([]motifs.Node, 0, nbrs.Size())
	for it := nbrs.Iterator(); it.Next(); {
		out = append(out, it.Key().(motifs.Node))
	}
	return out
}

// Degree returns the number of neighbors of n (a self-loop counts once).
func (X *Graph) Degree(n motifs.Node) int {
	nbrs := X.neighborsOf(n)
	if nbrs == nil {
		return 0
	}
	return nbrs.Size()
}

func (X *Graph) HasEdge(a, b motifs.Node) bool {
	_, found := X.Weight(a, b)
	return found
}

func (X *Graph) Weight(a, b motifs.Node) (float64, bool) {
	nbrs := X.neighborsOf(a)
	if nbrs == nil {
		return 0, false
	}
	w, found := nbrs.Get(b)
	if !found {
		return 0, false
	}
	return w.(float64), true
}

// Edges returns each edge once, ordered by the first endpoint's node order.
func (X *Graph) Edges() []motifs.Edge {
	edges := make([]motifs.Edge, 0, X.edgeCount)
	done := make(map[motifs.Node]struct{}, X.adj.Size())

	for it := X.adj.Iterator(); it.Next(); {
		a := it.Key().(motifs.Node)
		nbrs := it.Value().(*linkedhashmap.Map)
		for jt := nbrs.Iterator(); jt.Next(); {
			b := jt.Key().(motifs.Node)
			if _, seen := done[b]; seen {
				continue
			}
			edges = append(edges, motifs.Edge{
				Source: a,
				Target: b,
				Weight: jt.Value().(float64),
			})
		}
		done[a] = struct{}{}
	}
	return edges
}
