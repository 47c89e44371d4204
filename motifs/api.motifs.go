package motifs

import (
	"io"
	"sort"
	"strings"
)

// DefaultEdgeListPath is the edge list read when no path is configured.
const DefaultEdgeListPath = "eco-everglades.edges"

// MotifSize is the number of nodes in a triangular motif.
const MotifSize = 3

// Node is an opaque identifier of an entity in the interaction graph (e.g. a species).
type Node string

// Edge is an undirected, weighted connection between two nodes.
// The weight is carried as payload and plays no role in motif enumeration.
type Edge struct {
	Source Node
	Target Node
	Weight float64
}

// Motif is a closed triangle: three mutually connected nodes.
//
// Motifs are emitted as [pivot, u, v] in enumeration order but are semantically unordered.
// Use Canonic() to compare two motifs as sets.
type Motif [MotifSize]Node

// GraphView is the read-only surface motif enumeration and rendering needs from a graph.
type GraphView interface {

	// NumNodes returns the number of nodes in this graph.
	NumNodes() int

	// Nodes returns all nodes in the graph's iteration order, which is stable for a given graph.
	Nodes() []Node

	// Neighbors returns the neighbors of n in a stable order, or nil if n is not in the graph.
	Neighbors(n Node) []Node

	// HasEdge returns true if an edge connects a and b.
	HasEdge(a, b Node) bool

	// Weight returns the weight of the edge connecting a and b.
	Weight(a, b Node) (float64, bool)
}

// MotifAdder receives motifs, reporting whether each one was accepted.
type MotifAdder interface {

	// Tries to add the given motif.
	// If true is returned, M was not yet present and was added.
	TryAddMotif(M Motif) bool
}

// OnMotifHit is used to return motifs meeting a set of selection criteria.
type OnMotifHit chan<- Motif

// Renderer consumes a graph and its motifs to produce some artifact (a listing, a visualization, ...).
// Display concerns such as color assignment belong to the Renderer, never to enumeration.
type Renderer interface {
	Render(X GraphView, M []Motif) error
}

// PrintOpts specifies what is printed for each motif in a listing
type PrintOpts struct {
	Label  string // Prefix label; if empty and Number is set, "Motif <n>" is used
	Number bool   // If set, each line carries a 1-based sequence number
	Weight bool   // If set, the motif's three edge weights are appended (needs a GraphView)
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Number: true,
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a motif Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// Catalog wraps a database of canonical motifs and per-network trace signatures.
type Catalog interface {
	MotifAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumMotifs returns the number of distinct motifs in this catalog.
	NumMotifs() int64

	// Select sends each motif in this catalog to onHit in canonical order.
	Select(onHit OnMotifHit)

	// PutTraces records the adjacency trace signature of a named network.
	PutTraces(network string, TX Traces) error

	// GetTraces returns the trace signature stored for the given network, or ErrNotFound.
	GetTraces(network string) (Traces, error)

	Close() error
}

// Canonic returns M with its nodes in ascending order.
// Two motifs over the same three nodes have equal Canonic() values.
func (M Motif) Canonic() Motif {
	sort.Slice(M[:], func(i, j int) bool {
		return M[i] < M[j]
	})
	return M
}

// Contains returns true if n is one of the nodes of M.
func (M Motif) Contains(n Node) bool {
	return M[0] == n || M[1] == n || M[2] == n
}

// Pivot returns the node whose neighbor set this motif was discovered from.
func (M Motif) Pivot() Node {
	return M[0]
}

// AppendKey appends the canonical byte key of M to the given buffer.
//
// Node names are NUL separated, so keys are unambiguous as long as node names contain no NUL.
func (M Motif) AppendKey(buf []byte) []byte {
	C := M.Canonic()
	for i, n := range C {
		if i > 0 {
			buf = append(buf, 0)
		}
		buf = append(buf, n...)
	}
	return buf
}

// MotifFromKey is the inverse of AppendKey.
func MotifFromKey(key []byte) (Motif, error) {
	var M Motif
	parts := strings.Split(string(key), "\x00")
	if len(parts) != MotifSize {
		return M, ErrUnmarshal
	}
	for i, p := range parts {
		M[i] = Node(p)
	}
	return M, nil
}

func (M Motif) String() string {
	b := strings.Builder{}
	M.WriteAsString(&b)
	return b.String()
}

func (M Motif) WriteAsString(out io.StringWriter) {
	for i, n := range M {
		if i > 0 {
			out.WriteString("-")
		}
		out.WriteString(string(n))
	}
}
