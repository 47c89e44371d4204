package pymotif

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fine-structures/ecomotif/libmotif"
	"github.com/fine-structures/ecomotif/libmotif/catalog"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2024.1"
)

var (
	pyGraphType       = py.NewType("Graph", "an undirected, edge-weighted interaction graph")
	pyMotifStreamType = py.NewType("MotifStream", "motifs.MotifStream")
	pyCatalogType     = py.NewType("Catalog", "motifs.Catalog")
	pyWorkspaceType   = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type pyGraph struct {
	*libmotif.Graph
}

func (X pyGraph) Type() *py.Type {
	return pyGraphType
}

func (X pyGraph) M__str__() (py.Object, error) {
	return py.String(fmt.Sprintf("<Graph nodes=%d edges=%d>", X.NumNodes(), X.NumEdges())), nil
}

func (X pyGraph) M__repr__() (py.Object, error) {
	return X.M__str__()
}

func asFloat(obj py.Object) (float64, error) {
	switch v := obj.(type) {
	case py.Float:
		return float64(v), nil
	case py.Int:
		return float64(v), nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", obj.Type().Name)
}

func asBool(b bool) py.Object {
	if b {
		return py.True
	}
	return py.False
}

func motifTuple(M motifs.Motif) py.Tuple {
	tuple := make(py.Tuple, motifs.MotifSize)
	for i, n := range M {
		tuple[i] = py.String(n)
	}
	return tuple
}

func nodeTuple(nodes []motifs.Node) py.Tuple {
	tuple := make(py.Tuple, len(nodes))
	for i, n := range nodes {
		tuple[i] = py.String(n)
	}
	return tuple
}

// Arg 1 (str): edge list pathname
// Arg 2 (str, optional): comment prefix
func py_LoadEdgeList(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname, commentPrefix string
	err := py.LoadTuple(args, []interface{}{&pathname, &commentPrefix})
	if err != nil {
		return nil, err
	}

	opts := libmotif.ReadOpts{}
	if len(commentPrefix) > 0 {
		opts.CommentPrefixes = []string{commentPrefix}
	}

	X, err := libmotif.LoadEdgeList(pathname, opts)
	if err != nil {
		if errors.Is(err, motifs.ErrParse) {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}
	return pyGraph{X}, nil
}

func py_NewGraph(module py.Object, args py.Tuple) (py.Object, error) {
	return pyGraph{libmotif.NewGraph()}, nil
}

func py_Graph_AddEdge(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)

	if len(args) != 3 {
		return nil, py.ExceptionNewf(py.TypeError, "AddEdge() takes (source, target, weight)")
	}
	var a, b string
	err := py.LoadTuple(args[:2], []interface{}{&a, &b})
	if err != nil {
		return nil, err
	}
	weight, err := asFloat(args[2])
	if err != nil {
		return nil, err
	}
	return asBool(X.AddEdge(motifs.Node(a), motifs.Node(b), weight)), nil
}

func py_Graph_NumNodes(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.Int(X.NumNodes()), nil
}

func py_Graph_NumEdges(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.Int(X.NumEdges()), nil
}

func py_Graph_Nodes(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return nodeTuple(X.Nodes()), nil
}

func py_Graph_HasNode(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	var n string
	if err := py.LoadTuple(args, []interface{}{&n}); err != nil {
		return nil, err
	}
	return asBool(X.HasNode(motifs.Node(n))), nil
}

func py_Graph_Neighbors(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	var n string
	if err := py.LoadTuple(args, []interface{}{&n}); err != nil {
		return nil, err
	}
	if !X.HasNode(motifs.Node(n)) {
		return nil, py.ExceptionNewf(py.KeyError, "%q", n)
	}
	return nodeTuple(X.Neighbors(motifs.Node(n))), nil
}

func py_Graph_HasEdge(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	var a, b string
	if err := py.LoadTuple(args, []interface{}{&a, &b}); err != nil {
		return nil, err
	}
	return asBool(X.HasEdge(motifs.Node(a), motifs.Node(b))), nil
}

func py_Graph_Weight(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	var a, b string
	if err := py.LoadTuple(args, []interface{}{&a, &b}); err != nil {
		return nil, err
	}
	w, ok := X.Weight(motifs.Node(a), motifs.Node(b))
	if !ok {
		return py.None, nil
	}
	return py.Float(w), nil
}

func py_Graph_Motifs(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	M := libmotif.FindMotifs(X)

	out := make(py.Tuple, len(M))
	for i, Mi := range M {
		out[i] = motifTuple(Mi)
	}
	return out, nil
}

func py_Graph_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return wrapMotifStream(libmotif.EnumMotifs(X), X.Graph), nil
}

func py_Graph_TriangleCount(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.Int(libmotif.TriangleCount(X)), nil
}

func py_Graph_Traces(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	numTraces := 3
	if len(args) > 0 {
		n, err := py.GetInt(args[0])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, py.ExceptionNewf(py.ValueError, "Traces() count must be >= 0 (got %d)", n)
		}
		numTraces = int(n)
	}

	TX := libmotif.AdjacencyTraces(X, numTraces)
	traces := make(py.Tuple, len(TX))
	for i, tr := range TX {
		traces[i] = py.Int(tr)
	}
	return traces, nil
}

type Workspace struct {
	CatalogCtx motifs.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: motifs.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags})
	if err != nil {
		return nil, err
	}

	opts := motifs.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return pyCatalog{cat}, nil
}

type pyCatalog struct {
	motifs.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

func py_Catalog_NumMotifs(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return py.Int(cat.NumMotifs()), nil
}

func py_Catalog_Select(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return wrapMotifStream(motifs.SelectFromCatalog(cat), nil), nil
}

// motifStream carries the graph its motifs came from (nil for catalog selections) so Print can show edge weights.
type motifStream struct {
	*motifs.MotifStream
	X motifs.GraphView
}

func (stream motifStream) Type() *py.Type {
	return pyMotifStreamType
}

func wrapMotifStream(stream *motifs.MotifStream, X motifs.GraphView) py.Object {
	return motifStream{stream, X}
}

func py_MotifStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(motifStream)
	return py.Int(stream.PullAll()), nil
}

func py_MotifStream_List(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(motifStream)
	M := stream.Collect()

	out := make(py.Tuple, len(M))
	for i, Mi := range M {
		out[i] = motifTuple(Mi)
	}
	return out, nil
}

func py_MotifStream_Canonize(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(motifStream)
	return wrapMotifStream(stream.Canonize(), stream.X), nil
}

func py_MotifStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(motifStream)

	// Memory resident and released along with the stream
	dd := libmotif.NewDropDupes(libmotif.DropDupeOpts{})
	return wrapMotifStream(stream.Canonize().AddTo(dd), stream.X), nil
}

func py_MotifStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(motifStream)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "AddTo() takes a Catalog")
	}
	cat, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", motifs.ErrReadOnly)
	}
	return wrapMotifStream(stream.AddTo(cat), stream.X), nil
}

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

var gOutCount = int32(0)

// Print(label="", file="", weights=False, number=True)
func py_MotifStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(motifStream)
	var pathname string

	opts := motifs.DefaultPrintOpts

	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		py.LoadAttr(kwargs, "label", &opts.Label)
	}
	py.LoadAttr(kwargs, "number", &opts.Number)
	py.LoadAttr(kwargs, "weights", &opts.Weight)
	py.LoadAttr(kwargs, "file", &pathname)

	if opts.Weight && stream.X == nil {
		return nil, py.ExceptionNewf(py.ValueError, "Print(weights=True) needs a stream from Graph.Stream()")
	}

	if opts.Label == "" && !opts.Number {
		n := atomic.AddInt32(&gOutCount, 1)
		opts.Label = fmt.Sprintf("out[%d]", n)
	}

	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(pathname), 0700)

		file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}

	next := stream.Print(writer, stream.X, opts)
	return wrapMotifStream(next, stream.X), nil
}

func init() {

	/////////////////////////////////
	// Graph
	{
		pyGraphType.Dict["AddEdge"] = py.MustNewMethod("AddEdge", py_Graph_AddEdge, 0, "connects two nodes with a weight (last write wins)")
		pyGraphType.Dict["NumNodes"] = py.MustNewMethod("NumNodes", py_Graph_NumNodes, 0, "")
		pyGraphType.Dict["NumEdges"] = py.MustNewMethod("NumEdges", py_Graph_NumEdges, 0, "")
		pyGraphType.Dict["Nodes"] = py.MustNewMethod("Nodes", py_Graph_Nodes, 0, "")
		pyGraphType.Dict["HasNode"] = py.MustNewMethod("HasNode", py_Graph_HasNode, 0, "")
		pyGraphType.Dict["Neighbors"] = py.MustNewMethod("Neighbors", py_Graph_Neighbors, 0, "raises KeyError for an unknown node")
		pyGraphType.Dict["HasEdge"] = py.MustNewMethod("HasEdge", py_Graph_HasEdge, 0, "")
		pyGraphType.Dict["Weight"] = py.MustNewMethod("Weight", py_Graph_Weight, 0, "returns the edge weight or None")
		pyGraphType.Dict["Motifs"] = py.MustNewMethod("Motifs", py_Graph_Motifs, 0, "returns each triangle once per pivot")
		pyGraphType.Dict["Stream"] = py.MustNewMethod("Stream", py_Graph_Stream, 0, "streams each triangle once per pivot")
		pyGraphType.Dict["TriangleCount"] = py.MustNewMethod("TriangleCount", py_Graph_TriangleCount, 0, "returns tr(A^3)/6")
		pyGraphType.Dict["Traces"] = py.MustNewMethod("Traces", py_Graph_Traces, 0, "returns tr(A^k) for k = 1..n")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["NumMotifs"] = py.MustNewMethod("NumMotifs", py_Catalog_NumMotifs, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
	}

	/////////////////////////////////
	// MotifStream
	{
		pyMotifStreamType.Dict["Go"] = py.MustNewMethod("Go", py_MotifStream_Go, 0, "counts the number of motifs output from the MotifStream")
		pyMotifStreamType.Dict["List"] = py.MustNewMethod("List", py_MotifStream_List, 0, "collects the MotifStream into a tuple")
		pyMotifStreamType.Dict["Print"] = py.MustNewMethod("Print", py_MotifStream_Print, 0, "prints each motif from the MotifStream")
		pyMotifStreamType.Dict["Canonize"] = py.MustNewMethod("Canonize", py_MotifStream_Canonize, 0, "")
		pyMotifStreamType.Dict["DropDupes"] = py.MustNewMethod("DropDupes", py_MotifStream_DropDupes, 0, "")
		pyMotifStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", py_MotifStream_AddTo, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("LoadEdgeList", py_LoadEdgeList, 0, ""),
			py.MustNewMethod("NewGraph", py_NewGraph, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"READ_ONLY":   py.Int(READ_ONLY),
			"MOTIF_SIZE":  py.Int(motifs.MotifSize),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pymotif",
				Doc:  "triangular motif gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
