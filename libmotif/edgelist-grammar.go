package libmotif

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// EdgeLine is one line of an edge list: "source target weight"
type EdgeLine struct {
	Source string `parser:"@Token"`
	Target string `parser:"@Token"`
	Weight string `parser:"@Token"`
}

// ReadOpts specifies how an edge list is read.
type ReadOpts struct {
	Path            string   // used in error messages; set by LoadEdgeList
	CommentPrefixes []string // lines starting with any of these are skipped
}

var sEdgeLineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Token", Pattern: `[^ \t\r\n\f\v]+`},
	{Name: "whitespace", Pattern: `[ \t\r\n\f\v]+`},
})

var parseEdgeLine = participle.MustBuild[EdgeLine](
	participle.Lexer(sEdgeLineLexer),
	participle.Elide("whitespace"),
)

// ParseEdgeLine decodes a single edge-list line into an Edge.
// The returned error is ErrBadArity or ErrBadWeight, wrapped with the parser's detail.
func ParseEdgeLine(line string) (motifs.Edge, error) {
	ast, err := parseEdgeLine.ParseString("", line)
	if err != nil {
		return motifs.Edge{}, errors.Wrap(motifs.ErrBadArity, err.Error())
	}

	// Out-of-range weights saturate to ±Inf
	weight, err := strconv.ParseFloat(ast.Weight, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return motifs.Edge{}, errors.Wrapf(motifs.ErrBadWeight, "%q", ast.Weight)
	}

	return motifs.Edge{
		Source: motifs.Node(ast.Source),
		Target: motifs.Node(ast.Target),
		Weight: weight,
	}, nil
}

// ReadEdgeList builds a Graph from an edge list, one edge per line.
//
// Lines starting with one of opts.CommentPrefixes are skipped. Any other line that doesn't decode into
// (source, target, weight), blank lines included, fails the entire read with a *motifs.ParseError and no Graph is returned.
func ReadEdgeList(in io.Reader, opts ReadOpts) (*Graph, error) {
	X := NewGraph()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if isComment(trimmed, opts.CommentPrefixes) {
			continue
		}

		e, err := ParseEdgeLine(trimmed)
		if err != nil {
			return nil, &motifs.ParseError{
				Path: opts.Path,
				Line: lineNum,
				Text: text,
				Err:  errors.Cause(err),
			}
		}
		X.AddEdge(e.Source, e.Target, e.Weight)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading edge list %q", opts.Path)
	}

	klog.V(2).Infof("read %d lines from %q: %d nodes, %d edges", lineNum, opts.Path, X.NumNodes(), X.NumEdges())
	return X, nil
}

// LoadEdgeList opens and reads the edge list at the given path (see ReadEdgeList).
func LoadEdgeList(pathname string, opts ReadOpts) (*Graph, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "opening edge list")
	}
	defer file.Close()

	opts.Path = pathname
	return ReadEdgeList(file, opts)
}

func isComment(line string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if len(prefix) > 0 && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
