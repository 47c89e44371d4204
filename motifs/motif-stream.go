package motifs

import (
	"fmt"
	"io"
	"strings"

	"github.com/plan-systems/klog"
)

// MotifStream is a stage in a channel pipeline of motifs.
type MotifStream struct {
	Outlet chan Motif
}

// NewMotifStream returns an empty stream; the producer feeds it with PushMotif and then calls Close.
func NewMotifStream() *MotifStream {
	stream := &MotifStream{
		Outlet: make(chan Motif),
	}
	return stream
}

// StreamMotifs returns a stream that emits each of the given motifs in order and then closes.
func StreamMotifs(M []Motif) *MotifStream {
	next := &MotifStream{
		Outlet: make(chan Motif, 1),
	}

	go func() {
		for _, Mi := range M {
			next.Outlet <- Mi
		}
		next.Close()
	}()

	return next
}

func (stream *MotifStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *MotifStream) PushMotif(M Motif) {
	stream.Outlet <- M
}

// PullAll drains this stream and returns the number of motifs that came through.
func (stream *MotifStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains this stream into a slice.
func (stream *MotifStream) Collect() []Motif {
	var M []Motif
	for Mi := range stream.Outlet {
		M = append(M, Mi)
	}
	return M
}

// Print writes one line per motif to out and passes each motif downstream.
// X is only consulted when opts.Weight is set and may be nil otherwise.
// out is closed once the upstream closes; after a failed write, motifs still pass downstream but are no longer written.
func (stream *MotifStream) Print(
	out io.WriteCloser,
	X GraphView,
	opts PrintOpts) *MotifStream {

	next := &MotifStream{
		Outlet: make(chan Motif, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		var writeErr error
		count := 0
		for M := range stream.Outlet {
			count++
			writeMotifLine(&buf, count, M, X, opts)
			if writeErr == nil {
				if _, writeErr = io.WriteString(out, buf.String()); writeErr != nil {
					klog.Warningf("motif listing stopped at motif %d: %v", count, writeErr)
				}
			}
			buf.Reset()
			next.Outlet <- M
		}
		if err := out.Close(); err != nil {
			klog.Warningf("closing motif listing: %v", err)
		}
		next.Close()
	}()

	return next
}

// Canonize orders the nodes of each motif so that equal triangles become equal values.
func (stream *MotifStream) Canonize() *MotifStream {
	next := &MotifStream{
		Outlet: make(chan Motif, 1),
	}

	go func() {
		for M := range stream.Outlet {
			next.Outlet <- M.Canonic()
		}
		next.Close()
	}()

	return next
}

// AddTo offers each motif to target and passes on only the ones it accepted.
func (stream *MotifStream) AddTo(target MotifAdder) *MotifStream {
	next := &MotifStream{
		Outlet: make(chan Motif, 1),
	}

	go func() {
		for M := range stream.Outlet {
			if target.TryAddMotif(M) {
				next.Outlet <- M
			}
		}
		next.Close()
	}()

	return next
}

// Select passes on only the motifs for which keep returns true.
func (stream *MotifStream) Select(keep func(M Motif) bool) *MotifStream {
	next := &MotifStream{
		Outlet: make(chan Motif, 1),
	}

	go func() {
		for M := range stream.Outlet {
			if keep(M) {
				next.Outlet <- M
			}
		}
		next.Close()
	}()

	return next
}

func SelectFromCatalog(cat Catalog) *MotifStream {
	next := &MotifStream{
		Outlet: make(chan Motif, 1),
	}

	go func() {
		cat.Select(next.Outlet)
		next.Close()
	}()

	return next
}

func writeMotifLine(buf *strings.Builder, count int, M Motif, X GraphView, opts PrintOpts) {
	label := opts.Label
	if len(label) == 0 && opts.Number {
		fmt.Fprintf(buf, "Motif %d,", count)
	} else {
		if len(label) > 0 {
			buf.WriteString(label)
			buf.WriteByte(',')
		}
		if opts.Number {
			fmt.Fprintf(buf, "%06d,", count)
		}
	}
	M.WriteAsString(buf)

	if opts.Weight && X != nil {
		for i := 0; i < MotifSize; i++ {
			for j := i + 1; j < MotifSize; j++ {
				w, _ := X.Weight(M[i], M[j])
				fmt.Fprintf(buf, ",%g", w)
			}
		}
	}
	buf.WriteByte('\n')
}

// ListingRenderer is a Renderer that writes a plain-text motif listing, one motif per line.
type ListingRenderer struct {
	Out  io.Writer
	Opts PrintOpts
}

func (r *ListingRenderer) Render(X GraphView, M []Motif) error {
	buf := strings.Builder{}
	buf.Grow(256)

	for i, Mi := range M {
		writeMotifLine(&buf, i+1, Mi, X, r.Opts)
		if _, err := io.WriteString(r.Out, buf.String()); err != nil {
			return err
		}
		buf.Reset()
	}
	return nil
}
