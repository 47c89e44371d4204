package motifs

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Traces is a sequence of graph "traces" values: Traces[k-1] = tr(A^k) for a graph's adjacency matrix A.
//
// tr(A^3) is six times the number of triangles in a loop-free simple graph.
type Traces []int64

// TracesLSM is a LSM binary encoding / symbol of a Traces.
type TracesLSM []byte

func mini(a, b int) int {
	if a < b {
		return a
	} else {
		return b
	}
}

// IsEqual returns if two traces have the same prefix.
// The number of elements compared is the trace with the shorter length, so a Traces of length 0 will be equal to all other Traces.
func (TX Traces) IsEqual(target Traces) bool {
	N := mini(len(TX), len(target))
	for i := 0; i < N; i++ {
		if TX[i] != target[i] {
			return false
		}
	}
	return true
}

// NumTriangles returns tr(A^3)/6, or -1 if TX has fewer than 3 entries.
func (TX Traces) NumTriangles() int64 {
	if len(TX) < 3 {
		return -1
	}
	return TX[2] / 6
}

// InitFromTracesLSM assigns this Traces from a binary encoding made from AppendTracesLSM()
func (TX *Traces) InitFromTracesLSM(Xkey TracesLSM, maxNumTraces int) error {
	out := (*TX)[:0]
	rdr := bytes.NewReader(Xkey)

	var err error
	for {
		var trace int64
		trace, err = binary.ReadVarint(rdr)
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			break
		}
		out = append(out, trace)
		if maxNumTraces > 0 && len(out) >= maxNumTraces {
			break
		}
	}

	*TX = out
	return err
}

// AppendTracesLSM appends a binary encoding of TX to []out, returning it as TracesLSM.
func (TX Traces) AppendTracesLSM(out []byte) TracesLSM {
	var scrap [binary.MaxVarintLen64]byte

	key := out
	for _, Ti := range TX {
		n := binary.PutVarint(scrap[:], Ti)
		key = append(key, scrap[:n]...)
	}
	return key
}
