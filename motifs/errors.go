package motifs

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrParse           = errors.New("edge list parse error")
	ErrBadArity        = errors.New("expected 'source target weight'")
	ErrBadWeight       = errors.New("edge weight is not a number")
	ErrBadCatalogParam = errors.New("bad catalog param")
	ErrCatalogVersion  = errors.New("catalog version is incompatible")
	ErrReadOnly        = errors.New("catalog is in read-only mode")
	ErrNotFound        = errors.New("not found")
	ErrUnmarshal       = errors.New("unmarshal failed")
)

// ParseError reports an edge-list line that could not be decoded into (source, target, weight).
type ParseError struct {
	Path string // omitted when reading from an unnamed stream
	Line int    // one-based
	Text string // the offending line
	Err  error  // cause, typically ErrBadArity or ErrBadWeight
}

func (err *ParseError) Error() string {
	where := err.Path
	if where == "" {
		where = "edge list"
	}
	return fmt.Sprintf("%s:%d: %v: %q", where, err.Line, err.Err, err.Text)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}

// Is reports ErrParse as a match so callers don't need the concrete type.
func (err *ParseError) Is(target error) bool {
	return target == ErrParse
}
