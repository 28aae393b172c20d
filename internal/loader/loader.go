// Package loader reads heap snapshot dumps and builds graphs for the heap
// engine. Formats are pluggable: parsers register themselves and Open
// selects one by sniffing the input.
package loader

import (
	"io"

	"github.com/heap-analysis/internal/heap"
)

// Parser is the interface for heap dump parsers.
type Parser interface {
	// Name identifies the parser in errors and logs.
	Name() string

	// CanParse checks if this parser can handle the given dump format.
	// The reader is a preview of the first bytes of the input;
	// implementations must not assume the full stream.
	CanParse(r io.Reader) bool

	// Parse reads the dump and builds a validated graph. The reader is
	// positioned at the start of the input.
	Parse(r io.Reader) (*heap.HeapGraph, error)
}
