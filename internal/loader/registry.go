package loader

import (
	"bytes"
	"io"
	"sync"

	"github.com/heap-analysis/internal/heap"
	apperrors "github.com/heap-analysis/pkg/errors"
)

// sniffSize is how many leading bytes are offered to CanParse.
const sniffSize = 4096

// parserRegistry holds registered parsers.
type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

var registry = &parserRegistry{}

// Register adds a parser to the registry.
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open reads a heap dump and returns a graph, trying each registered
// parser until one recognizes the format.
func Open(r io.Reader) (*heap.HeapGraph, error) {
	preview := make([]byte, sniffSize)
	n, err := io.ReadFull(r, preview)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to read dump", err)
	}
	preview = preview[:n]

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, parser := range registry.parsers {
		if parser.CanParse(bytes.NewReader(preview)) {
			full := io.MultiReader(bytes.NewReader(preview), r)
			return parser.Parse(full)
		}
	}
	return nil, apperrors.Wrap(apperrors.CodeParseError,
		"no parser found for dump format", apperrors.ErrParseError)
}
