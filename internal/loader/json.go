package loader

import (
	"bytes"
	"encoding/json"
	"io"
	"unicode"

	"github.com/heap-analysis/internal/heap"
	apperrors "github.com/heap-analysis/pkg/errors"
)

// JSONParser reads the JSON snapshot document format:
//
//	{
//	  "objects": [
//	    {"id": 1, "type": "[.NET Roots]", "size": 0, "address": 0, "refs": [2]},
//	    {"id": 2, "type": "My.App.Widget", "size": 24, "address": 4096, "refs": []}
//	  ],
//	  "root": 1,
//	  "counters": {"gc_count": 3}
//	}
//
// Object IDs are arbitrary 64-bit identifiers; the parser assigns dense
// node handles in document order and dense type handles in first-seen
// order, so the resulting graph is deterministic for a given document.
type JSONParser struct{}

type jsonDocument struct {
	Objects  []jsonObject     `json:"objects"`
	Root     uint64           `json:"root"`
	Counters map[string]int64 `json:"counters,omitempty"`
}

type jsonObject struct {
	ID      uint64   `json:"id"`
	Type    string   `json:"type"`
	Size    uint64   `json:"size"`
	Address uint64   `json:"address,omitempty"`
	Refs    []uint64 `json:"refs,omitempty"`
}

// Name implements Parser.
func (p *JSONParser) Name() string {
	return "json"
}

// CanParse implements Parser by checking for a JSON object carrying an
// "objects" key. The preview usually truncates the document, so this is a
// byte-level sniff, not a full decode.
func (p *JSONParser) CanParse(r io.Reader) bool {
	buf := make([]byte, 1024)
	n, err := r.Read(buf)
	if n == 0 || (err != nil && err != io.EOF) {
		return false
	}
	head := bytes.TrimLeftFunc(buf[:n], unicode.IsSpace)
	return len(head) > 0 && head[0] == '{' && bytes.Contains(buf[:n], []byte(`"objects"`))
}

// Parse implements Parser.
func (p *JSONParser) Parse(r io.Reader) (*heap.HeapGraph, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to decode JSON dump", err)
	}
	if len(doc.Objects) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeParseError,
			"dump contains no objects", apperrors.ErrParseError)
	}

	// First pass: dense handles for object IDs and type names.
	handleByID := make(map[uint64]heap.NodeHandle, len(doc.Objects))
	typeByName := make(map[string]heap.TypeHandle)
	var typeNames []string

	for i, obj := range doc.Objects {
		if _, dup := handleByID[obj.ID]; dup {
			return nil, apperrors.Newf(apperrors.CodeParseError,
				"duplicate object id %d", obj.ID)
		}
		handleByID[obj.ID] = heap.NodeHandle(i)
		if obj.Type == "" {
			return nil, apperrors.Newf(apperrors.CodeParseError,
				"object %d has no type name", obj.ID)
		}
		if _, ok := typeByName[obj.Type]; !ok {
			typeByName[obj.Type] = heap.TypeHandle(len(typeNames))
			typeNames = append(typeNames, obj.Type)
		}
	}

	rootHandle, ok := handleByID[doc.Root]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeParseError,
			"root id %d is not an object", doc.Root)
	}

	// Second pass: node inputs with resolved child handles, preserving
	// reference order.
	nodes := make([]heap.NodeInput, len(doc.Objects))
	for i, obj := range doc.Objects {
		children := make([]heap.NodeHandle, 0, len(obj.Refs))
		for _, ref := range obj.Refs {
			child, ok := handleByID[ref]
			if !ok {
				return nil, apperrors.Newf(apperrors.CodeParseError,
					"object %d references unknown id %d", obj.ID, ref)
			}
			children = append(children, child)
		}
		nodes[i] = heap.NodeInput{
			Type:     typeByName[obj.Type],
			Size:     obj.Size,
			Address:  obj.Address,
			Children: children,
		}
	}

	return heap.NewHeapGraph(nodes, typeNames, rootHandle, doc.Counters)
}

func init() {
	Register(&JSONParser{})
}
