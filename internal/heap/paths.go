package heap

import (
	"fmt"
	"strings"

	"github.com/heap-analysis/pkg/collections"
)

// Path search defaults. The caps are normative: tests depend on them.
const (
	// DefaultMaxPaths caps the number of reported retainer paths.
	DefaultMaxPaths = 5
	// MaxPathDepth caps the edge count of one path; a path holds at most
	// MaxPathDepth+1 nodes.
	MaxPathDepth = 50
)

// Path is one retainer chain from a target node to the root, target first.
type Path struct {
	// Nodes is [target, retainer, ..., root].
	Nodes []NodeHandle
	// Rootless marks the single-entry report returned when no path to the
	// root exists within the depth cap.
	Rootless bool
}

// pathFrame is one entry of the reverse-DFS stack: a node plus its
// position within the predecessor list.
type pathFrame struct {
	node NodeHandle
	pos  int
}

// ReferencePaths enumerates up to maxPaths acyclic retainer paths from a
// target node to the root, walking the predecessor index depth-first with
// an explicit stack. maxPaths <= 0 selects DefaultMaxPaths.
//
// Cycle prevention marks nodes on the current path and unmarks them on
// backtrack, so alternates through shared retainers are still discovered.
// Paths are reported in discovery order, which is stable because
// predecessor enumeration order is stable.
func (s *Snapshot) ReferencePaths(target NodeHandle, maxPaths int) []Path {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	root := s.graph.Root()

	var found []Path
	onPath := collections.NewBitset(s.graph.NodeCount())

	stack := make([]pathFrame, 0, 32)
	stack = append(stack, pathFrame{node: target})
	onPath.Set(int(target))

	for len(stack) > 0 && len(found) < maxPaths {
		top := &stack[len(stack)-1]

		if top.node == root {
			found = append(found, Path{Nodes: currentPath(stack)})
			onPath.Clear(int(top.node))
			stack = stack[:len(stack)-1]
			continue
		}

		preds := s.preds.predecessorsOf(top.node)
		advanced := false
		for top.pos < len(preds) {
			p := preds[top.pos]
			top.pos++
			if onPath.Test(int(p)) || len(stack) > MaxPathDepth {
				continue
			}
			onPath.Set(int(p))
			stack = append(stack, pathFrame{node: p})
			advanced = true
			break
		}
		if !advanced {
			onPath.Clear(int(top.node))
			stack = stack[:len(stack)-1]
		}
	}

	if len(found) == 0 {
		return []Path{{Nodes: []NodeHandle{target}, Rootless: true}}
	}
	return found
}

// currentPath copies the node chain out of the stack.
func currentPath(stack []pathFrame) []NodeHandle {
	nodes := make([]NodeHandle, len(stack))
	for i, frame := range stack {
		nodes[i] = frame.node
	}
	return nodes
}

// FormatReferencePaths renders retainer paths as display strings, one per
// path, e.g. "Leaf (0x1000) <- Holder (0x2000) <- [GC Root]".
func (s *Snapshot) FormatReferencePaths(target NodeHandle, maxPaths int) []string {
	paths := s.ReferencePaths(target, maxPaths)
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = s.formatPath(path)
	}
	return out
}

func (s *Snapshot) formatPath(path Path) string {
	var sb strings.Builder
	for i, n := range path.Nodes {
		if i > 0 {
			sb.WriteString(" <- ")
		}
		sb.WriteString(s.DisplayName(s.graph.TypeOf(n)))
		if addr := s.graph.Address(n); addr != 0 {
			fmt.Fprintf(&sb, " (0x%x)", addr)
		}
	}
	if path.Rootless {
		sb.WriteString(" [no path to root]")
	}
	return sb.String()
}
