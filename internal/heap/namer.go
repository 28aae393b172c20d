package heap

import "strings"

// specialNames maps reserved root-category names to fixed display strings.
var specialNames = map[string]string{
	"[.NET Roots]":        "[GC Root]",
	"[static vars]":       "[Static Fields]",
	"[pinned handles]":    "[Pinned]",
	"[finalizer handles]": "[Finalizer Queue]",
	"[strong handles]":    "[Strong Handles]",
	"[weak handles]":      "[Weak References]",
	"[other roots]":       "[Other Roots]",
}

const staticVarPrefix = "[static var "

// TypeNamer produces display names for raw type names. Namespace-qualified
// names are shortened to their final segment when that segment is unique
// among the snapshot's types; ambiguous segments keep one extra namespace
// level, except System.* names, which keep the type name alone. The
// ambiguity map is computed once over all observed names, so a
// namer is scoped to its snapshot.
//
// Display names are presentation only and are never used as aggregation or
// join keys.
type TypeNamer struct {
	// shortCount[s] = number of distinct observed base names whose final
	// segment is s.
	shortCount map[string]int
	cache      map[string]string
}

// newTypeNamer builds a namer over the snapshot's observed type names.
func newTypeNamer(observed []string) *TypeNamer {
	n := &TypeNamer{
		shortCount: make(map[string]int, len(observed)),
		cache:      make(map[string]string, len(observed)),
	}
	seen := make(map[string]bool, len(observed))
	for _, name := range observed {
		n.countSegments(name, seen)
	}
	return n
}

// countSegments records the final segment of a name's base part and
// recurses into generic parameters so nested names participate in
// ambiguity detection.
func (n *TypeNamer) countSegments(name string, seen map[string]bool) {
	if _, special := specialNames[name]; special {
		return
	}
	if strings.HasPrefix(name, staticVarPrefix) {
		return
	}
	base, args := splitGeneric(name)
	if !seen[base] {
		seen[base] = true
		n.shortCount[finalSegment(base)]++
	}
	for _, arg := range args {
		n.countSegments(arg, seen)
	}
}

// Format returns the display name for a raw type name. Results are cached
// per raw name.
func (n *TypeNamer) Format(raw string) string {
	if cached, ok := n.cache[raw]; ok {
		return cached
	}
	formatted := n.format(raw)
	n.cache[raw] = formatted
	return formatted
}

func (n *TypeNamer) format(raw string) string {
	if fixed, ok := specialNames[raw]; ok {
		return fixed
	}
	if strings.HasPrefix(raw, staticVarPrefix) && strings.HasSuffix(raw, "]") {
		target := raw[len(staticVarPrefix) : len(raw)-1]
		return lastSegments(target, 2) + " (static)"
	}
	return n.simplify(raw)
}

// simplify shortens one (possibly generic) type name.
func (n *TypeNamer) simplify(name string) string {
	base, args := splitGeneric(name)

	short := finalSegment(base)
	display := short
	if n.shortCount[short] > 1 {
		if strings.HasPrefix(base, "System.") {
			display = short
		} else {
			display = lastSegments(base, 2)
		}
	}

	if len(args) == 0 {
		return display
	}
	simplified := make([]string, len(args))
	for i, arg := range args {
		simplified[i] = n.simplify(arg)
	}
	return display + "<" + strings.Join(simplified, ", ") + ">"
}

// splitGeneric splits "Base<A, B<C>>" into "Base" and ["A", "B<C>"].
// Names without generic parameters return (name, nil).
func splitGeneric(name string) (string, []string) {
	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		return name, nil
	}
	base := name[:open]
	inner := name[open+1 : len(name)-1]

	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return base, args
}

// finalSegment returns the part after the last '.'.
func finalSegment(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// lastSegments returns the last k dot-separated segments of name.
func lastSegments(name string, k int) string {
	segments := strings.Split(name, ".")
	if len(segments) <= k {
		return name
	}
	return strings.Join(segments[len(segments)-k:], ".")
}
