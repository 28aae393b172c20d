package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeNamer_SpecialNames(t *testing.T) {
	n := newTypeNamer([]string{"[.NET Roots]", "[static vars]"})

	tests := map[string]string{
		"[.NET Roots]":        "[GC Root]",
		"[static vars]":       "[Static Fields]",
		"[pinned handles]":    "[Pinned]",
		"[finalizer handles]": "[Finalizer Queue]",
		"[strong handles]":    "[Strong Handles]",
		"[weak handles]":      "[Weak References]",
		"[other roots]":       "[Other Roots]",
	}
	for raw, want := range tests {
		assert.Equal(t, want, n.Format(raw), "raw name %q", raw)
	}
}

func TestTypeNamer_StaticVar(t *testing.T) {
	n := newTypeNamer(nil)

	assert.Equal(t, "Config.Instance (static)", n.Format("[static var My.App.Config.Instance]"))
	assert.Equal(t, "Cache.Shared (static)", n.Format("[static var Cache.Shared]"))
	assert.Equal(t, "Lone (static)", n.Format("[static var Lone]"))
}

func TestTypeNamer_UniqueFinalSegment(t *testing.T) {
	n := newTypeNamer([]string{"My.App.Widget", "My.App.Gadget"})

	assert.Equal(t, "Widget", n.Format("My.App.Widget"))
	assert.Equal(t, "Gadget", n.Format("My.App.Gadget"))
}

func TestTypeNamer_AmbiguousFinalSegment(t *testing.T) {
	n := newTypeNamer([]string{"My.App.Widget", "Other.Lib.Widget"})

	assert.Equal(t, "App.Widget", n.Format("My.App.Widget"))
	assert.Equal(t, "Lib.Widget", n.Format("Other.Lib.Widget"))
}

func TestTypeNamer_SystemKeepsTypeNameOnly(t *testing.T) {
	n := newTypeNamer([]string{"System.Text.String", "My.Fake.String"})

	assert.Equal(t, "String", n.Format("System.Text.String"))
	assert.Equal(t, "Fake.String", n.Format("My.Fake.String"))
}

func TestTypeNamer_GenericParameters(t *testing.T) {
	raw := "System.Collections.Generic.Dictionary<System.String, My.App.Widget>"
	n := newTypeNamer([]string{raw})

	assert.Equal(t, "Dictionary<String, Widget>", n.Format(raw))
}

func TestTypeNamer_NestedGenerics(t *testing.T) {
	raw := "System.Collections.Generic.List<System.Collections.Generic.Dictionary<System.Int32, My.App.Widget>>"
	n := newTypeNamer([]string{raw})

	assert.Equal(t, "List<Dictionary<Int32, Widget>>", n.Format(raw))
}

func TestTypeNamer_AmbiguityInsideGenerics(t *testing.T) {
	n := newTypeNamer([]string{
		"System.Collections.Generic.List<My.App.Widget>",
		"Other.Lib.Widget",
	})

	assert.Equal(t, "List<App.Widget>", n.Format("System.Collections.Generic.List<My.App.Widget>"))
}

func TestTypeNamer_NoNamespace(t *testing.T) {
	n := newTypeNamer([]string{"Plain"})
	assert.Equal(t, "Plain", n.Format("Plain"))
}

func TestTypeNamer_Cache(t *testing.T) {
	n := newTypeNamer([]string{"My.App.Widget"})

	first := n.Format("My.App.Widget")
	second := n.Format("My.App.Widget")
	assert.Equal(t, first, second)
	assert.Len(t, n.cache, 1)
}
