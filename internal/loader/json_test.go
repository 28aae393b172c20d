package loader

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heap-analysis/internal/heap"
	apperrors "github.com/heap-analysis/pkg/errors"
)

const sampleDump = `{
  "objects": [
    {"id": 100, "type": "[.NET Roots]", "size": 0, "refs": [200, 300]},
    {"id": 200, "type": "My.App.Widget", "size": 24, "address": 4096, "refs": [400]},
    {"id": 300, "type": "My.App.Widget", "size": 24, "address": 4128, "refs": [400]},
    {"id": 400, "type": "System.String", "size": 64, "address": 8192}
  ],
  "root": 100,
  "counters": {"gc_count": 3}
}`

func TestJSONParser_Parse(t *testing.T) {
	g, err := (&JSONParser{}).Parse(strings.NewReader(sampleDump))
	require.NoError(t, err)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.TypeCount())
	assert.Equal(t, heap.NodeHandle(0), g.Root())
	assert.Equal(t, "[.NET Roots]", g.TypeName(g.TypeOf(0)))
	assert.Equal(t, "My.App.Widget", g.TypeName(g.TypeOf(1)))
	assert.Equal(t, uint64(24), g.ShallowSize(1))
	assert.Equal(t, uint64(4096), g.Address(1))
	assert.Equal(t, []heap.NodeHandle{1, 2}, g.Children(0))
	assert.Equal(t, []heap.NodeHandle{3}, g.Children(1))
	assert.Equal(t, map[string]int64{"gc_count": 3}, g.Counters())
}

func TestJSONParser_ParseIntoSnapshot(t *testing.T) {
	g, err := (&JSONParser{}).Parse(strings.NewReader(sampleDump))
	require.NoError(t, err)

	s := heap.NewSnapshot(g)
	stats := s.HeapStatistics()
	assert.Equal(t, int64(4), stats.TotalObjects)
	assert.Equal(t, uint64(112), stats.TotalShallow)
	assert.Equal(t, uint64(112), stats.TotalRetained)
	// The shared string is dominated by the root, not by either widget.
	assert.Equal(t, heap.NodeHandle(0), s.ImmediateDominator(3))
}

func TestJSONParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "garbage"},
		{"no objects", `{"objects": [], "root": 1}`},
		{"duplicate id", `{"objects": [{"id": 1, "type": "A", "size": 1}, {"id": 1, "type": "A", "size": 1}], "root": 1}`},
		{"missing type", `{"objects": [{"id": 1, "size": 1}], "root": 1}`},
		{"unknown root", `{"objects": [{"id": 1, "type": "A", "size": 1}], "root": 9}`},
		{"dangling ref", `{"objects": [{"id": 1, "type": "A", "size": 1, "refs": [5]}], "root": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&JSONParser{}).Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeParseError, apperrors.GetErrorCode(err))
		})
	}
}

func TestJSONParser_CanParse(t *testing.T) {
	p := &JSONParser{}

	assert.True(t, p.CanParse(strings.NewReader(sampleDump)))
	assert.True(t, p.CanParse(strings.NewReader(`  {"objects": []}`)))
	assert.False(t, p.CanParse(strings.NewReader("JAVA PROFILE 1.0.2")))
	assert.False(t, p.CanParse(strings.NewReader("")))
	assert.False(t, p.CanParse(strings.NewReader(`["objects"]`)))
}

func TestOpen_SelectsJSONParser(t *testing.T) {
	g, err := Open(strings.NewReader(sampleDump))
	require.NoError(t, err)
	assert.Equal(t, 4, g.NodeCount())
}

func TestOpen_UnknownFormat(t *testing.T) {
	_, err := Open(strings.NewReader("JAVA PROFILE 1.0.2\x00"))
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestOpen_LargeDocumentPastSniffWindow(t *testing.T) {
	// Pad a valid document well past the sniff window to exercise the
	// preview-plus-rest reassembly.
	var sb strings.Builder
	sb.WriteString(`{"objects": [`)
	sb.WriteString(`{"id": 1, "type": "[.NET Roots]", "size": 0, "refs": [2]}`)
	for i := 2; i <= 500; i++ {
		sb.WriteString(",")
		sb.WriteString(`{"id": `)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`, "type": "Filler.Type", "size": 8}`)
	}
	sb.WriteString(`], "root": 1}`)

	g, err := Open(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, 500, g.NodeCount())
}
