package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captureOutput struct {
	lines []string
}

func (c *captureOutput) Output(format string, args ...interface{}) {
	c.lines = append(c.lines, format)
}

func TestTimer_Phases(t *testing.T) {
	clock := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	timer := NewTimer("snapshot", WithClock(clock))

	pt := timer.StartPhase("post-order")
	clock.Advance(120 * time.Millisecond)
	d := pt.Stop()

	assert.Equal(t, 120*time.Millisecond, d)
	assert.Equal(t, 120*time.Millisecond, timer.PhaseDuration("post-order"))
}

func TestTimer_StopTwice(t *testing.T) {
	clock := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	timer := NewTimer("snapshot", WithClock(clock))

	pt := timer.StartPhase("dominators")
	clock.Advance(50 * time.Millisecond)
	first := pt.Stop()
	clock.Advance(time.Hour)
	second := pt.Stop()

	assert.Equal(t, 50*time.Millisecond, first)
	assert.Equal(t, time.Duration(0), second)
	assert.Equal(t, 50*time.Millisecond, timer.PhaseDuration("dominators"))
}

func TestTimer_Total(t *testing.T) {
	clock := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	timer := NewTimer("snapshot", WithClock(clock))
	clock.Advance(2 * time.Second)
	assert.Equal(t, 2*time.Second, timer.Total())
}

func TestTimer_Report(t *testing.T) {
	clock := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	out := &captureOutput{}
	timer := NewTimer("snapshot", WithClock(clock), WithOutput(out))

	timer.StartPhase("reverse-index").Stop()
	timer.Report()

	// Header, one phase line, total line.
	assert.Len(t, out.lines, 3)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5ms", formatDuration(1500*time.Microsecond))
	assert.Equal(t, "2.50s", formatDuration(2500*time.Millisecond))
}
