package utils

import (
	"fmt"
	"sync"
	"time"
)

// TimerOutput defines the interface for outputting timer results.
type TimerOutput interface {
	// Output writes the timing information.
	Output(format string, args ...interface{})
}

// LoggerOutput adapts Logger to TimerOutput.
type LoggerOutput struct {
	Logger Logger
}

// Output implements TimerOutput using Logger.Info.
func (o *LoggerOutput) Output(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.Info(format, args...)
	}
}

// Phase represents a single timing phase.
type Phase struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	completed bool
}

// PhaseTimer provides a fluent handle for timing a single phase.
// It supports automatic completion via defer.
type PhaseTimer struct {
	timer     *Timer
	phaseName string
}

// Stop stops the phase timer and records the duration.
// Safe to call multiple times; only the first call has effect.
func (pt *PhaseTimer) Stop() time.Duration {
	return pt.timer.StopPhase(pt.phaseName)
}

// Timer times named phases of a larger operation and reports them in order.
type Timer struct {
	mu         sync.RWMutex
	name       string
	startTime  time.Time
	phases     map[string]*Phase
	phaseOrder []string
	output     TimerOutput
	clock      Clock
}

// TimerOption configures a Timer instance.
type TimerOption func(*Timer)

// WithOutput sets the output strategy for the timer.
func WithOutput(output TimerOutput) TimerOption {
	return func(t *Timer) {
		t.output = output
	}
}

// WithLogger sets a Logger as the output strategy.
func WithLogger(logger Logger) TimerOption {
	return func(t *Timer) {
		if logger != nil {
			t.output = &LoggerOutput{Logger: logger}
		}
	}
}

// WithClock sets the clock used by the timer.
func WithClock(clock Clock) TimerOption {
	return func(t *Timer) {
		t.clock = clock
	}
}

// NewTimer creates a timer for an operation.
func NewTimer(name string, opts ...TimerOption) *Timer {
	t := &Timer{
		name:   name,
		phases: make(map[string]*Phase),
		clock:  RealClock{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startTime = t.clock.Now()
	return t
}

// StartPhase starts timing a named phase and returns a handle to stop it.
func (t *Timer) StartPhase(name string) *PhaseTimer {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.phases[name]; !exists {
		t.phaseOrder = append(t.phaseOrder, name)
	}
	t.phases[name] = &Phase{
		Name:      name,
		StartTime: t.clock.Now(),
	}
	return &PhaseTimer{timer: t, phaseName: name}
}

// StopPhase stops a named phase and returns its duration.
func (t *Timer) StopPhase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	phase, ok := t.phases[name]
	if !ok || phase.completed {
		return 0
	}
	phase.EndTime = t.clock.Now()
	phase.Duration = phase.EndTime.Sub(phase.StartTime)
	phase.completed = true
	return phase.Duration
}

// PhaseDuration returns the recorded duration of a completed phase.
func (t *Timer) PhaseDuration(name string) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if phase, ok := t.phases[name]; ok && phase.completed {
		return phase.Duration
	}
	return 0
}

// Total returns the elapsed time since the timer was created.
func (t *Timer) Total() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clock.Since(t.startTime)
}

// Report writes a summary of all phases to the configured output.
func (t *Timer) Report() {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.output == nil {
		return
	}
	t.output.Output("=== Timing: %s ===", t.name)
	for _, name := range t.phaseOrder {
		phase := t.phases[name]
		if phase.completed {
			t.output.Output("  %-24s %s", name, formatDuration(phase.Duration))
		} else {
			t.output.Output("  %-24s (running)", name)
		}
	}
	t.output.Output("  %-24s %s", "total", formatDuration(t.clock.Since(t.startTime)))
}

// formatDuration renders a duration with millisecond precision.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
