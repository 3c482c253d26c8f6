package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDebounce is how long typing must pause before suggestions refresh.
const DefaultSearchDebounce = 150 * time.Millisecond

// debounceMsg is delivered when a Debouncer's timer elapses.
type debounceMsg struct {
	id  string
	seq int
}

// Debouncer collapses rapid events (keystrokes, resizes) into one. Each Trigger
// starts a tea.Tick tagged with a sequence number; only the tick carrying the
// latest number is reported as settled by Settled.
type Debouncer struct {
	id       string
	seq      int
	duration time.Duration
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(id string, duration time.Duration) *Debouncer {
	return &Debouncer{id: id, duration: duration}
}

// Trigger schedules a settle check and invalidates any pending one.
func (d *Debouncer) Trigger() tea.Cmd {
	d.seq++
	seq, id := d.seq, d.id
	return tea.Tick(d.duration, func(time.Time) tea.Msg {
		return debounceMsg{id: id, seq: seq}
	})
}

// Cancel invalidates any pending tick.
func (d *Debouncer) Cancel() {
	d.seq++
}

// Settled reports whether msg is this debouncer's latest tick.
func (d *Debouncer) Settled(msg tea.Msg) bool {
	m, ok := msg.(debounceMsg)
	return ok && m.id == d.id && m.seq == d.seq
}
