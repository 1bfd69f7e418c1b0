// Package debounce coalesces bursts of input into a single Bubble Tea message.
//
// Every Trigger supersedes the previous pending timer; only the message of
// the most recent timer is accepted by Fired. Older timers still tick, but
// their messages are dropped, so from the caller's point of view they are
// cancelled.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet period search input must reach before it fires.
const DefaultDelay = 500 * time.Millisecond

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// FiredMsg is delivered when a timer elapses.
type FiredMsg struct {
	ID    int
	Tag   int
	Value string
}

// Debouncer is a value-type component; keep it in your model and call its
// methods from Update.
type Debouncer struct {
	Delay time.Duration

	id      int
	tag     int
	pending bool
}

// New returns a Debouncer with the given delay (DefaultDelay when <= 0).
func New(delay time.Duration) Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return Debouncer{Delay: delay, id: nextID()}
}

// Trigger cancels the pending timer, if any, and schedules a new one
// carrying value.
func (d *Debouncer) Trigger(value string) tea.Cmd {
	d.tag++
	d.pending = true
	id, tag := d.id, d.tag
	return tea.Tick(d.Delay, func(time.Time) tea.Msg {
		return FiredMsg{ID: id, Tag: tag, Value: value}
	})
}

// Cancel drops the pending timer.
func (d *Debouncer) Cancel() {
	d.tag++
	d.pending = false
}

// Pending reports whether a timer is scheduled and not yet accepted.
func (d *Debouncer) Pending() bool { return d.pending }

// Fired returns the value of msg and true when msg comes from the latest
// timer of this debouncer. Any other message yields false.
func (d *Debouncer) Fired(msg FiredMsg) (string, bool) {
	if msg.ID != d.id || msg.Tag != d.tag || !d.pending {
		return "", false
	}
	d.pending = false
	return msg.Value, true
}
