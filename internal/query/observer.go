package query

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/notehub/internal/model"
)

// Result is what a component renders for its current key.
type Result struct {
	Key  Key
	Data *model.Page
	// Placeholder is set when Data belongs to the previously observed key
	// because the current key has no data yet.
	Placeholder bool

	// Loading: no data for this key yet and a fetch is in flight.
	Loading bool
	// Refreshing: data for this key exists and is being revalidated.
	Refreshing bool
	// Fetching is Loading || Refreshing.
	Fetching bool
	// Failed is set when the last fetch for this key failed; Err holds why.
	Failed bool
	Err    error

	UpdatedAt time.Time
}

// Notes returns the notes to display, never nil.
func (r Result) Notes() []model.Note {
	if r.Data == nil || r.Data.Notes == nil {
		return []model.Note{}
	}
	return r.Data.Notes
}

// TotalPages returns the page count of the displayed data, 0 without data.
func (r Result) TotalPages() int {
	if r.Data == nil {
		return 0
	}
	return r.Data.TotalPages
}

// Observer is one component's subscription to a key. While the key changes,
// the last displayed page is kept as a placeholder until the new key's page
// arrives.
type Observer struct {
	c           *Client
	key         Key
	placeholder *model.Page
	closed      bool
}

// Observe subscribes to key and returns the command for its initial fetch.
func (c *Client) Observe(key Key) (*Observer, tea.Cmd) {
	o := &Observer{c: c, key: key}
	c.observe(key)
	return o, c.Ensure(key)
}

// Key returns the observed key.
func (o *Observer) Key() Key { return o.key }

// SetKey switches the observed key and returns the fetch command for it,
// or nil when the cache already holds a fresh page.
func (o *Observer) SetKey(key Key) tea.Cmd {
	if o.closed {
		return nil
	}
	if key == o.key {
		return o.c.Ensure(key)
	}
	if d := o.Result().Data; d != nil {
		o.placeholder = d
	}
	o.c.release(o.key, false)
	o.key = key
	o.c.observe(key)
	o.c.gc()
	return o.c.Ensure(key)
}

// Refetch forces a fetch of the observed key.
func (o *Observer) Refetch() tea.Cmd {
	if o.closed {
		return nil
	}
	return o.c.Refetch(o.key)
}

// Close ends the subscription. A fetch still in flight for a key nobody else
// observes is not aborted; its response is ignored.
func (o *Observer) Close() {
	if o.closed {
		return
	}
	o.closed = true
	o.c.release(o.key, true)
}

// Result computes the observer's current view of the cache.
func (o *Observer) Result() Result {
	r := Result{Key: o.key}
	e, ok := o.c.entries[o.key]
	if ok {
		r.Data = e.data
		r.Fetching = e.fetching
		r.UpdatedAt = e.updatedAt
		if e.err != nil {
			r.Failed = true
			r.Err = e.err
		}
	}
	hasOwn := r.Data != nil
	if !hasOwn && o.placeholder != nil {
		r.Data = o.placeholder
		r.Placeholder = true
	}
	r.Loading = r.Fetching && !hasOwn
	r.Refreshing = r.Fetching && hasOwn
	return r
}
