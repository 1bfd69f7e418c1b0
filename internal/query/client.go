// Package query caches note list results keyed by (page, search) and
// coordinates them with mutations.
//
// A Client is owned by the application root and driven from a single
// goroutine, normally a Bubble Tea Update loop. Network work leaves that
// loop as tea.Cmds whose messages (FetchedMsg, MutatedMsg) must be fed back
// through Apply and Settle. Because every state change happens on the loop,
// the Client holds no locks and is not safe for concurrent use.
//
// Every fetch is tagged with a sequence number. Only the response to the
// latest fetch issued for a key is accepted, so a slow, older response can
// never overwrite a newer one.
package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/notehub/internal/model"
)

const (
	// DefaultStaleTime is how long a fetched page is served without refetching.
	DefaultStaleTime = 10 * time.Second
	// DefaultCacheTime is how long an unobserved page stays in the cache.
	DefaultCacheTime = 5 * time.Minute
)

// Key identifies one cached list result.
type Key struct {
	Page   int
	Search string
}

func (k Key) String() string {
	if k.Search == "" {
		return fmt.Sprintf("notes[page=%d]", k.Page)
	}
	return fmt.Sprintf("notes[page=%d search=%q]", k.Page, k.Search)
}

// Fetcher performs the list call for key.
type Fetcher func(ctx context.Context, key Key) (*model.Page, error)

// FetchedMsg carries a list response back to the update loop.
type FetchedMsg struct {
	Key  Key
	Seq  uint64
	Page *model.Page
	Err  error
}

type entry struct {
	data        *model.Page
	err         error
	updatedAt   time.Time
	seq         uint64
	fetching    bool
	invalidated bool
	releasedAt  time.Time
}

type mutationKey struct {
	kind string
	id   string
}

// Client is the cache and mutation coordinator.
type Client struct {
	fetch     Fetcher
	staleTime time.Duration
	cacheTime time.Duration
	now       func() time.Time
	ctx       context.Context
	log       zerolog.Logger

	seq       uint64
	entries   map[Key]*entry
	observers map[Key]int
	pending   map[mutationKey]struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithStaleTime overrides DefaultStaleTime.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) { c.staleTime = d }
}

// WithCacheTime overrides DefaultCacheTime.
func WithCacheTime(d time.Duration) Option {
	return func(c *Client) { c.cacheTime = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithContext sets the context handed to fetchers and mutations.
func WithContext(ctx context.Context) Option {
	return func(c *Client) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the logger for cache decisions.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates an empty cache around fetch.
func New(fetch Fetcher, opts ...Option) *Client {
	c := &Client{
		fetch:     fetch,
		staleTime: DefaultStaleTime,
		cacheTime: DefaultCacheTime,
		now:       time.Now,
		ctx:       context.Background(),
		log:       zerolog.Nop(),
		entries:   make(map[Key]*entry),
		observers: make(map[Key]int),
		pending:   make(map[mutationKey]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure returns a command fetching key unless the cached page is still
// fresh or a fetch for key is already in flight. It returns nil otherwise.
func (c *Client) Ensure(key Key) tea.Cmd {
	e := c.entry(key)
	if e.fetching {
		return nil
	}
	if c.fresh(e) {
		c.log.Debug().Stringer("key", key).Msg("cache hit")
		return nil
	}
	return c.start(key, e)
}

// Refetch always issues a new fetch for key, superseding one in flight.
func (c *Client) Refetch(key Key) tea.Cmd {
	return c.start(key, c.entry(key))
}

// Apply stores msg if it answers the latest fetch issued for its key and
// reports whether it did. Superseded or orphaned responses are dropped.
func (c *Client) Apply(msg FetchedMsg) bool {
	e, ok := c.entries[msg.Key]
	if !ok || !e.fetching || msg.Seq != e.seq {
		c.log.Debug().Stringer("key", msg.Key).Uint64("seq", msg.Seq).Msg("discarding superseded response")
		return false
	}
	e.fetching = false
	if msg.Err != nil {
		e.err = msg.Err
		c.log.Warn().Err(msg.Err).Stringer("key", msg.Key).Msg("list fetch failed")
		return true
	}
	e.data = msg.Page
	e.err = nil
	e.updatedAt = c.now()
	e.invalidated = false
	return true
}

// Invalidate marks every cached page stale. Fetches already in flight are
// superseded, so a response computed before the invalidation is never
// stored. The returned command refetches every observed key.
func (c *Client) Invalidate() tea.Cmd {
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Search != keys[j].Search {
			return keys[i].Search < keys[j].Search
		}
		return keys[i].Page < keys[j].Page
	})

	var cmds []tea.Cmd
	for _, k := range keys {
		e := c.entries[k]
		e.invalidated = true
		switch {
		case c.observers[k] > 0:
			cmds = append(cmds, c.start(k, e))
		case e.fetching:
			c.supersede(e)
		}
	}
	c.log.Debug().Int("entries", len(keys)).Int("refetching", len(cmds)).Msg("cache invalidated")
	return tea.Batch(cmds...)
}

// Peek returns the cached page for key without affecting it.
func (c *Client) Peek(key Key) (*model.Page, bool) {
	e, ok := c.entries[key]
	if !ok || e.data == nil {
		return nil, false
	}
	return e.data, true
}

// Fetching reports whether a fetch for key is in flight.
func (c *Client) Fetching(key Key) bool {
	e, ok := c.entries[key]
	return ok && e.fetching
}

// Len returns the number of cached keys.
func (c *Client) Len() int { return len(c.entries) }

func (c *Client) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

func (c *Client) fresh(e *entry) bool {
	return e.data != nil && !e.invalidated && c.now().Sub(e.updatedAt) < c.staleTime
}

func (c *Client) start(key Key, e *entry) tea.Cmd {
	c.seq++
	seq := c.seq
	e.seq = seq
	e.fetching = true

	fetch, ctx := c.fetch, c.ctx
	c.log.Debug().Stringer("key", key).Uint64("seq", seq).Msg("fetching")
	return func() tea.Msg {
		page, err := fetch(ctx, key)
		return FetchedMsg{Key: key, Seq: seq, Page: page, Err: err}
	}
}

// supersede makes the in-flight response of e unacceptable.
func (c *Client) supersede(e *entry) {
	c.seq++
	e.seq = c.seq
	e.fetching = false
}

func (c *Client) observe(key Key) {
	c.observers[key]++
}

func (c *Client) release(key Key, teardown bool) {
	c.observers[key]--
	if c.observers[key] > 0 {
		return
	}
	delete(c.observers, key)
	if e, ok := c.entries[key]; ok {
		e.releasedAt = c.now()
		if teardown && e.fetching {
			c.supersede(e)
		}
	}
}

// gc drops unobserved entries released longer than cacheTime ago.
func (c *Client) gc() {
	now := c.now()
	for k, e := range c.entries {
		if c.observers[k] > 0 || e.fetching || e.releasedAt.IsZero() {
			continue
		}
		if now.Sub(e.releasedAt) >= c.cacheTime {
			delete(c.entries, k)
		}
	}
}
