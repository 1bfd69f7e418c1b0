package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/idilsaglam/notehub/internal/model"
)

// fakeAPI is an in-memory notes list that counts list calls per key.
type fakeAPI struct {
	notes   []model.Note
	perPage int
	calls   map[Key]int
	fail    error
}

func newFakeAPI(ids ...string) *fakeAPI {
	api := &fakeAPI{perPage: 2, calls: make(map[Key]int)}
	for _, id := range ids {
		api.notes = append(api.notes, model.Note{ID: id, Title: "note " + id, Tag: model.TagTodo})
	}
	return api
}

func (f *fakeAPI) fetch(_ context.Context, key Key) (*model.Page, error) {
	f.calls[key]++
	if f.fail != nil {
		return nil, f.fail
	}
	total := (len(f.notes) + f.perPage - 1) / f.perPage
	start := (key.Page - 1) * f.perPage
	end := start + f.perPage
	if start > len(f.notes) {
		start = len(f.notes)
	}
	if end > len(f.notes) {
		end = len(f.notes)
	}
	out := append([]model.Note(nil), f.notes[start:end]...)
	return &model.Page{Notes: out, TotalPages: total}, nil
}

func (f *fakeAPI) remove(id string) {
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return
		}
	}
}

func (f *fakeAPI) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// run executes cmd, expanding batches, and returns the produced messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle runs cmd and feeds every FetchedMsg back into c.
func settle(c *Client, cmd tea.Cmd) {
	for _, msg := range run(cmd) {
		if fm, ok := msg.(FetchedMsg); ok {
			c.Apply(fm)
		}
	}
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func TestEnsure_IdempotentWithinStaleWindow(t *testing.T) {
	api := newFakeAPI("a", "b", "c")
	clock := newClock()
	c := New(api.fetch, WithClock(clock.Now))
	key := Key{Page: 1, Search: "x"}

	settle(c, c.Ensure(key))
	first, ok := c.Peek(key)
	require.True(t, ok)

	clock.Advance(9 * time.Second)
	assert.Nil(t, c.Ensure(key))
	second, _ := c.Peek(key)

	assert.Same(t, first, second)
	assert.Equal(t, 1, api.calls[key])
}

func TestEnsure_RefetchesWhenStale(t *testing.T) {
	api := newFakeAPI("a")
	clock := newClock()
	c := New(api.fetch, WithClock(clock.Now))
	key := Key{Page: 1}

	settle(c, c.Ensure(key))
	clock.Advance(DefaultStaleTime)
	settle(c, c.Ensure(key))

	assert.Equal(t, 2, api.calls[key])
}

func TestEnsure_OneInFlightPerKey(t *testing.T) {
	api := newFakeAPI("a")
	c := New(api.fetch)
	key := Key{Page: 1}

	cmd := c.Ensure(key)
	require.NotNil(t, cmd)
	assert.Nil(t, c.Ensure(key))
	assert.True(t, c.Fetching(key))

	settle(c, cmd)
	assert.False(t, c.Fetching(key))
	assert.Equal(t, 1, api.calls[key])
}

func TestApply_OlderResponseDoesNotOverwriteNewer(t *testing.T) {
	api := newFakeAPI("a", "b")
	c := New(api.fetch)
	key := Key{Page: 1}

	older := run(c.Refetch(key))[0].(FetchedMsg)
	api.remove("a")
	newer := run(c.Refetch(key))[0].(FetchedMsg)

	assert.True(t, c.Apply(newer))
	assert.False(t, c.Apply(older))

	page, _ := c.Peek(key)
	assert.False(t, page.Contains("a"))
}

func TestApply_OlderArrivingFirstIsDiscarded(t *testing.T) {
	api := newFakeAPI("a", "b")
	c := New(api.fetch)
	key := Key{Page: 1}

	older := run(c.Refetch(key))[0].(FetchedMsg)
	api.remove("a")
	newer := run(c.Refetch(key))[0].(FetchedMsg)

	assert.False(t, c.Apply(older))
	assert.True(t, c.Fetching(key))
	assert.True(t, c.Apply(newer))

	page, _ := c.Peek(key)
	assert.False(t, page.Contains("a"))
}

func testLatestSequenceWins(t *rapid.T) {
	n := rapid.IntRange(2, 6).Draw(t, "fetches")
	order := rapid.Permutation(intRange(n)).Draw(t, "arrival")

	calls := 0
	fetch := func(context.Context, Key) (*model.Page, error) {
		calls++
		return &model.Page{Notes: []model.Note{{ID: fmt.Sprint(calls)}}, TotalPages: 1}, nil
	}
	c := New(fetch)
	key := Key{Page: 1}

	msgs := make([]FetchedMsg, n)
	for i := range msgs {
		msgs[i] = run(c.Refetch(key))[0].(FetchedMsg)
	}
	for _, i := range order {
		c.Apply(msgs[i])
	}

	page, ok := c.Peek(key)
	if !ok || !page.Contains(fmt.Sprint(n)) {
		t.Fatalf("arrival order %v: cached %+v, want response of fetch %d", order, page, n)
	}
}

func intRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestApply_LatestSequenceWinsProperty(t *testing.T) {
	rapid.Check(t, testLatestSequenceWins)
}

func TestApply_FailureKeepsPreviousData(t *testing.T) {
	api := newFakeAPI("a")
	c := New(api.fetch)
	o, cmd := c.Observe(Key{Page: 1})
	settle(c, cmd)

	api.fail = errors.New("network down")
	settle(c, o.Refetch())

	r := o.Result()
	assert.True(t, r.Failed)
	assert.EqualError(t, r.Err, "network down")
	require.NotNil(t, r.Data)
	assert.True(t, r.Data.Contains("a"))
	assert.False(t, r.Fetching)
}

func TestInvalidate_ForcesFreshCallForEveryFetchedKey(t *testing.T) {
	api := newFakeAPI("a", "b", "c")
	c := New(api.fetch)
	p1, p2 := Key{Page: 1}, Key{Page: 2, Search: "x"}
	settle(c, c.Ensure(p1))
	settle(c, c.Ensure(p2))
	require.Nil(t, c.Ensure(p1))

	settle(c, c.Settle(MutatedMsg{Kind: "create"}))

	settle(c, c.Ensure(p1))
	settle(c, c.Ensure(p2))
	assert.Equal(t, 2, api.calls[p1])
	assert.Equal(t, 2, api.calls[p2])
}

func TestInvalidate_RefetchesObservedKeysOnly(t *testing.T) {
	api := newFakeAPI("a", "b", "c")
	c := New(api.fetch)
	o, cmd := c.Observe(Key{Page: 1})
	settle(c, cmd)
	settle(c, c.Ensure(Key{Page: 2}))

	settle(c, c.Invalidate())

	assert.Equal(t, 2, api.calls[o.Key()])
	assert.Equal(t, 1, api.calls[Key{Page: 2}])
}

func TestPeek_Missing(t *testing.T) {
	c := New(newFakeAPI().fetch)
	_, ok := c.Peek(Key{Page: 1})
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "notes[page=1]", Key{Page: 1}.String())
	assert.Equal(t, `notes[page=2 search="milk"]`, Key{Page: 2, Search: "milk"}.String())
}
