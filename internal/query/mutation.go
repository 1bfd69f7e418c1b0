package query

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// MutationFunc performs one create or delete call.
type MutationFunc func(ctx context.Context) (any, error)

// MutatedMsg carries a mutation outcome back to the update loop.
type MutatedMsg struct {
	Kind  string
	ID    string
	Value any
	Err   error
}

// Mutate runs fn as a command and marks (kind, id) pending until the result
// is settled. It returns nil while the same (kind, id) is already pending.
// Mutations with different ids run concurrently.
func (c *Client) Mutate(kind, id string, fn MutationFunc) tea.Cmd {
	k := mutationKey{kind: kind, id: id}
	if _, busy := c.pending[k]; busy {
		c.log.Debug().Str("kind", kind).Str("id", id).Msg("mutation already pending")
		return nil
	}
	c.pending[k] = struct{}{}

	ctx := c.ctx
	return func() tea.Msg {
		v, err := fn(ctx)
		return MutatedMsg{Kind: kind, ID: id, Value: v, Err: err}
	}
}

// Settle clears the pending mark of msg. On success it invalidates the whole
// list cache and returns the refetch command; on failure the cache is left
// untouched and nil is returned.
func (c *Client) Settle(msg MutatedMsg) tea.Cmd {
	delete(c.pending, mutationKey{kind: msg.Kind, id: msg.ID})
	if msg.Err != nil {
		c.log.Warn().Err(msg.Err).Str("kind", msg.Kind).Str("id", msg.ID).Msg("mutation failed")
		return nil
	}
	c.log.Info().Str("kind", msg.Kind).Str("id", msg.ID).Msg("mutation succeeded")
	return c.Invalidate()
}

// Pending reports whether (kind, id) is in flight.
func (c *Client) Pending(kind, id string) bool {
	_, ok := c.pending[mutationKey{kind: kind, id: id}]
	return ok
}

// PendingCount returns how many mutations of kind are in flight.
func (c *Client) PendingCount(kind string) int {
	n := 0
	for k := range c.pending {
		if k.kind == kind {
			n++
		}
	}
	return n
}
