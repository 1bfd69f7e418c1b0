package model

import (
	"strings"
	"time"
)

// Tag classifies a note. The API accepts exactly the values in Tags.
type Tag string

const (
	TagTodo     Tag = "Todo"
	TagWork     Tag = "Work"
	TagPersonal Tag = "Personal"
	TagMeeting  Tag = "Meeting"
	TagShopping Tag = "Shopping"
)

// Tags lists every tag in the order the form offers them.
var Tags = []Tag{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	for _, v := range Tags {
		if t == v {
			return true
		}
	}
	return false
}

// Next returns the tag after t, wrapping around. Unknown tags map to TagTodo.
func (t Tag) Next() Tag {
	for i, v := range Tags {
		if t == v {
			return Tags[(i+1)%len(Tags)]
		}
	}
	return TagTodo
}

// Prev returns the tag before t, wrapping around. Unknown tags map to TagTodo.
func (t Tag) Prev() Tag {
	for i, v := range Tags {
		if t == v {
			return Tags[(i+len(Tags)-1)%len(Tags)]
		}
	}
	return TagTodo
}

// Note is a single note as the API returns it. IDs are server-assigned and
// notes are never edited client side.
type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Tag       Tag        `json:"tag"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DateLayout formats note timestamps for display.
const DateLayout = "2006-01-02"

// Dates describes the note's timestamps, e.g. "created 2026-03-04" or
// "created 2026-03-04, updated 2026-03-09". Missing timestamps are skipped
// and an update on the creation day is not repeated.
func (n Note) Dates() string {
	var parts []string
	if n.CreatedAt != nil {
		parts = append(parts, "created "+n.CreatedAt.Format(DateLayout))
	}
	if n.UpdatedAt != nil {
		updated := n.UpdatedAt.Format(DateLayout)
		if n.CreatedAt == nil || n.CreatedAt.Format(DateLayout) != updated {
			parts = append(parts, "updated "+updated)
		}
	}
	return strings.Join(parts, ", ")
}

// Page is one list response. Optional metadata stays nil when the API omits it.
type Page struct {
	Notes      []Note `json:"notes"`
	TotalPages int    `json:"totalPages"`
	Page       *int   `json:"page,omitempty"`
	PerPage    *int   `json:"perPage,omitempty"`
	TotalItems *int   `json:"totalItems,omitempty"`
}

// Contains reports whether a note with the given id is on the page.
func (p *Page) Contains(id string) bool {
	if p == nil {
		return false
	}
	for _, n := range p.Notes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// ListParams selects one page of the list. An empty Search is not sent.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}
