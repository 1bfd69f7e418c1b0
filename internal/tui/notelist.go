package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/ui"
)

// noteItem adapts a model.Note to bubbles/list.Item.
type noteItem struct {
	note model.Note
}

func (i noteItem) Title() string       { return i.note.Title }
func (i noteItem) Description() string {
	if d := i.note.Dates(); d != "" {
		return strings.TrimSpace(i.note.Content + "  " + d)
	}
	return i.note.Content
}
func (i noteItem) FilterValue() string { return i.note.Title }

func toItems(notes []model.Note) []list.Item {
	out := make([]list.Item, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteItem{note: n})
	}
	return out
}

// noteDelegate renders a note as a title line and a content preview line.
// Rows with a delete in flight show "Deleting...".
type noteDelegate struct {
	deleting func(id string) bool
}

func (d noteDelegate) Height() int                               { return 2 }
func (d noteDelegate) Spacing() int                              { return 1 }
func (d noteDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d noteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(noteItem)
	if !ok {
		return
	}
	t := ui.Current()
	width := m.Width() - 4
	if width < 20 {
		width = 20
	}

	prefix := "  "
	title := t.Title.Render(ui.Truncate(it.note.Title, width/2))
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor)
	}

	action := t.Muted.Render("d delete")
	if d.deleting != nil && d.deleting(it.note.ID) {
		action = t.Pending.Render("Deleting...")
	}

	content := strings.ReplaceAll(it.note.Content, "\n", " ")
	if content == "" {
		content = "(no content)"
	}
	dates := it.note.Dates()
	if dates != "" {
		content = ui.Truncate(content, max(width-len(dates)-3, 10))
		dates = "  " + t.Muted.Render(dates)
	}

	fmt.Fprintf(w, "%s%s %s  %s\n", prefix, title, t.Tag(it.note.Tag), action)
	fmt.Fprintf(w, "  %s%s", t.Muted.Render(ui.Truncate(content, width)), dates)
}
