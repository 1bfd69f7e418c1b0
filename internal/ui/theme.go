package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/notehub/internal/model"
)

// Theme bundles palette, symbols and box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Input, Button, ButtonDisabled       lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymOK, SymFail, SymCursor, SymBusy string

	tags map[model.Tag]lipgloss.Color
}

var current = classic()

func classic() Theme {
	return Theme{
		Name:           "classic",
		Title:          lipgloss.NewStyle().Bold(true),
		Muted:          lipgloss.NewStyle().Faint(true),
		Accent:         lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:       lipgloss.NewStyle().Bold(true).Reverse(true),
		Input:          lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1),
		Button:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("12")).Padding(0, 2),
		ButtonDisabled: lipgloss.NewStyle().Faint(true).Padding(0, 2),
		Border:         lipgloss.RoundedBorder(),
		BorderColor:    lipgloss.Color("8"),
		SymOK:          "✔",
		SymFail:        "✖",
		SymCursor:      "> ",
		SymBusy:        "…",
		tags: map[model.Tag]lipgloss.Color{
			model.TagTodo:     "12",
			model.TagWork:     "214",
			model.TagPersonal: "42",
			model.TagMeeting:  "13",
			model.TagShopping: "14",
		},
	}
}

// SetTheme switches the current theme; unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		t := classic()
		t.Name = "neon"
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201"))
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
		t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
		t.Button = t.Button.Background(lipgloss.Color("201"))
		t.Border = lipgloss.ThickBorder()
		t.BorderColor = lipgloss.Color("201")
		current = t
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Name:  "mono",
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain.Bold(true), Pending: plain,
			Selected: plain.Reverse(true), Input: plain.Border(lipgloss.ASCIIBorder()).Padding(0, 1),
			Button: plain.Reverse(true).Padding(0, 2), ButtonDisabled: plain.Padding(0, 2),
			Border: lipgloss.ASCIIBorder(), BorderColor: lipgloss.NoColor{},
			SymOK: "ok", SymFail: "x", SymCursor: "> ", SymBusy: "...",
		}
	default:
		current = classic()
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }

// Tag renders a tag label in its color.
func (t Theme) Tag(tag model.Tag) string {
	c, ok := t.tags[tag]
	if !ok {
		return "[" + string(tag) + "]"
	}
	return lipgloss.NewStyle().Foreground(c).Render("[" + string(tag) + "]")
}
