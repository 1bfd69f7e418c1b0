package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/ui"
)

type formField int

const (
	fieldTitle formField = iota
	fieldContent
	fieldTag
	fieldSubmit
	fieldCancel
	fieldCount
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

// form is the create-note modal.
type form struct {
	title   textinput.Model
	content textarea.Model
	tag     model.Tag
	focus   formField

	errs       *model.ValidationError
	submitErr  string
	submitting bool
	keys       keyMap
}

func newForm(keys keyMap) form {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Title"
	ti.CharLimit = model.TitleMaxLen * 2
	ti.Width = 48

	ta := textarea.New()
	ta.Placeholder = "Content (optional)"
	ta.CharLimit = model.ContentMaxLen * 2
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(6)

	return form{title: ti, content: ta, tag: model.TagTodo, keys: keys}
}

// open focuses the title. Values survive closing until reset.
func (f *form) open() tea.Cmd {
	f.focus = fieldTitle
	f.content.Blur()
	return f.title.Focus()
}

func (f *form) reset() {
	f.title.SetValue("")
	f.content.SetValue("")
	f.tag = model.TagTodo
	f.errs = nil
	f.submitErr = ""
	f.submitting = false
	f.focus = fieldTitle
}

func (f form) input() model.CreateInput {
	return model.CreateInput{
		Title:   f.title.Value(),
		Content: f.content.Value(),
		Tag:     f.tag,
	}.Normalize()
}

// validate returns the normalized input, or nil after recording the errors.
func (f *form) validate() *model.CreateInput {
	in := f.input()
	if err := in.Validate(); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			f.errs = verr
		}
		return nil
	}
	f.errs = nil
	return &in
}

func (f *form) setFocus(field formField) tea.Cmd {
	f.focus = (field + fieldCount) % fieldCount
	f.title.Blur()
	f.content.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldContent:
		return f.content.Focus()
	}
	return nil
}

func (f form) Update(msg tea.Msg) (form, tea.Cmd, formAction) {
	km, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch {
		case key.Matches(km, f.keys.Cancel):
			return f, nil, formCancel
		case key.Matches(km, f.keys.Submit):
			return f, nil, formSubmit
		case key.Matches(km, f.keys.NextField):
			return f, f.setFocus(f.focus + 1), formNone
		case key.Matches(km, f.keys.PrevField):
			return f, f.setFocus(f.focus - 1), formNone
		}

		switch f.focus {
		case fieldTitle:
			if km.Type == tea.KeyEnter {
				return f, f.setFocus(fieldContent), formNone
			}
		case fieldTag:
			switch km.String() {
			case "left", "h":
				f.tag = f.tag.Prev()
			case "right", "l", " ", "enter":
				f.tag = f.tag.Next()
			}
			f.revalidate()
			return f, nil, formNone
		case fieldSubmit:
			if km.Type == tea.KeyEnter {
				return f, nil, formSubmit
			}
			return f, nil, formNone
		case fieldCancel:
			if km.Type == tea.KeyEnter {
				return f, nil, formCancel
			}
			return f, nil, formNone
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldContent:
		f.content, cmd = f.content.Update(msg)
	}
	if isKey {
		f.revalidate()
	}
	return f, cmd, formNone
}

// revalidate refreshes errors live once a submit has shown them.
func (f *form) revalidate() {
	if f.errs != nil {
		f.validate()
	}
}

func (f form) View() string {
	t := ui.Current()
	var b strings.Builder

	label := func(s string, field formField) string {
		if f.focus == field {
			return t.Accent.Render(s)
		}
		return s
	}
	fieldErr := func(name string) {
		if msg := f.errs.For(name); msg != "" {
			b.WriteString(t.Error.Render(msg) + "\n")
		}
	}

	b.WriteString(t.Title.Render("Create note") + "\n\n")

	b.WriteString(label("Title", fieldTitle) + "\n")
	b.WriteString(t.Input.Render(f.title.View()) + "\n")
	fieldErr("title")

	b.WriteString(label("Content", fieldContent) + "\n")
	b.WriteString(f.content.View() + "\n")
	fieldErr("content")

	b.WriteString(label("Tag", fieldTag) + "\n")
	tags := make([]string, 0, len(model.Tags))
	for _, tag := range model.Tags {
		if tag == f.tag {
			tags = append(tags, t.Selected.Render(" "+string(tag)+" "))
		} else {
			tags = append(tags, " "+string(tag)+" ")
		}
	}
	b.WriteString(strings.Join(tags, " ") + "\n")
	fieldErr("tag")
	b.WriteString("\n")

	submit := "Create note"
	submitStyle := t.Button
	if f.submitting {
		submit = "Creating..."
		submitStyle = t.ButtonDisabled
	}
	cancel := t.ButtonDisabled.Render("Cancel")
	if f.focus == fieldCancel {
		cancel = t.Selected.Render("  Cancel  ")
	}
	if f.focus == fieldSubmit && !f.submitting {
		submitStyle = submitStyle.Underline(true)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cancel, "  ", submitStyle.Render(submit)))

	if f.submitErr != "" {
		b.WriteString("\n\n" + t.Error.Render(f.submitErr))
	}
	b.WriteString("\n\n" + t.Muted.Render("tab next field • ctrl+s create • esc cancel"))
	return b.String()
}
