// Package tui is the interactive notes manager: a searchable, paginated list
// with a modal create form and per-row delete.
//
// The Model owns nothing but presentation state. List data comes from a
// query.Client handed in by the caller; the model observes one key
// (page, search) and feeds every FetchedMsg and MutatedMsg back into it.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/notehub/internal/debounce"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/query"
	"github.com/idilsaglam/notehub/internal/ui"
)

const (
	kindCreate = "create"
	kindDelete = "delete"

	// DefaultPerPage is the API page size the list is sized for.
	DefaultPerPage = 12
	// listChrome is the list's title bar and help rows.
	listChrome = 5
)

// Service is the transport the UI drives.
type Service interface {
	ListNotes(ctx context.Context, p model.ListParams) (*model.Page, error)
	CreateNote(ctx context.Context, in model.CreateInput) (*model.Note, error)
	DeleteNote(ctx context.Context, id string) (*model.Note, error)
}

// ListFetcher adapts svc to a query.Fetcher with a fixed page size.
func ListFetcher(svc Service, perPage int) query.Fetcher {
	return func(ctx context.Context, key query.Key) (*model.Page, error) {
		return svc.ListNotes(ctx, model.ListParams{Page: key.Page, PerPage: perPage, Search: key.Search})
	}
}

// Options tune the model. Zero values mean defaults.
type Options struct {
	Debounce time.Duration
	// PerPage must match the page size of the fetcher behind the queries.
	PerPage int
	Logger  *zerolog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	svc     Service
	queries *query.Client
	notes   *query.Observer
	initCmd tea.Cmd

	search   textinput.Model
	debounce debounce.Debouncer
	term     string
	page     int

	list  list.Model
	pager paginator.Model
	spin  spinner.Model

	form     form
	formOpen bool

	status    string
	statusErr bool

	keys          keyMap
	width, height int
	log           zerolog.Logger
	quitting      bool
}

// New builds the model and subscribes it to page 1 with no search.
func New(svc Service, queries *query.Client, opts Options) Model {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	keys := defaultKeys()
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	si := textinput.New()
	si.Prompt = "⌕ "
	si.Placeholder = "Search notes"
	si.CharLimit = 100
	si.Width = 30

	delegate := noteDelegate{
		deleting: func(id string) bool { return queries.Pending(kindDelete, id) },
	}
	// One API page is one list page; paging is the API's.
	l := list.New(nil, delegate, 76, perPage*(delegate.Height()+delegate.Spacing())+listChrome)
	l.Title = "Notes"
	l.SetShowHelp(true)
	l.SetShowPagination(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = ui.Current().Title
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.PerPage = 1
	pager.ArabicFormat = "page %d of %d"

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.Current().Accent))

	obs, cmd := queries.Observe(query.Key{Page: 1})

	m := Model{
		svc:      svc,
		queries:  queries,
		notes:    obs,
		initCmd:  cmd,
		search:   si,
		debounce: debounce.New(opts.Debounce),
		page:     1,
		list:     l,
		pager:    pager,
		spin:     spin,
		form:     newForm(keys),
		keys:     keys,
		width:    80,
		height:   24,
		log:      log,
	}
	m.syncList()
	return m
}

// Close releases the model's subscription; late responses are ignored.
func (m Model) Close() { m.notes.Close() }

// Run starts the program in the alternate screen and blocks until it exits.
func Run(m Model, opts ...tea.ProgramOption) error {
	defer m.Close()
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, m.list.Height())
		return m, nil

	case query.FetchedMsg:
		if !m.queries.Apply(msg) {
			return m, nil
		}
		cmd := tea.Batch(m.syncList(), m.clampPage())
		return m, cmd

	case query.MutatedMsg:
		return m.settle(msg)

	case debounce.FiredMsg:
		var cmd tea.Cmd
		if term, ok := m.debounce.Fired(msg); ok {
			cmd = m.setSearch(term)
		}
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case m.formOpen:
			return m.updateForm(msg)
		case m.search.Focused():
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	// Cursor blinks and other component messages.
	var cmd tea.Cmd
	switch {
	case m.formOpen:
		m.form, cmd, _ = m.form.Update(msg)
	case m.search.Focused():
		m.search, cmd = m.search.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		cmd = tea.Quit
	case key.Matches(msg, m.keys.Search):
		cmd = m.search.Focus()
	case key.Matches(msg, m.keys.Create):
		m.formOpen = true
		cmd = m.form.open()
	case key.Matches(msg, m.keys.Delete):
		cmd = m.deleteSelected()
	case key.Matches(msg, m.keys.PrevPage):
		cmd = m.setPage(m.page - 1)
	case key.Matches(msg, m.keys.NextPage):
		cmd = m.setPage(m.page + 1)
	case key.Matches(msg, m.keys.First):
		cmd = m.setPage(1)
	case key.Matches(msg, m.keys.Last):
		cmd = m.setPage(m.notes.Result().TotalPages())
	case key.Matches(msg, m.keys.Refresh):
		cmd = m.notes.Refetch()
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Blur) {
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		cmd = tea.Batch(cmd, m.debounce.Trigger(v))
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	var action formAction
	m.form, cmd, action = m.form.Update(msg)
	switch action {
	case formCancel:
		m.formOpen = false
		m.form.submitErr = ""
		return m, nil
	case formSubmit:
		cmd = m.submit()
	}
	return m, cmd
}

// submit validates the form and starts the create call. Invalid input never
// reaches the transport.
func (m *Model) submit() tea.Cmd {
	if m.form.submitting {
		return nil
	}
	in := m.form.validate()
	if in == nil {
		return nil
	}
	m.form.submitErr = ""

	svc, input := m.svc, *in
	cmd := m.queries.Mutate(kindCreate, "", func(ctx context.Context) (any, error) {
		return svc.CreateNote(ctx, input)
	})
	if cmd != nil {
		m.form.submitting = true
	}
	return cmd
}

func (m Model) deleteSelected() tea.Cmd {
	it, ok := m.list.SelectedItem().(noteItem)
	if !ok {
		return nil
	}
	svc, id := m.svc, it.note.ID
	return m.queries.Mutate(kindDelete, id, func(ctx context.Context) (any, error) {
		return svc.DeleteNote(ctx, id)
	})
}

func (m Model) settle(msg query.MutatedMsg) (tea.Model, tea.Cmd) {
	cmd := m.queries.Settle(msg)

	switch msg.Kind {
	case kindCreate:
		m.form.submitting = false
		if msg.Err != nil {
			m.form.submitErr = msg.Err.Error()
			return m, cmd
		}
		m.form.reset()
		m.formOpen = false
		m.setStatus("Note created", false)
	case kindDelete:
		if msg.Err != nil {
			m.setStatus("Delete failed: "+msg.Err.Error(), true)
			return m, cmd
		}
		title := msg.ID
		if n, ok := msg.Value.(*model.Note); ok && n != nil && n.Title != "" {
			title = n.Title
		}
		m.setStatus(fmt.Sprintf("Deleted %q", title), false)
	}
	return m, cmd
}

// setSearch applies a debounced search term. The page resets to 1 in the
// same step, before the fetch for the new key is issued.
func (m *Model) setSearch(term string) tea.Cmd {
	if term == m.term {
		return nil
	}
	m.log.Debug().Str("search", term).Msg("search changed")
	m.term = term
	return m.goToPage(1)
}

// setPage moves to page n when it is within the known page range.
func (m *Model) setPage(n int) tea.Cmd {
	last := max(m.notes.Result().TotalPages(), 1)
	if n < 1 || n > last || n == m.page {
		return nil
	}
	return m.goToPage(n)
}

func (m *Model) goToPage(n int) tea.Cmd {
	m.page = n
	m.list.ResetSelected()
	cmd := m.notes.SetKey(query.Key{Page: m.page, Search: m.term})
	return tea.Batch(cmd, m.syncList())
}

// clampPage pulls the page back when a refresh shrank the page count,
// e.g. after deleting the last note of the last page.
func (m *Model) clampPage() tea.Cmd {
	r := m.notes.Result()
	if r.Placeholder || r.Data == nil {
		return nil
	}
	if last := max(r.TotalPages(), 1); m.page > last {
		return m.goToPage(last)
	}
	return nil
}

func (m *Model) syncList() tea.Cmd {
	r := m.notes.Result()
	cmd := m.list.SetItems(toItems(r.Notes()))

	m.pager.SetTotalPages(r.TotalPages())
	m.pager.Page = max(m.page-1, 0)

	title := "Notes"
	if r.Data != nil && r.Data.TotalItems != nil {
		title = fmt.Sprintf("Notes  %d total", *r.Data.TotalItems)
	}
	m.list.Title = title
	return cmd
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.formOpen {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, ui.Box(m.form.View()))
	}

	t := ui.Current()
	r := m.notes.Result()

	header := []string{t.Input.Render(m.search.View())}
	if r.TotalPages() > 1 {
		header = append(header, t.Accent.Render(m.pager.View()))
	}
	header = append(header, t.Button.Render("Create note +"))

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(header, "  "))}

	if r.Loading && r.Data == nil {
		lines = append(lines, "Loading...")
	}
	if r.Failed {
		msg := "Failed to load notes"
		if r.Err != nil && r.Err.Error() != "" {
			msg = r.Err.Error()
		}
		lines = append(lines, t.Error.Render(msg))
	}

	if len(r.Notes()) > 0 {
		lines = append(lines, m.list.View())
	} else if !r.Loading && !r.Fetching {
		lines = append(lines, t.Muted.Render("No notes yet"))
	}

	var footer []string
	if r.Fetching && r.Data != nil {
		footer = append(footer, m.spin.View()+t.Muted.Render("Refreshing..."))
	}
	if m.status != "" {
		style := t.Success
		if m.statusErr {
			style = t.Error
		}
		footer = append(footer, style.Render(m.status))
	}
	if len(footer) > 0 {
		lines = append(lines, strings.Join(footer, "  "))
	}

	return ui.Box(strings.Join(lines, "\n"))
}
