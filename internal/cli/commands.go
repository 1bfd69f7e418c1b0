package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/ui"
)

const titleWidth = 48

func (r *Runner) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive app (default)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.interactive(cmd.Context())
		},
	}
}

func (r *Runner) lsCmd() *cobra.Command {
	var (
		page    int
		perPage int
		search  string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print one page of notes",
		Example: `  notehub ls
  notehub ls --search milk --page 2
  notehub ls --json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if page < 1 {
				return usagef("--page must be at least 1, got %d", page)
			}
			if perPage == 0 {
				perPage = r.cfg.PerPage
			}
			if perPage < 1 {
				return usagef("--per-page must be at least 1, got %d", perPage)
			}

			p := model.ListParams{Page: page, PerPage: perPage, Search: search}
			res, err := r.client.ListNotes(cmd.Context(), p)
			if err != nil {
				return err
			}
			r.log.Debug().Int("page", page).Int("notes", len(res.Notes)).Msg("listed notes")

			if asJSON {
				enc := json.NewEncoder(r.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			ui.Panel(r.stdout, pageLines(p, res))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "page number, starting at 1")
	f.IntVar(&perPage, "per-page", 0, "notes per page (default NOTEHUB_PER_PAGE)")
	f.StringVar(&search, "search", "", "only notes matching this text")
	f.BoolVar(&asJSON, "json", false, "print the raw page as JSON")
	return cmd
}

func pageLines(p model.ListParams, res *model.Page) []string {
	t := ui.Current()

	header := t.Title.Render("Notes")
	if res.TotalPages > 0 {
		header += t.Muted.Render(fmt.Sprintf("  page %d of %d", p.Page, res.TotalPages))
	}
	if res.TotalItems != nil {
		header += t.Muted.Render(fmt.Sprintf("  %d total", *res.TotalItems))
	}
	if p.Search != "" {
		header += t.Accent.Render(fmt.Sprintf("  search %q", p.Search))
	}
	lines := []string{header, ""}

	if len(res.Notes) == 0 {
		return append(lines, t.Muted.Render("No notes yet"))
	}
	for _, n := range res.Notes {
		lines = append(lines, fmt.Sprintf("%s %s %s", t.Muted.Render(n.ID), t.Tag(n.Tag), ui.Truncate(n.Title, titleWidth)))
		if c := strings.TrimSpace(n.Content); c != "" {
			c = strings.Join(strings.Fields(c), " ")
			lines = append(lines, "  "+t.Muted.Render(ui.Truncate(c, titleWidth+10)))
		}
		if d := n.Dates(); d != "" {
			lines = append(lines, "  "+t.Muted.Render(d))
		}
	}
	return lines
}

func (r *Runner) addCmd() *cobra.Command {
	var title, content, tag string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Example: `  notehub add --title "Buy milk" --tag Shopping
  notehub add --title "Standup" --content "Notes for Monday" --tag Meeting`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := model.CreateInput{Title: title, Content: content, Tag: parseTag(tag)}.Normalize()
			if err := in.Validate(); err != nil {
				return &usageError{err: err}
			}

			n, err := r.client.CreateNote(cmd.Context(), in)
			if err != nil {
				return err
			}
			r.log.Info().Str("id", n.ID).Msg("note created")
			ui.OK(r.stdout, fmt.Sprintf("created %s %q", n.ID, n.Title))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", fmt.Sprintf("note title, %d to %d characters", model.TitleMinLen, model.TitleMaxLen))
	f.StringVarP(&content, "content", "c", "", fmt.Sprintf("note body, at most %d characters", model.ContentMaxLen))
	f.StringVar(&tag, "tag", string(model.TagTodo), "one of "+tagNames())
	return cmd
}

// parseTag matches s against the known tags ignoring case. Unknown values
// are passed through so validation reports them.
func parseTag(s string) model.Tag {
	s = strings.TrimSpace(s)
	for _, t := range model.Tags {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return model.Tag(s)
}

func tagNames() string {
	names := make([]string, 0, len(model.Tags))
	for _, t := range model.Tags {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func (r *Runner) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note by id",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return usagef("rm: empty id")
			}
			n, err := r.client.DeleteNote(cmd.Context(), id)
			if err != nil {
				return err
			}
			r.log.Info().Str("id", id).Msg("note deleted")
			title := n.Title
			if title == "" {
				title = id
			}
			ui.OK(r.stdout, fmt.Sprintf("deleted %q", title))
			return nil
		},
	}
}
