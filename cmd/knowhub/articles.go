package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/HashtagPatil/KnowledgeHub/app"
	"github.com/HashtagPatil/KnowledgeHub/editor"
	"github.com/HashtagPatil/KnowledgeHub/internal/markup"
	"github.com/HashtagPatil/KnowledgeHub/internal/scheduler"
	"github.com/HashtagPatil/KnowledgeHub/search"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid article id %q", arg)
	}
	return id, nil
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var query, category string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search articles by text and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			// One-shot searches fast-forward the debounce instead of waiting it out.
			clock := scheduler.NewVirtual()
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				st, err := runSearch(ctx, a, clock, query, search.CategoryFilter(category))
				if err != nil {
					return err
				}
				if st.Failed {
					return errors.New("search failed")
				}
				return opts.printer(cmd).emit(rows(st.Results), func(w io.Writer) error {
					return writeTable(w, st.Results, st.EmptyMessage())
				})
			}, app.WithScheduler(clock))
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category filter, e.g. Backend")
	return cmd
}

// runSearch drives the search controller the way the interactive view does
// and returns the settled state.
func runSearch(ctx context.Context, a *app.App, clock *scheduler.Virtual, query, category string) (search.State, error) {
	s := a.Search
	switch {
	case query == "" && category == "":
		if err := s.Start(ctx); err != nil {
			return search.State{}, err
		}
	default:
		if category != "" {
			if err := s.SetCategory(ctx, category); err != nil {
				return search.State{}, err
			}
		}
		if query != "" {
			if err := s.SetQueryText(ctx, query); err != nil {
				return search.State{}, err
			}
			clock.Advance(a.Config.SearchDebounce)
		}
	}
	if err := s.Settle(ctx); err != nil {
		return search.State{}, err
	}
	return s.Snapshot(ctx)
}

func newMyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "my",
		Short: "List your articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				items, err := a.Dashboard.Load(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).emit(rows(items), func(w io.Writer) error {
					return writeTable(w, items, "You have not written any articles yet")
				})
			})
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return opts.showArticle(ctx, cmd, a, id, raw)
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	return cmd
}

// showArticle fetches article id and prints it, rendered as Markdown unless
// raw is set.
func (o *rootOptions) showArticle(ctx context.Context, cmd *cobra.Command, a *app.App, id int64, raw bool) error {
	art, err := a.Client.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("get article %d: %w", id, err)
	}
	return o.printer(cmd).emit(doc(art), func(w io.Writer) error {
		body, err := markup.ToMarkdown(art.Content)
		if err != nil {
			return err
		}
		md := fmt.Sprintf("# %s\n\n*%s · %s · %s*\n\n%s\n", art.Title, art.Category, art.AuthorUsername, formatTime(art.CreatedAt), body)
		if !raw {
			if md, err = render(md); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, md)
		return err
	})
}

func render(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ed := a.NewEditor(nil)
				defer func() { _ = ed.Close() }()
				if _, err := ed.Load(ctx, id); err != nil {
					return err
				}
				return ed.Delete(ctx)
			})
		},
	}
}

func newWriteCmd(opts *rootOptions) *cobra.Command {
	var (
		id          int64
		contentFile string
		draft       editor.Draft
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Create an article, or update one with --id",
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if contentFile != "" {
				b, err := readContent(contentFile)
				if err != nil {
					return err
				}
				content = b
			}
			changed := cmd.Flags().Changed

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ed := a.NewEditor(nil)
				defer func() { _ = ed.Close() }()
				if err := openDraft(ctx, ed, id); err != nil {
					return err
				}
				if err := ed.Update(ctx, func(d *editor.Draft) {
					if changed("title") {
						d.Title = draft.Title
					}
					if changed("category") || id == 0 {
						d.Category = draft.Category
					}
					if changed("tags") {
						d.Tags = draft.Tags
					}
					if changed("summary") {
						d.Summary = draft.Summary
					}
					if contentFile != "" {
						d.Content = content
					}
				}); err != nil {
					return err
				}
				saved, err := ed.Save(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).emit(doc(saved), func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Saved article %d: %s\n", saved.ID, saved.Title)
					return err
				})
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Article to update (omit to create)")
	cmd.Flags().StringVar(&draft.Title, "title", "", "Title")
	cmd.Flags().StringVar(&draft.Category, "category", editor.DefaultCategory, "Category")
	cmd.Flags().StringVar(&draft.Tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&draft.Summary, "summary", "", "Summary (generated by the backend when blank)")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "HTML or plain-text body; - reads stdin")
	return cmd
}

// openDraft starts a new draft or loads article id into ed.
func openDraft(ctx context.Context, ed *app.Editor, id int64) error {
	if id == 0 {
		return ed.Begin(ctx)
	}
	_, err := ed.Load(ctx, id)
	return err
}

// readContent loads a body from path. Text without markup is wrapped in
// paragraphs, one per line.
func readContent(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	s := string(b)
	if !strings.Contains(s, "<") {
		s = markup.Paragraphs(strings.TrimRight(s, "\r\n"))
	}
	return s, nil
}
