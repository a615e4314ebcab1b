package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/HashtagPatil/KnowledgeHub/app"
	"github.com/HashtagPatil/KnowledgeHub/assist"
	"github.com/HashtagPatil/KnowledgeHub/editor"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error { return clipboardWriteAll(text) }

type assistResult struct {
	Action string   `json:"action" yaml:"action"`
	Text   string   `json:"text" yaml:"text"`
	Titles []string `json:"titles,omitempty" yaml:"titles,omitempty"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Copied bool     `json:"copied,omitempty" yaml:"copied,omitempty"`
	// Applied is the draft field that received the result, if any.
	Applied string `json:"applied,omitempty" yaml:"applied,omitempty"`
}

func newAssistCmd(opts *rootOptions) *cobra.Command {
	var (
		id          int64
		contentFile string
		title       string
		apply       bool
		titleIndex  int
		copyResult  bool
	)

	names := make([]string, len(assist.Actions))
	for i, a := range assist.Actions {
		names[i] = string(a)
	}

	cmd := &cobra.Command{
		Use:       "assist <action>",
		Short:     "Run an AI writing action on an article or a draft",
		Long:      "Actions: " + strings.Join(names, ", ") + ".\nWith --id, an applied result is saved back to the article.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := assist.ParseAction(args[0])
			if err != nil {
				return err
			}
			if (id == 0) == (contentFile == "") {
				return errors.New("exactly one of --id or --content-file is required")
			}
			var content string
			if contentFile != "" {
				if content, err = readContent(contentFile); err != nil {
					return err
				}
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ed := a.NewEditor(nil)
				defer func() { _ = ed.Close() }()

				if err := openDraft(ctx, ed, id); err != nil {
					return err
				}
				if err := ed.Update(ctx, func(d *editor.Draft) {
					if content != "" {
						d.Content = content
					}
					if title != "" {
						d.Title = title
					}
				}); err != nil {
					return err
				}

				res, err := runAssist(ctx, ed, action)
				if err != nil {
					return err
				}
				if copyResult {
					if err := ed.Assist.Copy(ctx); err != nil {
						return fmt.Errorf("copy result: %w", err)
					}
					res.Copied = true
				}
				if apply {
					if res.Applied, err = applyResult(ctx, ed, action, titleIndex); err != nil {
						return err
					}
					if id != 0 {
						if _, err := ed.Save(ctx); err != nil {
							return err
						}
					}
				}
				return opts.printer(cmd).emit(res, func(w io.Writer) error {
					return writeAssist(ctx, w, res, ed)
				})
			}, app.WithClipboard(systemClipboard{}))
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Article to work on")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Draft body to work on instead of an article; - reads stdin")
	cmd.Flags().StringVar(&title, "title", "", "Draft title (used by title and tags)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Apply the result to the draft")
	cmd.Flags().IntVar(&titleIndex, "title-index", 1, "Which title suggestion --apply uses (1-based)")
	cmd.Flags().BoolVar(&copyResult, "copy", false, "Copy the result to the clipboard")
	return cmd
}

// runAssist runs action and waits for its outcome.
func runAssist(ctx context.Context, ed *app.Editor, action assist.Action) (assistResult, error) {
	if err := ed.Assist.Run(ctx, action); err != nil {
		return assistResult{}, err
	}
	if err := ed.Assist.Settle(ctx); err != nil {
		return assistResult{}, err
	}
	view, err := ed.Assist.Snapshot(ctx)
	if err != nil {
		return assistResult{}, err
	}

	switch st := view.State.(type) {
	case assist.Ready:
		res := assistResult{Action: string(action), Text: st.Payload.Text, Tags: st.Payload.Tags}
		if action == assist.Title {
			res.Titles = st.Payload.Titles()
		}
		if action == assist.Tags {
			res.Applied = "tags"
		}
		return res, nil
	case assist.Failed:
		return assistResult{}, errors.New(st.Message)
	default:
		return assistResult{}, fmt.Errorf("%s: no result", action)
	}
}

// applyResult moves the result into the draft and names the field it changed.
func applyResult(ctx context.Context, ed *app.Editor, action assist.Action, titleIndex int) (string, error) {
	switch action {
	case assist.Tags:
		return "tags", nil
	case assist.Title:
		if _, err := ed.Assist.ApplyTitle(ctx, titleIndex-1); err != nil {
			return "", err
		}
		return "title", nil
	default:
		if err := ed.Assist.ApplyToEditor(ctx); err != nil {
			return "", fmt.Errorf("apply %s: %w", action, err)
		}
		return "content", nil
	}
}

func writeAssist(ctx context.Context, w io.Writer, res assistResult, ed *app.Editor) error {
	switch {
	case len(res.Titles) > 0:
		for i, t := range res.Titles {
			fmt.Fprintf(w, "%d. %s\n", i+1, t)
		}
	case res.Action == string(assist.Tags):
		fmt.Fprintf(w, "Suggested tags: %s\n", res.Text)
	default:
		fmt.Fprintln(w, res.Text)
	}
	if res.Copied {
		fmt.Fprintln(w, "Copied!")
	}
	if res.Applied != "" {
		d, err := ed.Snapshot(ctx)
		if err != nil {
			return err
		}
		switch res.Applied {
		case "title":
			fmt.Fprintf(w, "Title is now %q\n", d.Title)
		case "tags":
			fmt.Fprintf(w, "Tags are now %q\n", d.Tags)
		default:
			fmt.Fprintln(w, "Content updated")
		}
	}
	return nil
}
