package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/HashtagPatil/KnowledgeHub/app"
	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/search"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("86"))
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// stateMsg carries a search state change into the bubbletea loop.
type stateMsg search.State

// stateBox hands the latest search state from the event loop to the TUI
// without blocking the event loop. Intermediate states may be skipped.
type stateBox struct {
	mu     sync.Mutex
	latest search.State
	ready  chan struct{}
}

func newStateBox() *stateBox { return &stateBox{ready: make(chan struct{}, 1)} }

func (b *stateBox) publish(s search.State) {
	b.mu.Lock()
	b.latest = s
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// wait returns a command that delivers the next published state.
func (b *stateBox) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.ready:
			b.mu.Lock()
			defer b.mu.Unlock()
			return stateMsg(b.latest)
		case <-ctx.Done():
			return nil
		}
	}
}

type browseModel struct {
	ctx      context.Context
	ctrl     *search.Controller
	box      *stateBox
	input    textinput.Model
	spin     spinner.Model
	state    search.State
	category int
	cursor   int
	chosen   int64
	err      error
}

func newBrowseModel(ctx context.Context, ctrl *search.Controller, box *stateBox) browseModel {
	ti := textinput.New()
	ti.Placeholder = "Search by title, tag or author"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return browseModel{
		ctx:   ctx,
		ctrl:  ctrl,
		box:   box,
		input: ti,
		spin:  sp,
		state: search.State{Loading: true},
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.box.wait(m.ctx), func() tea.Msg {
		if err := m.ctrl.Start(m.ctx); err != nil {
			return err
		}
		return nil
	})
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = search.State(msg)
		if m.cursor >= len(m.state.Results) {
			m.cursor = max(0, len(m.state.Results)-1)
		}
		return m, m.box.wait(m.ctx)

	case error:
		m.err = msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if len(m.state.Results) > 0 {
				m.chosen = m.state.Results[m.cursor].ID
				return m, tea.Quit
			}
			return m, nil
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.state.Results)-1 {
				m.cursor++
			}
			return m, nil
		case "tab", "shift+tab":
			step := 1
			if msg.String() == "shift+tab" {
				step = len(search.Categories) - 1
			}
			m.category = (m.category + step) % len(search.Categories)
			m.report(m.ctrl.SetCategory(m.ctx, search.CategoryFilter(search.Categories[m.category])))
			return m, nil
		case "ctrl+u":
			m.input.SetValue("")
			m.category = 0
			m.report(m.ctrl.Clear(m.ctx))
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.report(m.ctrl.SetQueryText(m.ctx, v))
	}
	return m, cmd
}

// report keeps the last controller error for display.
func (m *browseModel) report(err error) {
	if err != nil {
		log.Debug().Err(err).Msg("browse: search input dropped")
		m.err = err
	}
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("KnowledgeHub"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.state.Searching {
		b.WriteString(" " + m.spin.View())
	}
	b.WriteString("\n")

	tabs := make([]string, len(search.Categories))
	for i, c := range search.Categories {
		if i == m.category {
			tabs[i] = activeTab.Render(c)
		} else {
			tabs[i] = inactiveTab.Render(c)
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n\n")

	switch {
	case m.state.Loading:
		b.WriteString(m.spin.View() + " Loading articles…\n")
	case len(m.state.Results) == 0:
		b.WriteString(dimStyle.Render(m.state.EmptyMessage()) + "\n")
	default:
		for i, a := range m.state.Results {
			line := formatRow(a)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("› " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("type to search · tab category · ↑/↓ select · enter open · ctrl+u clear · esc quit"))
	return b.String()
}

func formatRow(a client.ArticleSummary) string {
	row := fmt.Sprintf("#%d %s", a.ID, a.Title)
	meta := []string{a.Category, a.AuthorUsername}
	if tags := client.SplitTags(a.Tags); len(tags) > 0 {
		meta = append(meta, strings.Join(tags, ","))
	}
	return row + dimStyle.Render("  "+strings.Join(meta, " · "))
}

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search articles interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			box := newStateBox()
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tuiCtx, cancel := context.WithCancel(ctx)
				defer cancel()

				p := tea.NewProgram(
					newBrowseModel(tuiCtx, a.Search, box),
					tea.WithContext(tuiCtx),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(cmd.OutOrStdout()),
					tea.WithAltScreen(),
				)
				final, err := p.Run()
				cancel()
				if err != nil {
					return fmt.Errorf("browse: %w", err)
				}

				m := final.(browseModel)
				if m.chosen == 0 {
					return nil
				}
				a.Navigator().Navigate(navigate.Article(m.chosen))
				return opts.showArticle(ctx, cmd, a, m.chosen, raw)
			}, app.WithSearchListener(box.publish))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the opened article without terminal styling")
	return cmd
}
