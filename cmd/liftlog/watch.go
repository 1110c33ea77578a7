package main

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the session live",
	Long: `Watch the session live in the terminal, refreshing once a second.

Keys:
  c  complete the current set
  s  skip the rest countdown
  e  extend the rest countdown by 30s
  q  quit (the session keeps running)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(newWatchModel(newClient()), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

type sessionMsg struct {
	sess *session.Session
	err  error
}

type watchModel struct {
	client *client
	sess   *session.Session
	err    error
}

func newWatchModel(c *client) watchModel {
	return watchModel{client: c}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetch, watchTick())
}

func (m watchModel) fetch() tea.Msg {
	sess, err := m.client.session()
	return sessionMsg{sess: sess, err: err}
}

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.fetch, watchTick())

	case sessionMsg:
		if msg.err != nil && !errors.Is(msg.err, errNoSession) {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sess = msg.sess
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			return m, m.op(func(c *client) error {
				sess := m.sess
				if sess == nil {
					return nil
				}
				path := fmt.Sprintf("/session/exercises/%d/sets/%d/complete", sess.CurrentExercise, sess.CurrentSet)
				return c.do("POST", path, nil, nil)
			})
		case "s":
			return m, m.op(func(c *client) error {
				return c.do("POST", "/session/rest/skip", nil, nil)
			})
		case "e":
			return m, m.op(func(c *client) error {
				return c.do("POST", "/session/rest/extend", map[string]int{"seconds": 30}, nil)
			})
		}
	}
	return m, nil
}

// op runs a session operation and refreshes immediately after.
func (m watchModel) op(fn func(*client) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.client); err != nil && !errors.Is(err, errNoSession) {
			return sessionMsg{sess: m.sess, err: err}
		}
		sess, err := m.client.session()
		return sessionMsg{sess: sess, err: err}
	}
}

func (m watchModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n\npress q to quit", m.err)
	}
	if m.sess == nil {
		return "no active session\n\npress q to quit"
	}
	return renderSession(m.sess) + "\n\n" + dimStyle.Render("c complete  s skip rest  e extend +30s  q quit")
}
