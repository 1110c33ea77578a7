package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/claude/liftlog/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	restStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	cursorMark = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("▸")

	statusColors = map[session.Status]lipgloss.Style{
		session.StatusActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		session.StatusResting:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		session.StatusFinishing: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		session.StatusSaving:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
)

func renderSession(sess *session.Session) string {
	var b strings.Builder

	statusStyle, ok := statusColors[sess.Status]
	if !ok {
		statusStyle = dimStyle
	}
	fmt.Fprintf(&b, "%s  %s  %s\n",
		titleStyle.Render(sess.WorkoutName),
		statusStyle.Render(string(sess.Status)),
		dimStyle.Render(formatClock(sess.ElapsedSeconds)),
	)

	if sess.RestTimer != nil {
		fmt.Fprintf(&b, "%s\n", restStyle.Render(
			fmt.Sprintf("rest %s / %s", formatClock(sess.RestTimer.RemainingSeconds), formatClock(sess.RestTimer.TotalSeconds)),
		))
	}

	for i, ex := range sess.Exercises {
		mark := " "
		if i == sess.CurrentExercise && (sess.Status == session.StatusActive || sess.Status == session.StatusResting) {
			mark = cursorMark
		}
		fmt.Fprintf(&b, "%s %d. %s", mark, i+1, ex.Name)
		if ex.RestSeconds > 0 {
			fmt.Fprintf(&b, " %s", dimStyle.Render(fmt.Sprintf("(rest %ds)", ex.RestSeconds)))
		}
		b.WriteByte('\n')

		for j, set := range ex.Sets {
			line := fmt.Sprintf("    set %d  %d reps @ %.4g %s", set.SetNumber, set.ActualReps, set.ActualWeight, set.WeightUnit)
			switch {
			case set.IsCompleted:
				line = doneStyle.Render(line + "  ✓")
			case i == sess.CurrentExercise && j == sess.CurrentSet:
				line = line + dimStyle.Render("  ← current")
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "%s\n", dimStyle.Render(
		fmt.Sprintf("%d/%d sets completed", sess.CompletedSetCount(), sess.TotalSetCount()),
	))
	return strings.TrimRight(b.String(), "\n")
}

func formatClock(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
