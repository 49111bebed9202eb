package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/cwarden/agenda/internal/schedule"
)

func (m *Model) viewHelp() string {
	help := []string{
		m.styles.Header.Render("Agenda Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		m.styles.Help.Render("  " + m.keysFor("next_item", "↓") + " - Next item"),
		m.styles.Help.Render("  " + m.keysFor("prev_item", "↑") + " - Previous item"),
		m.styles.Help.Render("  " + m.keysFor("next_day") + " - Next day"),
		m.styles.Help.Render("  " + m.keysFor("prev_day") + " - Previous day"),
		m.styles.Help.Render("  " + m.keysFor("today") + " - Jump to today"),
		"",
		m.styles.Normal.Render("Actions:"),
		m.styles.Help.Render("  " + m.keysFor("toggle") + " - Check/uncheck item"),
		m.styles.Help.Render("  " + m.keysFor("refresh") + " - Refresh from source"),
		m.styles.Help.Render("  " + m.keysFor("help") + " - Toggle help"),
		m.styles.Help.Render("  " + m.keysFor("quit") + " - Quit"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

// keysFor lists the keys bound to action, padded for the help column.
func (m *Model) keysFor(action string, extra ...string) string {
	var keys []string
	for k, a := range m.config.KeyBindings {
		if a != action {
			continue
		}
		if k == " " {
			k = "space"
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	keys = append(keys, extra...)
	return fmt.Sprintf("%-12s", strings.Join(keys, "/"))
}

// viewFirstLoad is shown until the first sync succeeds.
func (m *Model) viewFirstLoad() string {
	if m.state.Err == nil {
		return fmt.Sprintf("\n %s Loading schedule...\n", m.spinner.View())
	}

	msg := m.state.Err.Error()
	if m.width > 4 {
		msg = wordwrap.String(msg, m.width-4)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		" "+m.styles.Error.Render("Unable to load schedule"),
		"",
		indent(msg, "  "),
		"",
		" "+m.styles.Help.Render("r to retry, q to quit"),
	)
}

// renderChecklist draws every day and item, returning the content and the
// line the cursor is on.
func (m *Model) renderChecklist() (string, int) {
	if len(m.agenda.Days) == 0 {
		return "\n " + m.styles.Help.Render("Nothing scheduled."), 0
	}

	var lines []string
	cursorLine := 0
	idx := 0

	for d, day := range m.agenda.Days {
		if d > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.renderDayHeader(day))

		for _, item := range day.Items {
			selected := idx == m.cursor
			if selected {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderItem(item, selected)...)
			idx++
		}
	}

	return strings.Join(lines, "\n"), cursorLine
}

func (m *Model) renderDayHeader(day schedule.Day) string {
	title := day.Key
	if !day.Date.IsZero() && m.config.DateFormat != "" {
		title = day.Date.Format(m.config.DateFormat)
	}
	if day.IsToday {
		return " " + m.styles.Today.Render(title+" · today")
	}
	return " " + m.styles.Header.Render(title)
}

func (m *Model) renderItem(item schedule.Item, selected bool) []string {
	a := item.Activity
	checked := m.checklist.Checked(item.Key)

	box := "[ ]"
	if checked {
		box = "[x]"
	}

	prefix := fmt.Sprintf(" %s %5s %s ", box, a.Time, a.Emoji)
	text := a.Activity
	if m.config.WrapText {
		width := m.width - lipgloss.Width(prefix) - 1
		if width > 10 {
			text = wordwrap.String(text, width)
		}
	}
	textLines := strings.Split(text, "\n")

	style := m.styles.Normal
	switch {
	case selected:
		style = m.styles.Selected
	case checked:
		style = m.styles.Done
	case item.IsUnscheduled:
		style = m.styles.Unscheduled
	}

	pad := strings.Repeat(" ", lipgloss.Width(prefix))
	var out []string
	for i, l := range textLines {
		if i == 0 {
			out = append(out, style.Render(prefix+l))
		} else {
			out = append(out, style.Render(pad+l))
		}
	}

	if a.Running != nil {
		out = append(out, pad+m.styles.Running.Render(runningSummary(a.Running)))
	}
	return out
}

func runningSummary(r *schedule.RunningDetails) string {
	var parts []string
	for _, s := range []string{r.Tipo, r.Distanza, r.Ritmo, r.Note} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}

func (m *Model) renderStatusBar() string {
	done, total := m.doneCount()
	left := fmt.Sprintf(" Synced %s | %d/%d done", m.lastSyncLabel(), done, total)

	right := "? for help | q to quit"
	switch {
	case m.message != "":
		right = m.styles.Message.Render(m.message)
	case m.state.Err != nil:
		right = m.styles.Error.Render("Sync failed: " + m.state.Err.Error())
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left+middle) + right
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
