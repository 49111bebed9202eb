package ui

import (
	"time"

	"github.com/cwarden/agenda/internal/config"
	"github.com/cwarden/agenda/internal/schedule"
	agendasync "github.com/cwarden/agenda/internal/sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewChecklist ViewMode = iota
	ViewHelp
)

const messageDuration = 3 * time.Second

// Syncer is the part of the sync loop the UI talks to.
type Syncer interface {
	Updates() <-chan agendasync.State
	Trigger()
	State() agendasync.State
}

type Model struct {
	// Core components
	config    *config.Config
	syncer    Syncer
	checklist *agendasync.Checklist
	now       func() time.Time

	// Data
	state  agendasync.State
	agenda schedule.Agenda
	rows   []row

	// View state
	mode     ViewMode
	cursor   int
	viewport viewport.Model
	spinner  spinner.Model

	// UI state
	width     int
	height    int
	message   string
	messageID int

	styles Styles
}

// row locates an item in the agenda.
type row struct {
	day  int
	item int
}

type Styles struct {
	Normal      lipgloss.Style
	Selected    lipgloss.Style
	Today       lipgloss.Style
	Header      lipgloss.Style
	Done        lipgloss.Style
	Unscheduled lipgloss.Style
	Running     lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
	Message     lipgloss.Style
}

func NewModel(cfg *config.Config, syncer Syncer, checklist *agendasync.Checklist) *Model {
	if checklist == nil {
		checklist = agendasync.NewChecklist()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		config:    cfg,
		syncer:    syncer,
		checklist: checklist,
		now:       time.Now,
		mode:      ViewChecklist,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		styles:    StylesFromConfig(cfg),
	}
	m.applyState(syncer.State())
	return m
}

// StylesFromConfig builds styles from the color settings.
func StylesFromConfig(cfg *config.Config) Styles {
	c := func(name string) lipgloss.Color {
		if v, ok := cfg.Colors[name]; ok {
			return lipgloss.Color(v)
		}
		return lipgloss.Color(config.DefaultConfig().Colors[name])
	}

	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(c("normal")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(c("selected")).
			Bold(true),
		Today: lipgloss.NewStyle().
			Foreground(c("today")).
			Bold(true).
			Underline(true),
		Header: lipgloss.NewStyle().
			Foreground(c("header")).
			Underline(true),
		Done: lipgloss.NewStyle().
			Foreground(c("done")).
			Strikethrough(true),
		Unscheduled: lipgloss.NewStyle().
			Foreground(c("unscheduled")),
		Running: lipgloss.NewStyle().
			Foreground(c("running")).
			Faint(true),
		Error: lipgloss.NewStyle().
			Foreground(c("error")).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForState(),
		m.tickCmd(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = m.bodyHeight()
		m.refreshBody()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case stateMsg:
		m.applyState(msg.state)
		m.message = ""
		return m, m.waitForState()

	case toggleMsg:
		m.checklist.Toggle(msg.key)
		m.refreshBody()
		return m, nil

	case tickMsg:
		// Re-project so "today" moves at midnight.
		m.rebuild()
		return m, m.tickCmd()

	case messageTimeoutMsg:
		if msg.id == m.messageID {
			m.message = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.state.Loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ViewHelp:
		return m.viewHelp()
	default:
		if !m.state.Loaded {
			return m.viewFirstLoad()
		}
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.renderStatusBar())
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.mode == ViewHelp {
		m.mode = ViewChecklist
		return m, nil
	}

	if key == "space" {
		key = " "
	}
	action := m.config.KeyBindings[key]
	if action == "" {
		switch key {
		case "down":
			action = "next_item"
		case "up":
			action = "prev_item"
		}
	}

	switch action {
	case "quit":
		return m, tea.Quit

	case "help":
		m.mode = ViewHelp
		return m, nil

	case "refresh":
		m.syncer.Trigger()
		return m, m.showMessage("Refreshing...")

	case "next_item":
		m.moveCursor(m.cursor + 1)

	case "prev_item":
		m.moveCursor(m.cursor - 1)

	case "next_day":
		m.moveCursor(m.dayStart(1))

	case "prev_day":
		m.moveCursor(m.dayStart(-1))

	case "today":
		for i, r := range m.rows {
			if m.agenda.Days[r.day].IsToday {
				m.moveCursor(i)
				break
			}
		}

	case "toggle":
		if key, ok := m.selectedKey(); ok {
			return m, toggleCmd(key)
		}
	}

	return m, nil
}

// applyState adopts a published snapshot, keeping the cursor on the same
// item when it still exists.
func (m *Model) applyState(st agendasync.State) {
	selected, hadSelection := m.selectedKey()
	m.state = st
	m.rebuild()

	if hadSelection {
		for i, r := range m.rows {
			if m.agenda.Days[r.day].Items[r.item].Key == selected {
				m.cursor = i
				break
			}
		}
	}
	m.moveCursor(m.cursor)
}

func (m *Model) rebuild() {
	m.agenda = m.state.Agenda(m.now(), schedule.AgendaOptions{IncludePast: m.config.ShowPast})
	m.rows = m.rows[:0]
	for d, day := range m.agenda.Days {
		for i := range day.Items {
			m.rows = append(m.rows, row{day: d, item: i})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshBody()
}

func (m *Model) moveCursor(to int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.refreshBody()
		return
	}
	if to < 0 {
		to = 0
	}
	if to >= len(m.rows) {
		to = len(m.rows) - 1
	}
	m.cursor = to
	m.refreshBody()
}

// dayStart returns the row index of the first item dir days away from the
// selected one.
func (m *Model) dayStart(dir int) int {
	if len(m.rows) == 0 {
		return 0
	}
	target := m.rows[m.cursor].day + dir
	if target < 0 {
		return 0
	}
	for i, r := range m.rows {
		if r.day >= target {
			return i
		}
	}
	return m.cursor
}

func (m *Model) selectedKey() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return "", false
	}
	r := m.rows[m.cursor]
	return m.agenda.Days[r.day].Items[r.item].Key, true
}

func (m *Model) bodyHeight() int {
	h := m.height - 1 // status bar
	if h < 1 {
		h = 1
	}
	return h
}

// refreshBody re-renders the checklist into the viewport and scrolls so the
// cursor stays visible.
func (m *Model) refreshBody() {
	if m.width == 0 {
		return
	}
	content, cursorLine := m.renderChecklist()
	m.viewport.SetContent(content)

	switch {
	case cursorLine < m.viewport.YOffset:
		m.viewport.SetYOffset(cursorLine)
	case cursorLine >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageID++
	id := m.messageID
	return tea.Tick(messageDuration, func(time.Time) tea.Msg {
		return messageTimeoutMsg{id: id}
	})
}

func (m *Model) waitForState() tea.Cmd {
	updates := m.syncer.Updates()
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg{state: st}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func toggleCmd(key string) tea.Cmd {
	return func() tea.Msg {
		return toggleMsg{key: key}
	}
}

// Message types
type tickMsg struct{}
type messageTimeoutMsg struct{ id int }
type stateMsg struct {
	state agendasync.State
}

// toggleMsg asks the checklist store to flip one item.
type toggleMsg struct {
	key string
}

func (m *Model) doneCount() (done, total int) {
	for _, r := range m.rows {
		total++
		if m.checklist.Checked(m.agenda.Days[r.day].Items[r.item].Key) {
			done++
		}
	}
	return done, total
}

func (m *Model) lastSyncLabel() string {
	if m.state.LastSync.IsZero() {
		return "never"
	}
	return m.state.LastSync.Format("15:04")
}
