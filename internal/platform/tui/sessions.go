package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/wearbridge/internal/registry"
	"github.com/vovakirdan/wearbridge/internal/storage"
)

// Session board layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show core list sidebar
	sidebarWidth       = 22  // Width of core list sidebar
	maxSessions        = 100 // Max sessions to load
)

// SessionsKeyMap defines the key bindings for the session board.
type SessionsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextCore key.Binding
	PrevCore key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SessionsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextCore, k.PrevCore, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SessionsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextCore, k.PrevCore},
		{k.Quit},
	}
}

// DefaultSessionsKeyMap returns default key bindings.
func DefaultSessionsKeyMap() SessionsKeyMap {
	return SessionsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextCore: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next core"),
		),
		PrevCore: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev core"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SessionsModel is the Bubble Tea model for the recorded sessions board.
type SessionsModel struct {
	cores       []registry.CoreInfo
	coreCursor  int
	store       *storage.Store
	sessions    []storage.Session
	summary     *storage.CoreStats
	table       table.Model
	help        help.Model
	keys        SessionsKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewSessionsModel creates a session board starting at the given core.
// An empty or unknown core starts at the first registered one.
func NewSessionsModel(store *storage.Store, coreID string, width, height int) SessionsModel {
	h := help.New()
	h.ShowAll = false

	m := SessionsModel{
		cores:       registry.List(),
		store:       store,
		keys:        DefaultSessionsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	for i, c := range m.cores {
		if c.ID == coreID {
			m.coreCursor = i
		}
	}

	m.table = m.createTable()
	if len(m.cores) > 0 {
		m.loadSessions(m.cores[m.coreCursor].ID)
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *SessionsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 13},
		{Title: "Host", Width: 9},
		{Title: "Profile", Width: 12},
		{Title: "Time", Width: 8},
		{Title: "Ticks", Width: 8},
		{Title: "Drop%", Width: 6},
		{Title: "Fault", Width: 20},
	}

	// Give the fault column whatever width is left
	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}
	fixed := 0
	for _, c := range columns[:len(columns)-1] {
		fixed += c.Width + 2
	}
	if rest := tableWidth - fixed; rest > columns[6].Width {
		columns[6].Width = min(rest, 60)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, summary, help
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadSessions loads sessions and the summary for the given core.
func (m *SessionsModel) loadSessions(coreID string) {
	m.sessions = nil
	m.summary = nil
	if m.store != nil {
		if sessions, err := m.store.SessionsByCore(coreID, maxSessions); err == nil {
			m.sessions = sessions
		}
		if st, err := m.store.GetCoreStats(coreID); err == nil {
			m.summary = st
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current sessions.
func (m *SessionsModel) updateTableRows() {
	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		rows[i] = SessionRow(s)
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// SessionRow formats a session the way the board and the plain listing show it.
func SessionRow(s storage.Session) []string {
	profile := s.Profile
	if profile == "" {
		profile = "-"
	}
	fault := s.Fault
	if fault == "" {
		fault = "-"
	}
	drop := 0.0
	if attempts := s.Presents + s.DroppedPresents; attempts > 0 {
		drop = 100 * float64(s.DroppedPresents) / float64(attempts)
	}
	return []string{
		s.StartedAt.Local().Format("Jan 02 15:04"),
		s.Host,
		profile,
		s.Duration.Round(100 * time.Millisecond).String(),
		fmt.Sprintf("%d", s.Ticks),
		fmt.Sprintf("%.1f", drop),
		fault,
	}
}

// Init initializes the session board.
func (m SessionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session board.
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextCore):
			if len(m.cores) > 0 {
				m.coreCursor = (m.coreCursor + 1) % len(m.cores)
				m.loadSessions(m.cores[m.coreCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevCore):
			if len(m.cores) > 0 {
				m.coreCursor--
				if m.coreCursor < 0 {
					m.coreCursor = len(m.cores) - 1
				}
				m.loadSessions(m.cores[m.coreCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the session board.
func (m SessionsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Title
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "SESSIONS"
	if len(m.cores) > 0 {
		title = fmt.Sprintf("SESSIONS - %s", m.cores[m.coreCursor].Title)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(m.summaryLine(), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderTable())
	}

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// summaryLine renders the aggregated statistics of the selected core.
func (m SessionsModel) summaryLine() string {
	st := m.summary
	if st == nil || st.Sessions == 0 {
		return ""
	}
	return fmt.Sprintf("%d sessions, %d faults, %d ticks, %s played, %.1f%% presents dropped",
		st.Sessions, st.Faults, st.TotalTicks, st.TotalPlay.Round(time.Second), 100*st.DropRate)
}

// renderWideLayout renders the board with a sidebar for core selection.
func (m SessionsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Cores\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, c := range m.cores {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.coreCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}

		name := c.Title
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(sidebar.String()), "  ", m.renderTable())
}

// renderTable renders the table or empty message.
func (m SessionsModel) renderTable() string {
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.sessions) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return tableStyle.Render(emptyStyle.Render("No sessions recorded yet.\nRun a core to record one!"))
	}

	return tableStyle.Render(m.table.View())
}

// RunSessions runs the session board until the user quits.
func RunSessions(store *storage.Store, coreID string, width, height int) error {
	p := tea.NewProgram(
		NewSessionsModel(store, coreID, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
