package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

// MenuItem represents a selectable core in the menu.
type MenuItem struct {
	CoreID string
	Title  string
}

// MenuModel is the Bubble Tea model for the core picker, shown when run is
// started without a core. The left and right keys pick a power profile.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	profiles  []config.Profile
	profile   int
	width     int
	height    int
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem // Set when user selects a core
}

// NewMenuModel creates a new menu model listing the registered cores.
// initial preselects a power profile; empty means balanced.
func NewMenuModel(initial config.Profile, width, height int) MenuModel {
	cores := registry.List()
	items := make([]MenuItem, 0, len(cores))
	for _, c := range cores {
		items = append(items, MenuItem{CoreID: c.ID, Title: c.Title})
	}

	profiles := config.Profiles()
	profile := 0
	for i, p := range profiles {
		if p == initial || (initial == "" && p == config.ProfileBalanced) {
			profile = i
		}
	}

	return MenuModel{
		items:     items,
		profiles:  profiles,
		profile:   profile,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.profile = (m.profile + len(m.profiles) - 1) % len(m.profiles)
		return m, nil
	case "right", "l":
		m.profile = (m.profile + 1) % len(m.profiles)
		return m, nil
	}

	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the core
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Title
	b.WriteString("\n")
	b.WriteString(centerText("  W E A R B R I D G E  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a core", m.width))
	b.WriteString("\n\n")

	// Core list
	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s (%s)", cursor, item.Title, item.CoreID)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	if len(m.items) == 0 {
		b.WriteString(centerText("no cores registered", m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(fmt.Sprintf("< power profile: %s >", m.Profile()), m.width))
	b.WriteString("\n\n")

	// Footer with controls
	controls := "Up/Down: Navigate  |  Left/Right: Profile  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// Profile returns the chosen power profile.
func (m MenuModel) Profile() config.Profile {
	return m.profiles[m.profile]
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	CoreID  string
	Profile config.Profile
	Quit    bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(initial config.Profile, width, height int) (MenuResult, error) {
	model := NewMenuModel(initial, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Quit: true}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok || m.IsQuitting() || m.Selected() == nil {
		return MenuResult{Quit: true}, nil
	}

	return MenuResult{
		CoreID:  m.Selected().CoreID,
		Profile: m.Profile(),
	}, nil
}
