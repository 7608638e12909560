package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
)

// KeyMap lists the emulator bindings for the help view. The bindings that
// reach the core are resolved through emu.KeysFor.
type KeyMap struct {
	Move   key.Binding
	Turn   key.Binding
	Fire   key.Binding
	Use    key.Binding
	Menu   key.Binding
	Weapon key.Binding
	Touch  key.Binding
	Pause  key.Binding
	Screen key.Binding
	Mute   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Fire, k.Pause, k.Screen, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Turn, k.Fire, k.Use},
		{k.Menu, k.Weapon, k.Touch},
		{k.Pause, k.Screen, k.Mute, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Move: key.NewBinding(
			key.WithKeys("w", "a", "s", "d", "up", "down"),
			key.WithHelp("wasd", "move (shift runs)"),
		),
		Turn: key.NewBinding(
			key.WithKeys("q", "e", "left", "right"),
			key.WithHelp("q/e", "turn"),
		),
		Fire: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "fire"),
		),
		Use: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "use"),
		),
		Menu: key.NewBinding(
			key.WithKeys("esc", "m", "enter"),
			key.WithHelp("esc/m", "menu, enter confirms"),
		),
		Weapon: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "tab"),
			key.WithHelp("1-7/tab", "weapon"),
		),
		Touch: key.NewBinding(
			key.WithHelp("mouse/wheel", "touch, bezel"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Screen: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "screen off/on"),
		),
		Mute: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "mute"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to bridge keys and emulator
// controls. This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey returns the emulator control for msg, or the bridge keys it presses
// when it is not a control.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) ([]bridge.Key, emu.Control) {
	name := msg.String()
	if c := emu.ControlFor(name); c != emu.ControlNone {
		return nil, c
	}
	return emu.KeysFor(name), emu.ControlNone
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}

	return MenuActionNone
}
