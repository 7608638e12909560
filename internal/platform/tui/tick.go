// Package tui provides the Bubble Tea watch emulator. It paints the bridge's
// surface with half-block characters, turns mouse and keys into touch,
// rotary and button events and drives the surface lifecycle from the
// terminal.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// repaintRate is how often the emulator repaints and expires held keys.
// It is independent of the bridge's tick rate.
const repaintRate = 30

// TickMsg is sent to trigger a repaint.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(rate int) tea.Cmd {
	interval := time.Second / time.Duration(rate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
