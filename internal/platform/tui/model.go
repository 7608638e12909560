package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
)

// statusRows are the terminal rows kept below the watch face.
const statusRows = 3

// touchPointer is the pointer id the mouse drives.
const touchPointer = 0

// faultMsg carries a core fault from the bridge.
type faultMsg struct{ err error }

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model of the watch emulator.
type Model struct {
	host    emu.Host
	surface *emu.FrameSurface
	speaker *emu.Speaker // nil when audio is off
	faults  <-chan error

	keys   KeyMap
	mapper *KeyMapper
	holder *emu.KeyHolder
	help   help.Model

	size      core.Size // watch face in pixels
	fixedSize bool      // size came from the command line
	created   bool      // surface handed to the host
	screenOn  bool
	paused    bool
	muted     bool
	touching  bool
	fault     error
	quitting  bool
	now       func() time.Time
}

// NewModel creates the emulator model. A zero size follows the terminal.
func NewModel(host emu.Host, surface *emu.FrameSurface, spk *emu.Speaker, faults <-chan error, size core.Size) Model {
	h := help.New()
	h.ShowAll = false

	return Model{
		host:      host,
		surface:   surface,
		speaker:   spk,
		faults:    faults,
		keys:      DefaultKeyMap(),
		mapper:    NewKeyMapper(),
		holder:    emu.NewKeyHolder(emu.DefaultHold, host.OnInputEvent),
		help:      h,
		size:      size,
		fixedSize: !size.Empty(),
		screenOn:  true,
		now:       time.Now,
	}
}

// Init starts the repaint loop and waits for core faults.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(repaintRate)}
	if m.faults != nil {
		cmds = append(cmds, waitFault(m.faults))
	}
	return tea.Batch(cmds...)
}

func waitFault(faults <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-faults
		if !ok {
			return nil
		}
		return faultMsg{err}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		m.holder.Expire(time.Time(msg))
		return m, tickCmd(repaintRate)

	case faultMsg:
		m.fault = msg.err
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys, ctrl := m.mapper.MapKey(msg)

	switch ctrl {
	case emu.ControlQuit:
		m.quitting = true
		m.holder.ReleaseAll()
		return m, tea.Quit
	case emu.ControlPause:
		m.paused = !m.paused
		if m.paused {
			m.host.OnPauseRequested()
		} else {
			m.host.OnResumeRequested()
		}
		return m, nil
	case emu.ControlScreen:
		m.toggleScreen()
		return m, nil
	case emu.ControlMute:
		if m.speaker != nil {
			m.muted = m.speaker.ToggleMute()
		}
		return m, nil
	case emu.ControlHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if !m.screenOn {
		return m, nil
	}
	now := m.now()
	for _, k := range keys {
		m.holder.Press(k, now)
	}
	return m, nil
}

// toggleScreen simulates the watch turning its display off and on, which
// destroys and re-creates the surface.
func (m *Model) toggleScreen() {
	if !m.created {
		return
	}
	m.screenOn = !m.screenOn
	if m.screenOn {
		m.host.OnSurfaceCreated(m.surface, m.size)
		return
	}
	m.holder.ReleaseAll()
	m.touching = false
	m.host.OnSurfaceDestroyed()
	m.surface.Clear()
}

// handleMouse maps the left button to a touch contact and the wheel to the
// rotary bezel.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.screenOn || !m.created {
		return m, nil
	}

	x, y := emu.CellToPixel(msg.X, msg.Y)
	inside := x < float64(m.size.W) && y < float64(m.size.H)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventRotary, Delta: -1})

	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventRotary, Delta: 1})

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			m.touching = true
			m.host.OnInputEvent(m.touch(bridge.EventTouchDown, x, y))
		}

	case msg.Action == tea.MouseActionMotion && m.touching:
		m.host.OnInputEvent(m.touch(bridge.EventTouchMove, x, y))

	case msg.Action == tea.MouseActionRelease && m.touching:
		m.touching = false
		m.host.OnInputEvent(m.touch(bridge.EventTouchUp, x, y))
	}
	return m, nil
}

func (m Model) touch(kind bridge.EventKind, x, y float64) bridge.RawEvent {
	return bridge.RawEvent{
		Kind:    kind,
		Pointer: touchPointer,
		X:       min(x, float64(m.size.W)-0.5),
		Y:       min(y, float64(m.size.H)-0.5),
		Surface: m.size,
	}
}

// handleResize creates the surface on the first size report and follows the
// terminal afterwards unless the size is fixed.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.help.Width = msg.Width

	if !m.fixedSize {
		next := emu.FaceSize(msg.Width, msg.Height, statusRows)
		if m.created && next != m.size && m.screenOn {
			m.host.OnSurfaceResized(next)
		}
		m.size = next
	}

	if !m.created {
		m.created = true
		m.host.OnSurfaceCreated(m.surface, m.size)
	}
	return m, nil
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch {
	case !m.created:
		b.WriteString("waiting for terminal size...")
	case !m.screenOn:
		b.WriteString(renderBlank(m.size, "screen off"))
	default:
		var face string
		m.surface.View(func(img *image.RGBA) {
			if img != nil {
				face = RenderImage(img)
			}
		})
		if face == "" {
			face = renderBlank(m.size, "")
		}
		b.WriteString(face)
	}

	b.WriteString("\n")
	if m.fault != nil {
		b.WriteString(faultStyle.Render("core fault: " + m.fault.Error()))
	} else {
		b.WriteString(statusStyle.Render(m.status()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// status is the one-line counters summary under the face.
func (m Model) status() string {
	st := m.host.Stats()
	parts := []string{
		st.State.String(),
		fmt.Sprintf("tick %d", st.Ticks),
		fmt.Sprintf("presents %d", st.Presents),
		fmt.Sprintf("dropped %d", st.DroppedPresents),
		fmt.Sprintf("skipped %d", st.SkippedTicks),
		fmt.Sprintf("underruns %d", st.AudioUnderruns),
	}
	if m.muted {
		parts = append(parts, "muted")
	}
	return strings.Join(parts, "  ")
}

// Options configures Run.
type Options struct {
	Size   core.Size // watch face in pixels, zero follows the terminal
	Audio  bool      // play the bridge audio on the speaker
	Logger *log.Logger
}

// Run starts the bridge and the Bubble Tea program and returns once either
// ends. A core fault does not end the program; the user leaves with ctrl+c.
// The returned error is the program's, or else the bridge's run result.
func Run(ctx context.Context, b *bridge.Bridge, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var spk *emu.Speaker
	if opts.Audio && b.Audio() != nil {
		var err error
		spk, err = emu.StartSpeaker(b.Audio())
		if err != nil {
			// Non-fatal, the watch can run silent
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer spk.Close()
		}
	}

	surface := emu.NewFrameSurface()
	model := NewModel(b, surface, spk, b.Faults(), opts.Size)

	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Touch and bezel
		tea.WithContext(ctx),
	)
	_, err := p.Run()

	b.OnSurfaceDestroyed()
	cancel()
	bridgeErr := <-runErr

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return bridgeErr
}
