package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
)

// upperHalf draws the top pixel of a cell in the foreground colour and the
// bottom pixel in the background colour.
const upperHalf = "▀"

// cellColors is the pixel pair one terminal cell shows.
type cellColors struct {
	top, bottom color.RGBA
}

// RenderImage converts an image to truecolor half-block rows.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func RenderImage(img *image.RGBA) string {
	b := img.Bounds()
	cols := b.Dx()
	rows := (b.Dy() + 1) / 2

	cells := make([]cellColors, cols*rows)
	emu.HalfBlocks(img, func(col, row int, top, bottom color.RGBA) {
		cells[row*cols+col] = cellColors{top, bottom}
	})

	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(cols*rows*4 + rows)

	for y := range rows {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same colours for efficiency
		x := 0
		for x < cols {
			start := cells[y*cols+x]
			n := 0
			for x < cols && cells[y*cols+x] == start {
				n++
				x++
			}

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(emu.Hex(start.top))).
				Background(lipgloss.Color(emu.Hex(start.bottom)))
			sb.WriteString(style.Render(strings.Repeat(upperHalf, n)))
		}
	}
	return sb.String()
}

// renderBlank returns a face-sized block of spaces, used while the watch
// screen is off or nothing was presented yet.
func renderBlank(size core.Size, label string) string {
	rows := emu.CellRows(size)
	lines := make([]string, rows)
	blank := strings.Repeat(" ", size.W)
	for i := range lines {
		lines[i] = blank
	}
	if label != "" && rows > 0 {
		lines[rows/2] = centerText(label, size.W)
		if pad := size.W - lipgloss.Width(lines[rows/2]); pad > 0 {
			lines[rows/2] += strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}
