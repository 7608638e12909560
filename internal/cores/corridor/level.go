package corridor

import (
	"math"
	"math/rand"
)

// Cell types of the level grid.
const (
	cellFloor byte = '.'
	cellWall  byte = '#'
	cellDoor  byte = 'D'
	cellOpen  byte = 'O' // door that has been opened
	cellMark  byte = 'T' // shootable target block
	cellStart byte = 'P'
)

// layout is the single level shipped with the demo core.
var layout = []string{
	"################",
	"#P.....#.......#",
	"#.##...D...##..#",
	"#.#....#....#..#",
	"#.#..###....#..#",
	"#......#.......#",
	"####D###..######",
	"#..............#",
	"#..##.....##...#",
	"#..#.......#...#",
	"#..#...#...#...#",
	"#......#.......#",
	"###D####...#####",
	"#..............#",
	"#..............#",
	"################",
}

// targetCount is how many target blocks a level reset scatters.
const targetCount = 6

// Level is the mutable grid the player moves through.
type Level struct {
	w, h   int
	cells  []byte
	startX float64
	startY float64
}

// newLevel builds the level and scatters target blocks using the seed.
// Targets never land next to the start cell.
func newLevel(seed int64) *Level {
	l := &Level{h: len(layout), w: len(layout[0])}
	l.cells = make([]byte, l.w*l.h)

	for y, row := range layout {
		for x := 0; x < l.w; x++ {
			c := row[x]
			if c == cellStart {
				l.startX, l.startY = float64(x)+0.5, float64(y)+0.5
				c = cellFloor
			}
			l.cells[y*l.w+x] = c
		}
	}

	rng := rand.New(rand.NewSource(seed))
	placed := 0
	for attempts := 0; placed < targetCount && attempts < 1000; attempts++ {
		x, y := rng.Intn(l.w), rng.Intn(l.h)
		if l.at(x, y) != cellFloor {
			continue
		}
		if math.Abs(float64(x)+0.5-l.startX) < 3 && math.Abs(float64(y)+0.5-l.startY) < 3 {
			continue
		}
		l.set(x, y, cellMark)
		placed++
	}
	return l
}

// at returns the cell at (x, y); anything outside the grid is wall.
func (l *Level) at(x, y int) byte {
	if x < 0 || y < 0 || x >= l.w || y >= l.h {
		return cellWall
	}
	return l.cells[y*l.w+x]
}

func (l *Level) set(x, y int, c byte) {
	if x < 0 || y < 0 || x >= l.w || y >= l.h {
		return
	}
	l.cells[y*l.w+x] = c
}

// solid reports whether the player cannot enter (x, y).
func (l *Level) solid(x, y int) bool {
	switch l.at(x, y) {
	case cellFloor, cellOpen:
		return false
	}
	return true
}

// targets returns how many target blocks remain.
func (l *Level) targets() int {
	n := 0
	for _, c := range l.cells {
		if c == cellMark {
			n++
		}
	}
	return n
}
