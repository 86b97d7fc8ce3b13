package tui

import (
	"github.com/nsf/termbox-go"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/internal/session"
)

// Layout places the 8x8 grid on the terminal. Each board cell spans
// CellW columns and CellH rows.
type Layout struct {
	OriginX int
	OriginY int
	CellW   int
	CellH   int
}

func DefaultLayout() Layout {
	return Layout{OriginX: 3, OriginY: 3, CellW: 4, CellH: 2}
}

// CellAt maps a terminal position to a grid (row, col). ok is false
// outside the board.
func (l Layout) CellAt(x, y int) (row, col int, ok bool) {
	if l.CellW <= 0 || l.CellH <= 0 {
		return 0, 0, false
	}
	dx, dy := x-l.OriginX, y-l.OriginY
	if dx < 0 || dy < 0 {
		return 0, 0, false
	}
	col, row = dx/l.CellW, dy/l.CellH
	if row >= board.Size || col >= board.Size {
		return 0, 0, false
	}
	return row, col, true
}

// CellOrigin is the top-left terminal position of grid cell (row, col).
func (l Layout) CellOrigin(row, col int) (x, y int) {
	return l.OriginX + col*l.CellW, l.OriginY + row*l.CellH
}

// Bottom is the first terminal row below the board and its file labels.
func (l Layout) Bottom() int {
	return l.OriginY + board.Size*l.CellH + 1
}

type palette struct {
	light     termbox.Attribute
	dark      termbox.Attribute
	selection termbox.Attribute
	lastMove  termbox.Attribute
}

var palettes = map[session.DisplayMode]palette{
	session.DisplayClassic: {light: termbox.ColorYellow, dark: termbox.ColorRed, selection: termbox.ColorCyan, lastMove: termbox.ColorBlue},
	session.DisplayGreen:   {light: termbox.ColorWhite, dark: termbox.ColorGreen, selection: termbox.ColorYellow, lastMove: termbox.ColorCyan},
	session.DisplayMono:    {light: termbox.ColorWhite, dark: termbox.ColorBlack, selection: termbox.ColorCyan, lastMove: termbox.ColorMagenta},
}

func paletteFor(mode session.DisplayMode) palette {
	if p, ok := palettes[mode]; ok {
		return p
	}
	return palettes[session.DisplayClassic]
}

func pieceFg(p board.Piece, bg termbox.Attribute) termbox.Attribute {
	if p.White() {
		return termbox.ColorWhite | termbox.AttrBold
	}
	if bg == termbox.ColorBlack {
		return termbox.ColorWhite
	}
	return termbox.ColorBlack
}
