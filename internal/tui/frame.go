package tui

import (
	"github.com/nsf/termbox-go"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/internal/session"
)

type cell struct {
	Ch rune
	Fg termbox.Attribute
	Bg termbox.Attribute
}

// frame is an off-screen buffer; flush copies it to termbox.
type frame struct {
	w, h  int
	cells []cell
}

func newFrame(w, h int) *frame {
	return &frame{w: w, h: h, cells: make([]cell, max(w, 0)*max(h, 0))}
}

func (f *frame) set(x, y int, ch rune, fg, bg termbox.Attribute) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.cells[y*f.w+x] = cell{Ch: ch, Fg: fg, Bg: bg}
}

func (f *frame) at(x, y int) cell {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return cell{}
	}
	return f.cells[y*f.w+x]
}

func (f *frame) text(x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		f.set(x, y, r, fg, bg)
		x++
	}
}

func (f *frame) flush() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			c := f.cells[y*f.w+x]
			if c.Ch == 0 && c.Bg == termbox.ColorDefault {
				continue
			}
			ch := c.Ch
			if ch == 0 {
				ch = ' '
			}
			termbox.SetCell(x, y, ch, c.Fg, c.Bg)
		}
	}
	return termbox.Flush()
}

// view is everything one redraw needs.
type view struct {
	Snap    session.Snapshot
	Mode    session.DisplayMode
	Header  string
	Status  string
	Message string
	Help    string
}

func compose(v view, l Layout, w, h int) *frame {
	f := newFrame(w, h)
	pal := paletteFor(v.Mode)
	fg := termbox.ColorDefault

	f.text(0, 0, v.Header, fg|termbox.AttrBold, termbox.ColorDefault)
	f.text(0, 1, v.Status, fg, termbox.ColorDefault)

	highlight := map[board.Square]termbox.Attribute{}
	if mv := v.Snap.LastMove; mv != nil {
		highlight[mv.Start] = pal.lastMove
		highlight[mv.End] = pal.lastMove
	}
	if sel := v.Snap.Selection; sel != nil {
		highlight[*sel] = pal.selection
	}

	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			sq, _ := board.SquareOf(row, col)
			bg := pal.dark
			if sq.Light() {
				bg = pal.light
			}
			if hl, ok := highlight[sq]; ok {
				bg = hl
			}
			x0, y0 := l.CellOrigin(row, col)
			for dy := 0; dy < l.CellH; dy++ {
				for dx := 0; dx < l.CellW; dx++ {
					f.set(x0+dx, y0+dy, ' ', fg, bg)
				}
			}
			if p := v.Snap.Board.At(sq); !p.Empty() {
				f.set(x0+l.CellW/2-1, y0+l.CellH/2, p.Glyph(), pieceFg(p, bg), bg)
			}
		}
		_, y := l.CellOrigin(row, 0)
		f.set(l.OriginX-2, y+l.CellH/2, rune('0'+board.Size-row), fg, termbox.ColorDefault)
	}
	fileY := l.OriginY + board.Size*l.CellH
	for col := 0; col < board.Size; col++ {
		x, _ := l.CellOrigin(0, col)
		f.set(x+l.CellW/2-1, fileY, rune('a'+col), fg, termbox.ColorDefault)
	}

	bottom := l.Bottom()
	f.text(0, bottom, v.Message, termbox.ColorRed, termbox.ColorDefault)
	f.text(0, bottom+1, v.Help, fg, termbox.ColorDefault)
	return f
}
