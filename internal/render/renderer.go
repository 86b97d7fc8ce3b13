// Package render draws a session snapshot as a PNG board image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/internal/session"
)

// Options carries the text drawn above the board. Empty fields fall back
// to the player labels and the side to move.
type Options struct {
	Mode   session.DisplayMode
	Header string
	Status string
}

const (
	squareSize       = 64
	boardSize        = squareSize * board.Size
	sideMargin       = 28
	topMargin        = 96
	bottomMargin     = 28
	titleHeight      = 30
	statusHeight     = 24
	gapBetweenPanels = 8
	gapToBoard       = 14
	panelRadius      = 10
	panelPaddingX    = 18
	shadowOffsetY    = 4
)

// Width and Height are the dimensions of every rendered image.
const (
	Width  = boardSize + sideMargin*2
	Height = boardSize + topMargin + bottomMargin
)

var (
	hudPanelColor    = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudStatusColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor   = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary   = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTextSecondary = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	backgroundColor  = color.RGBA{18, 20, 30, 255}
)

type Renderer struct {
	face font.Face
}

func New() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// RenderPNG draws snap with the palette of opts.Mode.
func (r *Renderer) RenderPNG(ctx context.Context, snap session.Snapshot, opts Options) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	theme := ThemeFor(opts.Mode)
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	r.drawHUD(img, boardRect, headerText(snap, opts), statusText(snap, opts))
	drawSquares(img, theme, origin)
	if snap.LastMove != nil {
		drawSquareOverlay(img, snap.LastMove.Start.Chess(), squareSize, origin, theme.LastMove)
		drawSquareOverlay(img, snap.LastMove.End.Chess(), squareSize, origin, theme.LastMove)
	}
	if snap.Selection != nil {
		drawSquareOverlay(img, snap.Selection.Chess(), squareSize, origin, theme.Selection)
	}
	if err := drawPieces(img, snap.Board, origin); err != nil {
		return nil, err
	}
	if snap.LastMove != nil {
		drawArrow(img, snap.LastMove.Start.Chess(), snap.LastMove.End.Chess(), squareSize, origin, theme.LastMove)
	}
	r.drawCoordinates(img, theme, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func headerText(snap session.Snapshot, opts Options) string {
	if h := strings.TrimSpace(opts.Header); h != "" {
		return h
	}
	return snap.White.Label() + " vs " + snap.Black.Label()
}

func statusText(snap session.Snapshot, opts Options) string {
	if s := strings.TrimSpace(opts.Status); s != "" {
		return s
	}
	switch snap.Result {
	case session.ResultNone:
	case session.ResultDraw:
		return "Draw"
	default:
		return "Winner: " + string(snap.Result)
	}
	if snap.Turn == "" {
		return session.WaitingLabel
	}
	return "Turn: " + string(snap.Turn)
}

var (
	ranks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	files = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
)

func drawSquares(dst *image.RGBA, theme Theme, origin image.Point) {
	for _, rank := range ranks {
		for _, file := range files {
			sq := nchess.NewSquare(file, rank)
			clr := theme.Light
			if (int(file)+int(rank))%2 == 0 {
				clr = theme.Dark
			}
			imagedraw.Draw(dst, squareRect(sq, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst *image.RGBA, b board.Board, origin image.Point) error {
	for row := range b {
		for col, p := range b[row] {
			if p.Empty() {
				continue
			}
			img, err := renderPieceImage(p, squareSize)
			if err != nil {
				return err
			}
			sq, _ := board.SquareOf(row, col)
			imagedraw.Draw(dst, squareRect(sq.Chess(), squareSize, origin), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func (r *Renderer) drawHUD(img *image.RGBA, boardRect image.Rectangle, title, status string) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	statusBottom := boardRect.Min.Y - gapToBoard
	statusTop := statusBottom - statusHeight
	titleBottom := statusTop - gapBetweenPanels
	titleTop := titleBottom - titleHeight

	titleWidth := min(drawer.MeasureString(title).Round()+panelPaddingX*2, boardRect.Dx())
	statusWidth := min(drawer.MeasureString(status).Round()+panelPaddingX*2, boardRect.Dx())

	titleLeft := boardRect.Min.X + (boardRect.Dx()-titleWidth)/2
	titleRect := image.Rect(titleLeft, titleTop, titleLeft+titleWidth, titleBottom)
	statusLeft := boardRect.Min.X + (boardRect.Dx()-statusWidth)/2
	statusRect := image.Rect(statusLeft, statusTop, statusLeft+statusWidth, statusBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, statusRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, statusRect, panelRadius, hudStatusColor)

	title = truncateWithEllipsis(r.face, title, titleRect.Dx()-panelPaddingX*2)
	status = truncateWithEllipsis(r.face, status, statusRect.Dx()-panelPaddingX*2)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, statusRect, status, hudTextSecondary)
}

func (r *Renderer) drawCoordinates(dst *image.RGBA, theme Theme, origin image.Point) {
	drawer := &font.Drawer{Dst: dst, Face: r.face, Src: image.NewUniform(theme.Coordinate)}
	ascent := r.face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + len(ranks)*squareSize

	for row, rank := range ranks {
		baseline := origin.Y + row*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, rank.String(), origin.X-sideMargin/2, baseline)
	}
	for col, file := range files {
		center := origin.X + col*squareSize + squareSize/2
		drawCenteredText(drawer, file.String(), center, boardEndY+ascent+4)
	}
}
