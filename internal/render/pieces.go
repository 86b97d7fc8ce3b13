package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/chess-session-client/internal/board"
)

// Piece silhouettes on a 45x45 canvas. {F} is the body fill, {S} the outline.
var pieceShapes = map[byte]string{
	'P': `<circle cx="22.5" cy="14" r="5" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<path d="M 16 35 L 19 21 L 26 21 L 29 35 Z" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<rect x="12" y="35" width="21" height="4" fill="{F}" stroke="{S}" stroke-width="1.5"/>`,
	'R': `<path d="M 12 10 L 16 10 L 16 13 L 20 13 L 20 10 L 25 10 L 25 13 L 29 13 L 29 10 L 33 10 L 33 16 L 30 18 L 30 32 L 15 32 L 15 18 L 12 16 Z" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<rect x="10" y="32" width="25" height="6" fill="{F}" stroke="{S}" stroke-width="1.5"/>`,
	'N': `<path d="M 14 38 L 31 38 L 31 30 C 31 22 30 14 24 10 L 22 7 L 20 10 C 16 12 12 17 11 22 L 14 25 L 18 22 C 19 26 17 29 14 32 Z" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<circle cx="20" cy="15" r="1.5" fill="{S}"/>`,
	'B': `<circle cx="22.5" cy="8" r="2.5" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<path d="M 22.5 11 C 16 16 15 24 18 30 L 27 30 C 30 24 29 16 22.5 11 Z" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<rect x="12" y="32" width="21" height="5" fill="{F}" stroke="{S}" stroke-width="1.5"/>`,
	'Q': `<path d="M 9 13 L 15 28 L 17 11 L 22.5 27 L 28 11 L 30 28 L 36 13 L 33 33 L 12 33 Z" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<rect x="11" y="33" width="23" height="5" fill="{F}" stroke="{S}" stroke-width="1.5"/>`,
	'K': `<path d="M 21 5 L 24 5 L 24 9 L 28 9 L 28 12 L 24 12 L 24 16 L 21 16 L 21 12 L 17 12 L 17 9 L 21 9 Z" fill="{F}" stroke="{S}" stroke-width="1"/>` +
		`<path d="M 11 22 C 11 16 34 16 34 22 L 31 33 L 14 33 Z" fill="{F}" stroke="{S}" stroke-width="1.5"/>` +
		`<rect x="11" y="33" width="23" height="5" fill="{F}" stroke="{S}" stroke-width="1.5"/>`,
}

func pieceSVG(p board.Piece) (string, error) {
	kind := byte(p)
	if !p.White() {
		kind -= 'a' - 'A'
	}
	shape, ok := pieceShapes[kind]
	if !ok {
		return "", fmt.Errorf("no shape for piece %q", p.String())
	}
	fill, stroke := "#000000", "#ffffff"
	if p.White() {
		fill, stroke = "#ffffff", "#000000"
	}
	body := strings.NewReplacer("{F}", fill, "{S}", stroke).Replace(shape)
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">` + body + `</svg>`, nil
}

type pieceCacheKey struct {
	piece board.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	svg, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
