package board

import (
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Piece is the symbol of a cell occupant. NoPiece marks an empty cell.
// Symbols follow FEN letters: upper case is white, lower case is black.
type Piece byte

const (
	NoPiece Piece = 0

	WhiteKing   Piece = 'K'
	WhiteQueen  Piece = 'Q'
	WhiteRook   Piece = 'R'
	WhiteBishop Piece = 'B'
	WhiteKnight Piece = 'N'
	WhitePawn   Piece = 'P'

	BlackKing   Piece = 'k'
	BlackQueen  Piece = 'q'
	BlackRook   Piece = 'r'
	BlackBishop Piece = 'b'
	BlackKnight Piece = 'n'
	BlackPawn   Piece = 'p'
)

var allPieces = []Piece{
	WhiteKing, WhiteQueen, WhiteRook, WhiteBishop, WhiteKnight, WhitePawn,
	BlackKing, BlackQueen, BlackRook, BlackBishop, BlackKnight, BlackPawn,
}

var chessPieces = map[Piece]nchess.Piece{
	WhiteKing:   nchess.WhiteKing,
	WhiteQueen:  nchess.WhiteQueen,
	WhiteRook:   nchess.WhiteRook,
	WhiteBishop: nchess.WhiteBishop,
	WhiteKnight: nchess.WhiteKnight,
	WhitePawn:   nchess.WhitePawn,
	BlackKing:   nchess.BlackKing,
	BlackQueen:  nchess.BlackQueen,
	BlackRook:   nchess.BlackRook,
	BlackBishop: nchess.BlackBishop,
	BlackKnight: nchess.BlackKnight,
	BlackPawn:   nchess.BlackPawn,
}

var glyphs = map[Piece]rune{
	WhiteKing: '♔', WhiteQueen: '♕', WhiteRook: '♖', WhiteBishop: '♗', WhiteKnight: '♘', WhitePawn: '♙',
	BlackKing: '♚', BlackQueen: '♛', BlackRook: '♜', BlackBishop: '♝', BlackKnight: '♞', BlackPawn: '♟',
}

// Pieces lists the twelve piece symbols.
func Pieces() []Piece { return append([]Piece(nil), allPieces...) }

// ParsePiece maps a server symbol to a Piece. Besides FEN letters it
// accepts two-letter asset names ("wP", "bk"). Anything else is NoPiece.
func ParsePiece(name string) Piece {
	name = strings.TrimSpace(name)
	switch len(name) {
	case 1:
		p := Piece(name[0])
		if _, ok := chessPieces[p]; ok {
			return p
		}
	case 2:
		kind := Piece(strings.ToUpper(name[1:])[0])
		if _, ok := chessPieces[kind]; !ok {
			return NoPiece
		}
		switch name[0] {
		case 'w', 'W':
			return kind
		case 'b', 'B':
			return kind + ('a' - 'A')
		}
	}
	return NoPiece
}

func (p Piece) Empty() bool { return p == NoPiece }

// White reports the piece color; meaningless for NoPiece.
func (p Piece) White() bool { return p >= 'A' && p <= 'Z' }

func (p Piece) String() string {
	if p == NoPiece {
		return ""
	}
	return string(rune(p))
}

// Glyph returns the unicode figurine, or a space for an empty cell.
func (p Piece) Glyph() rune {
	if g, ok := glyphs[p]; ok {
		return g
	}
	return ' '
}

// Chess converts to the chess library piece.
func (p Piece) Chess() nchess.Piece {
	if cp, ok := chessPieces[p]; ok {
		return cp
	}
	return nchess.NoPiece
}
