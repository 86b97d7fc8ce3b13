package board

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Size is the number of rows and columns of the grid.
const Size = 8

var ErrInvalidSquare = errors.New("invalid square")

// Square is a board coordinate: file 'a'..'h', rank '1'..'8'.
// Row 0 is rank 8 and column 0 is file a.
type Square struct {
	File byte
	Rank byte
}

// SquareOf derives the square shown at grid position (row, col).
func SquareOf(row, col int) (Square, error) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return Square{}, fmt.Errorf("%w: row=%d col=%d", ErrInvalidSquare, row, col)
	}
	return Square{File: byte('a' + col), Rank: byte('0' + Size - row)}, nil
}

// ParseSquare accepts algebraic names such as "e2" (case-insensitive file).
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	sq := Square{File: s[0], Rank: s[1]}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

func (s Square) Valid() bool {
	return s.File >= 'a' && s.File <= 'h' && s.Rank >= '1' && s.Rank <= '8'
}

// Row and Col invert SquareOf.
func (s Square) Row() int { return Size - int(s.Rank-'0') }
func (s Square) Col() int { return int(s.File - 'a') }

func (s Square) String() string {
	if !s.Valid() {
		return ""
	}
	return string([]byte{s.File, s.Rank})
}

// Chess converts to the chess library's square index.
func (s Square) Chess() nchess.Square {
	return nchess.NewSquare(nchess.File(s.File-'a'), nchess.Rank(s.Rank-'1'))
}

// Light reports whether the square is drawn with the light color.
func (s Square) Light() bool {
	return (s.Row()+s.Col())%2 == 0
}
