package board

import (
	"bytes"
	"encoding/json"

	nchess "github.com/corentings/chess/v2"
)

// Board is the 8x8 grid, indexed [row][col]. Row 0 is rank 8.
type Board [Size][Size]Piece

// Raw is the server's matrix form. A cell is null, a bare symbol, or an
// object carrying a "name" field.
type Raw [][]json.RawMessage

type namedCell struct {
	Name json.RawMessage `json:"name"`
}

// Normalize converts a server matrix into a Board. It never fails:
// malformed, unknown or out-of-range cells become empty.
func Normalize(raw Raw) Board {
	var b Board
	for row := 0; row < Size && row < len(raw); row++ {
		for col := 0; col < Size && col < len(raw[row]); col++ {
			b[row][col] = normalizeCell(raw[row][col])
		}
	}
	return b
}

func normalizeCell(cell json.RawMessage) Piece {
	cell = bytes.TrimSpace(cell)
	if len(cell) == 0 {
		return NoPiece
	}
	switch cell[0] {
	case '"':
		var s string
		if err := json.Unmarshal(cell, &s); err != nil {
			return NoPiece
		}
		return ParsePiece(s)
	case '{':
		var obj namedCell
		if err := json.Unmarshal(cell, &obj); err != nil {
			return NoPiece
		}
		// only a string name is accepted; nested objects are not unwrapped
		var s string
		if err := json.Unmarshal(obj.Name, &s); err != nil {
			return NoPiece
		}
		return ParsePiece(s)
	default:
		// null, false, numbers, arrays
		return NoPiece
	}
}

// Raw encodes the board back into the matrix form, with null for empty
// cells and bare symbols otherwise.
func (b Board) Raw() Raw {
	out := make(Raw, Size)
	for row := range b {
		out[row] = make([]json.RawMessage, Size)
		for col, p := range b[row] {
			if p.Empty() {
				out[row][col] = json.RawMessage("null")
				continue
			}
			enc, _ := json.Marshal(p.String())
			out[row][col] = enc
		}
	}
	return out
}

func (b Board) At(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b[sq.Row()][sq.Col()]
}

// Chess converts the grid to the chess library board.
func (b Board) Chess() *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece)
	for row := range b {
		for col, p := range b[row] {
			if p.Empty() {
				continue
			}
			sq, _ := SquareOf(row, col)
			m[sq.Chess()] = p.Chess()
		}
	}
	return nchess.NewBoard(m)
}

// Placement returns the FEN piece-placement field.
func (b Board) Placement() string {
	return b.Chess().String()
}

// Starting returns the standard initial position. Used for previews and tests.
func Starting() Board {
	var b Board
	back := []Piece{BlackRook, BlackKnight, BlackBishop, BlackQueen, BlackKing, BlackBishop, BlackKnight, BlackRook}
	for col := 0; col < Size; col++ {
		b[0][col] = back[col]
		b[1][col] = BlackPawn
		b[6][col] = WhitePawn
		b[7][col] = back[col] - ('a' - 'A')
	}
	return b
}
