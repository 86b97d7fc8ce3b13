package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

var (
	ErrUnauthenticated = errors.New("no credential available")
	ErrGameFinished    = errors.New("game already finished")
	ErrMoveInFlight    = errors.New("move submission already in flight")
	ErrNoSelection     = errors.New("move needs both start and end squares")
	ErrSameSquare      = errors.New("move starts and ends on the same square")
	ErrNoGame          = errors.New("no game identifier")
	ErrSessionClosed   = errors.New("session closed")
	ErrStaleSession    = errors.New("session changed while request was outstanding")
)

// WaitingLabel is shown for a side whose identity has not resolved yet.
const WaitingLabel = "Waiting..."

// Color is the side to move, as reported by the server.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// parseColor trusts the server value; it only normalises case and space.
func parseColor(s string) Color {
	return Color(strings.ToLower(strings.TrimSpace(s)))
}

// Result is the terminal outcome. ResultNone means the game is ongoing.
type Result string

const (
	ResultNone  Result = ""
	ResultWhite Result = "white"
	ResultBlack Result = "black"
	ResultDraw  Result = "draw"
)

func parseResult(s *string) Result {
	if s == nil {
		return ResultNone
	}
	return Result(strings.ToLower(strings.TrimSpace(*s)))
}

// Player is one side's identity.
type Player struct {
	Name   string
	Rating int
}

func playerFromDTO(p *chessdto.Player) *Player {
	if p == nil {
		return nil
	}
	return &Player{Name: p.Login, Rating: p.Elo}
}

// Label renders the identity, or WaitingLabel while unresolved.
func (p *Player) Label() string {
	if p == nil {
		return WaitingLabel
	}
	return fmt.Sprintf("%s (%d)", p.Name, p.Rating)
}

// Move is a completed two-click gesture.
type Move struct {
	Start board.Square
	End   board.Square
}

func (m Move) String() string { return m.Start.String() + m.End.String() }

// Snapshot is the read-only state surface observed by the rendering layer.
// Pointer fields are replaced wholesale, never mutated in place.
type Snapshot struct {
	GameID    string
	Board     board.Board
	Turn      Color
	Result    Result
	White     *Player
	Black     *Player
	Selection *board.Square
	// LastMove is the most recent move accepted by the server in this session.
	LastMove *Move

	// Loaded is set once a board/turn has been received for GameID.
	Loaded bool
	// Pending is set while a move submission is outstanding.
	Pending bool
	// Version increases with every published change.
	Version uint64
}

func (s Snapshot) Finished() bool { return s.Result != ResultNone }

// FEN renders placement and side to move; castling and clocks are not tracked.
func (s Snapshot) FEN() string {
	side := "w"
	if s.Turn == Black {
		side = "b"
	}
	return s.Board.Placement() + " " + side + " - - 0 1"
}
