package session

import "github.com/park285/chess-session-client/internal/board"

// Outcome reports what a click did.
type Outcome int

const (
	// OutcomeIgnored: the click was withheld (finished game, move in flight, closed session).
	OutcomeIgnored Outcome = iota
	// OutcomeSelected: a move origin was chosen.
	OutcomeSelected
	// OutcomeUnchanged: the selected square was clicked again and kept.
	OutcomeUnchanged
	// OutcomeMove: a second, different square completed a move.
	OutcomeMove
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeMove:
		return "move"
	default:
		return "ignored"
	}
}

// Selection is the two-state click machine: Idle or Selected(square).
// The zero value is Idle.
type Selection struct {
	square board.Square
	active bool
}

// Click advances the machine. Clicking the selected square again keeps it
// selected and submits nothing. A different square yields a Move; the
// machine stays Selected until Reset is called on completion.
func (s *Selection) Click(sq board.Square) (Outcome, Move) {
	if !s.active {
		s.square, s.active = sq, true
		return OutcomeSelected, Move{}
	}
	if sq == s.square {
		return OutcomeUnchanged, Move{}
	}
	return OutcomeMove, Move{Start: s.square, End: sq}
}

// Reset returns to Idle.
func (s *Selection) Reset() { *s = Selection{} }

// Current returns the selected square, if any.
func (s Selection) Current() (board.Square, bool) { return s.square, s.active }

func (s Selection) pointer() *board.Square {
	if !s.active {
		return nil
	}
	sq := s.square
	return &sq
}
