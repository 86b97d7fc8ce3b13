// Package chesspresenter turns session state and errors into display text.
package chesspresenter

import (
	"errors"
	"strings"

	"github.com/park285/chess-session-client/internal/msgcat"
	"github.com/park285/chess-session-client/internal/session"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

// Formatter renders snapshots into status lines through a message catalog.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	if cat == nil {
		cat = msgcat.Default()
	}
	return &Formatter{cat: cat}
}

// Header is the "white vs black" line.
func (f *Formatter) Header(s session.Snapshot) string {
	white, black := f.playerLabel(s.White), f.playerLabel(s.Black)
	return f.cat.Text(msgcat.SessionHeader, struct{ White, Black string }{white, black}, white+" vs "+black)
}

func (f *Formatter) playerLabel(p *session.Player) string {
	if p == nil {
		return f.cat.Text(msgcat.SessionWaiting, nil, session.WaitingLabel)
	}
	return p.Label()
}

// Status describes the result when the game is over, otherwise a pending
// submission, the selection or the side to move.
func (f *Formatter) Status(s session.Snapshot) string {
	switch {
	case s.Finished():
		return f.Result(s.Result)
	case s.Pending:
		return f.cat.Text(msgcat.SessionPending, nil, "Submitting move...")
	case !s.Loaded:
		return f.cat.Text(msgcat.SessionLoading, struct{ GameID string }{s.GameID}, "Loading...")
	case s.Selection != nil:
		sq := s.Selection.String()
		return f.cat.Text(msgcat.SessionSelected, struct{ Square string }{sq}, "Selected "+sq)
	default:
		turn := string(s.Turn)
		return f.cat.Text(msgcat.SessionTurn, struct{ Turn string }{turn}, "Turn: "+turn)
	}
}

func (f *Formatter) Result(r session.Result) string {
	switch r {
	case session.ResultWhite:
		return f.cat.Text(msgcat.ResultWhite, nil, "White wins")
	case session.ResultBlack:
		return f.cat.Text(msgcat.ResultBlack, nil, "Black wins")
	case session.ResultDraw:
		return f.cat.Text(msgcat.ResultDraw, nil, "Draw")
	case session.ResultNone:
		return ""
	default:
		return f.cat.Text(msgcat.ResultOther, struct{ Result string }{string(r)}, string(r))
	}
}

// Error maps a session error to a user-facing line. move names the
// attempted move and may be empty.
func (f *Formatter) Error(err error, move string) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		return f.cat.Text(msgcat.ErrorUnauthenticated, nil, "Not signed in")
	case errors.Is(err, session.ErrGameFinished):
		return f.cat.Text(msgcat.ErrorFinished, nil, "The game is over")
	case errors.Is(err, session.ErrMoveInFlight):
		return f.cat.Text(msgcat.ErrorInFlight, nil, "A move is already being submitted")
	case errors.Is(err, session.ErrSameSquare):
		return f.cat.Text(msgcat.ErrorSameSquare, struct{ Move string }{move}, "Start and end squares are the same")
	}
	var apiErr *chessdto.APIError
	if errors.As(err, &apiErr) && move != "" {
		detail := strings.TrimSpace(apiErr.Detail)
		if detail == "" {
			detail = apiErr.Error()
		}
		return f.cat.Text(msgcat.ErrorMoveFailed, struct{ Move, Detail string }{move, detail}, "Move rejected")
	}
	if move == "" {
		return f.cat.Text(msgcat.ErrorFetchFailed, struct{ Part string }{"game"}, "Could not load game")
	}
	return f.cat.Text(msgcat.ErrorGeneric, nil, "Something went wrong")
}

func (f *Formatter) Help(mode session.DisplayMode) string {
	return f.cat.Text(msgcat.UIHelp, struct{ Mode string }{mode.String()}, "q: quit")
}

func (f *Formatter) Exported(path string) string {
	return f.cat.Text(msgcat.UIExported, struct{ Path string }{path}, path)
}
