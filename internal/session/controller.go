package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-session-client/internal/auth"
	"github.com/park285/chess-session-client/internal/board"
)

// API is the full chess server surface used by a session.
type API interface {
	StateAPI
	MoveAPI
}

// Controller keeps a Model synchronized with the server for one game at a
// time. It turns clicks into move submissions and never computes legality.
type Controller struct {
	model     *Model
	fetcher   *Fetcher
	submitter *MoveSubmitter
	logger    *zap.Logger

	life   context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	gameID     string
	generation uint64
	selection  Selection
	inFlight   bool
	closed     bool

	// epoch counts applied moves. A state fetch issued under an older
	// epoch would roll the board back.
	epoch uint64
}

type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	logger  *zap.Logger
	display DisplayMode
}

func WithLogger(l *zap.Logger) ControllerOption {
	return func(o *controllerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithDisplayMode(m DisplayMode) ControllerOption {
	return func(o *controllerOptions) { o.display = m }
}

func NewController(api API, tokens auth.TokenProvider, opts ...ControllerOption) *Controller {
	o := controllerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	life, cancel := context.WithCancel(context.Background())
	return &Controller{
		model:     NewModel(o.display),
		fetcher:   NewFetcher(api, o.logger),
		submitter: NewMoveSubmitter(api, tokens, o.logger),
		logger:    o.logger,
		life:      life,
		cancel:    cancel,
	}
}

func (c *Controller) Model() *Model { return c.model }

// Enter starts a session for gameID: the model is reset and the three
// entry fetches run. Results still outstanding for a previous game are
// discarded. The returned error joins per-part fetch failures; the session
// stays usable either way.
func (c *Controller) Enter(ctx context.Context, gameID string) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return ErrNoGame
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	c.generation++
	c.gameID = gameID
	c.selection.Reset()
	c.inFlight = false
	c.model.reset(gameID)
	sink := c.sinkLocked()
	c.mu.Unlock()

	c.logger.Info("session_enter", zap.String("game_id", gameID))
	return c.fetch(ctx, sink, gameID)
}

// Reload re-runs the entry fetches for the current game.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	gameID := c.gameID
	sink := c.sinkLocked()
	c.mu.Unlock()
	if gameID == "" {
		return ErrNoGame
	}
	return c.fetch(ctx, sink, gameID)
}

// sinkLocked captures the current session and move epoch. c.mu must be held.
func (c *Controller) sinkLocked() *guardedSink {
	return &guardedSink{c: c, gen: c.generation, epoch: c.epoch}
}

func (c *Controller) fetch(ctx context.Context, sink *guardedSink, gameID string) error {
	ctx, done := c.bind(ctx)
	defer done()
	report := c.fetcher.Fetch(ctx, gameID, sink)
	return report.Err()
}

// ClickCell is Click for the square shown at grid position (row, col).
func (c *Controller) ClickCell(ctx context.Context, row, col int) (Outcome, error) {
	sq, err := board.SquareOf(row, col)
	if err != nil {
		return OutcomeIgnored, err
	}
	return c.Click(ctx, sq)
}

// Click feeds one square click to the selection machine. Clicks are
// withheld from the machine once a result is known, while a move is in
// flight, and after Close. A completed move is submitted synchronously;
// on return the selection is Idle again whatever the outcome.
func (c *Controller) Click(ctx context.Context, sq board.Square) (Outcome, error) {
	if !sq.Valid() {
		return OutcomeIgnored, fmt.Errorf("%w: %q", board.ErrInvalidSquare, sq.String())
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return OutcomeIgnored, ErrSessionClosed
	case c.gameID == "":
		c.mu.Unlock()
		return OutcomeIgnored, ErrNoGame
	case c.model.Snapshot().Finished():
		c.mu.Unlock()
		return OutcomeIgnored, ErrGameFinished
	case c.inFlight:
		c.mu.Unlock()
		return OutcomeIgnored, ErrMoveInFlight
	}

	outcome, mv := c.selection.Click(sq)
	if outcome != OutcomeMove {
		if outcome == OutcomeSelected {
			sel := c.selection.pointer()
			c.model.update(func(s *Snapshot) { s.Selection = sel })
		}
		c.mu.Unlock()
		return outcome, nil
	}

	c.inFlight = true
	gen, gameID := c.generation, c.gameID
	c.model.update(func(s *Snapshot) { s.Pending = true })
	c.mu.Unlock()

	sctx, done := c.bind(ctx)
	res, err := c.submitter.SubmitMove(sctx, gameID, mv.Start, mv.End)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return OutcomeMove, ErrSessionClosed
	}
	if gen != c.generation {
		c.logger.Debug("move_result_discarded", zap.String("game_id", gameID), zap.String("move", mv.String()))
		return OutcomeMove, ErrStaleSession
	}
	c.inFlight = false
	c.selection.Reset()
	if err != nil {
		c.model.update(func(s *Snapshot) {
			s.Selection = nil
			s.Pending = false
		})
		return OutcomeMove, err
	}
	c.epoch++
	c.model.update(func(s *Snapshot) {
		s.Board = res.Board
		s.Turn = res.Turn
		s.Result = res.Result
		s.LastMove = &mv
		s.Selection = nil
		s.Pending = false
		s.Loaded = true
	})
	if res.Result != ResultNone {
		c.logger.Info("session_finished", zap.String("game_id", gameID), zap.String("result", string(res.Result)))
	}
	return OutcomeMove, nil
}

// CancelSelection abandons a move in progress.
func (c *Controller) CancelSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.inFlight {
		return
	}
	if _, ok := c.selection.Current(); !ok {
		return
	}
	c.selection.Reset()
	c.model.update(func(s *Snapshot) { s.Selection = nil })
}

// Close ends the session. Outstanding requests are cancelled and their
// results dropped; the model keeps its last state.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.logger.Info("session_close")
}

// bind derives a context that is also cancelled when the session closes.
func (c *Controller) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// guardedSink publishes fetch results only while the session that issued
// them is still current. Board state is also dropped once a move has been
// applied after the fetch was issued.
type guardedSink struct {
	c     *Controller
	gen   uint64
	epoch uint64
}

func (g *guardedSink) apply(part string, boardState bool, fn func(*Snapshot)) {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.generation != g.gen || (boardState && c.epoch != g.epoch) {
		c.logger.Debug("fetch_result_discarded", zap.String("part", part))
		return
	}
	c.model.update(fn)
}

func (g *guardedSink) PublishState(b board.Board, turn Color, result Result) {
	g.apply("state", true, func(s *Snapshot) {
		s.Board = b
		s.Turn = turn
		s.Result = result
		s.Loaded = true
	})
}

func (g *guardedSink) PublishWhite(p *Player) {
	g.apply("white_player", false, func(s *Snapshot) { s.White = p })
}

func (g *guardedSink) PublishBlack(p *Player) {
	g.apply("black_player", false, func(s *Snapshot) { s.Black = p })
}
