package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

// StateAPI is the read side of the chess server.
type StateAPI interface {
	State(ctx context.Context, gameID string) (*chessdto.StateResponse, error)
	WhitePlayer(ctx context.Context, gameID string) (*chessdto.Player, error)
	BlackPlayer(ctx context.Context, gameID string) (*chessdto.Player, error)
}

// Sink receives each fetched piece of state as soon as it resolves.
type Sink interface {
	PublishState(b board.Board, turn Color, result Result)
	PublishWhite(p *Player)
	PublishBlack(p *Player)
}

// FetchReport holds the per-part failures of one Fetch.
type FetchReport struct {
	State error
	White error
	Black error
}

// Err joins the failures; nil when all three parts succeeded.
func (r FetchReport) Err() error {
	var errs []error
	if r.State != nil {
		errs = append(errs, fmt.Errorf("state: %w", r.State))
	}
	if r.White != nil {
		errs = append(errs, fmt.Errorf("white player: %w", r.White))
	}
	if r.Black != nil {
		errs = append(errs, fmt.Errorf("black player: %w", r.Black))
	}
	return errors.Join(errs...)
}

// Fetcher loads board/turn and both identities for a game.
type Fetcher struct {
	api    StateAPI
	logger *zap.Logger
}

func NewFetcher(api StateAPI, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{api: api, logger: logger}
}

// Fetch issues the three requests concurrently. Each publishes to sink on
// success independently of the others; failures are logged and leave the
// corresponding state untouched. Fetch returns when all three finished.
func (f *Fetcher) Fetch(ctx context.Context, gameID string, sink Sink) FetchReport {
	var (
		wg     sync.WaitGroup
		report FetchReport
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		report.State = f.fetchState(ctx, gameID, sink)
	}()
	go func() {
		defer wg.Done()
		p, err := f.api.WhitePlayer(ctx, gameID)
		if err != nil {
			f.logFailure(gameID, "white_player", err)
			report.White = err
			return
		}
		sink.PublishWhite(playerFromDTO(p))
	}()
	go func() {
		defer wg.Done()
		p, err := f.api.BlackPlayer(ctx, gameID)
		if err != nil {
			f.logFailure(gameID, "black_player", err)
			report.Black = err
			return
		}
		sink.PublishBlack(playerFromDTO(p))
	}()
	wg.Wait()
	return report
}

func (f *Fetcher) fetchState(ctx context.Context, gameID string, sink Sink) error {
	st, err := f.api.State(ctx, gameID)
	if err != nil {
		f.logFailure(gameID, "state", err)
		return err
	}
	sink.PublishState(board.Normalize(st.Board), parseColor(st.CurrentTurn), parseResult(st.Result))
	return nil
}

func (f *Fetcher) logFailure(gameID, part string, err error) {
	f.logger.Warn("session_fetch_failed",
		zap.String("game_id", gameID),
		zap.String("part", part),
		zap.Error(err),
	)
}
