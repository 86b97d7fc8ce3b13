package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/park285/chess-session-client/internal/auth"
	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

// MoveAPI is the write side of the chess server.
type MoveAPI interface {
	Move(ctx context.Context, gameID, token string, req chessdto.MoveRequest) (*chessdto.MoveResponse, error)
}

// MoveResult is the server-authoritative state after a move.
type MoveResult struct {
	Board  board.Board
	Turn   Color
	Result Result
}

// MoveSubmitter posts moves under the credential from the token provider.
type MoveSubmitter struct {
	api    MoveAPI
	tokens auth.TokenProvider
	logger *zap.Logger
}

func NewMoveSubmitter(api MoveAPI, tokens auth.TokenProvider, logger *zap.Logger) *MoveSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoveSubmitter{api: api, tokens: tokens, logger: logger}
}

// SubmitMove fails with ErrUnauthenticated, without any request, when no
// token is available. A 401/403 from the server also matches ErrUnauthenticated.
func (s *MoveSubmitter) SubmitMove(ctx context.Context, gameID string, start, end board.Square) (*MoveResult, error) {
	if gameID == "" {
		return nil, ErrNoGame
	}
	if !start.Valid() || !end.Valid() {
		return nil, ErrNoSelection
	}
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	req := chessdto.MoveRequest{Start: start.String(), End: end.String()}
	resp, err := s.api.Move(ctx, gameID, token, req)
	if err != nil {
		s.logger.Warn("move_submit_failed",
			zap.String("game_id", gameID),
			zap.String("start", req.Start),
			zap.String("end", req.End),
			zap.Error(err),
		)
		var apiErr *chessdto.APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, err
	}

	out := &MoveResult{
		Board:  board.Normalize(resp.Board),
		Turn:   parseColor(resp.CurrentTurn),
		Result: parseResult(resp.Result),
	}
	s.logger.Info("move_submit_ok",
		zap.String("game_id", gameID),
		zap.String("start", req.Start),
		zap.String("end", req.End),
		zap.String("turn", string(out.Turn)),
		zap.String("result", string(out.Result)),
	)
	return out, nil
}

func (s *MoveSubmitter) token(ctx context.Context) (string, error) {
	if s.tokens == nil {
		return "", ErrUnauthenticated
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.Warn("auth_token_unavailable", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
