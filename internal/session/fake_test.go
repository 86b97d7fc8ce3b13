package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

type fakeGame struct {
	state    *chessdto.StateResponse
	stateErr error
	white    *chessdto.Player
	whiteErr error
	black    *chessdto.Player
	blackErr error
}

type fakeAPI struct {
	mu    sync.Mutex
	games map[string]*fakeGame

	moveResp *chessdto.MoveResponse
	moveErr  error

	// optional hooks, run before the fake answers
	stateHook func(ctx context.Context, gameID string)
	moveHook  func(ctx context.Context)

	stateCalls  int
	playerCalls int
	moves       []chessdto.MoveRequest
	tokens      []string
}

func newFakeAPI() *fakeAPI { return &fakeAPI{games: make(map[string]*fakeGame)} }

func (f *fakeAPI) game(id string) *fakeGame {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		g = &fakeGame{}
		f.games[id] = g
	}
	return g
}

func (f *fakeAPI) State(ctx context.Context, gameID string) (*chessdto.StateResponse, error) {
	if f.stateHook != nil {
		f.stateHook(ctx, gameID)
	}
	g := f.game(gameID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stateCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.state, g.stateErr
}

func (f *fakeAPI) WhitePlayer(ctx context.Context, gameID string) (*chessdto.Player, error) {
	g := f.game(gameID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playerCalls++
	return g.white, g.whiteErr
}

func (f *fakeAPI) BlackPlayer(ctx context.Context, gameID string) (*chessdto.Player, error) {
	g := f.game(gameID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playerCalls++
	return g.black, g.blackErr
}

func (f *fakeAPI) Move(ctx context.Context, gameID, token string, req chessdto.MoveRequest) (*chessdto.MoveResponse, error) {
	if f.moveHook != nil {
		f.moveHook(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, req)
	f.tokens = append(f.tokens, token)
	return f.moveResp, f.moveErr
}

func (f *fakeAPI) moveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateCalls + f.playerCalls
}

// rawBoard builds a server matrix with object cells, as the backend sends them.
func rawBoard(t *testing.T, pieces map[string]board.Piece) [][]json.RawMessage {
	t.Helper()
	out := make([][]json.RawMessage, board.Size)
	for row := range out {
		out[row] = make([]json.RawMessage, board.Size)
		for col := range out[row] {
			out[row][col] = json.RawMessage("null")
		}
	}
	for name, p := range pieces {
		sq, err := board.ParseSquare(name)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", name, err)
		}
		enc, _ := json.Marshal(map[string]string{"name": p.String(), "color": "x"})
		out[sq.Row()][sq.Col()] = enc
	}
	return out
}

func mustSquare(t *testing.T, s string) board.Square {
	t.Helper()
	sq, err := board.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

func strPtr(s string) *string { return &s }
