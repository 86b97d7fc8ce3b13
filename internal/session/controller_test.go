package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/park285/chess-session-client/internal/auth"
	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

func openingAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := newFakeAPI()
	g := api.game("g1")
	g.state = &chessdto.StateResponse{
		Board:       rawBoard(t, map[string]board.Piece{"e2": board.WhitePawn, "e8": board.BlackKing, "e1": board.WhiteKing}),
		CurrentTurn: "white",
	}
	g.white = &chessdto.Player{Login: "alice", Elo: 1500}
	g.black = &chessdto.Player{Login: "bob", Elo: 1600}
	api.moveResp = &chessdto.MoveResponse{
		Board:       rawBoard(t, map[string]board.Piece{"e4": board.WhitePawn, "e8": board.BlackKing, "e1": board.WhiteKing}),
		CurrentTurn: "black",
	}
	return api
}

func TestEnterThenTwoClicksSubmitsMove(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()

	if err := c.Enter(ctx, "g1"); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	snap := c.Model().Snapshot()
	if !snap.Loaded || snap.Turn != White || snap.Board[6][4] != board.WhitePawn {
		t.Fatalf("unexpected entry snapshot: %+v", snap)
	}
	if snap.White.Label() != "alice (1500)" || snap.Black.Label() != "bob (1600)" {
		t.Fatalf("players = %q / %q", snap.White.Label(), snap.Black.Label())
	}

	out, err := c.ClickCell(ctx, 6, 4)
	if err != nil || out != OutcomeSelected {
		t.Fatalf("first click = %v, %v", out, err)
	}
	if sel := c.Model().Snapshot().Selection; sel == nil || sel.String() != "e2" {
		t.Fatalf("selection = %v", sel)
	}

	out, err = c.ClickCell(ctx, 4, 4)
	if err != nil || out != OutcomeMove {
		t.Fatalf("second click = %v, %v", out, err)
	}
	if len(api.moves) != 1 || api.moves[0].Start != "e2" || api.moves[0].End != "e4" {
		t.Fatalf("moves = %+v", api.moves)
	}
	if api.tokens[0] != "tok" {
		t.Fatalf("token = %q", api.tokens[0])
	}

	snap = c.Model().Snapshot()
	if snap.Board[4][4] != board.WhitePawn || !snap.Board[6][4].Empty() {
		t.Fatalf("board not replaced: %v", snap.Board)
	}
	if snap.Turn != Black || snap.Result != ResultNone || snap.Selection != nil || snap.Pending {
		t.Fatalf("unexpected post-move snapshot: %+v", snap)
	}
}

func TestSameSquareClickKeepsSelection(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")

	e2 := mustSquare(t, "e2")
	if out, _ := c.Click(ctx, e2); out != OutcomeSelected {
		t.Fatalf("first click = %v", out)
	}
	if out, err := c.Click(ctx, e2); out != OutcomeUnchanged || err != nil {
		t.Fatalf("repeat click = %v, %v", out, err)
	}
	if api.moveCount() != 0 {
		t.Fatalf("repeat click must not submit")
	}
	if sel := c.Model().Snapshot().Selection; sel == nil || *sel != e2 {
		t.Fatalf("selection lost: %v", sel)
	}
}

func TestDrawResultLocksBoard(t *testing.T) {
	api := openingAPI(t)
	api.moveResp.Result = strPtr("draw")
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	if _, err := c.Click(ctx, mustSquare(t, "e4")); err != nil {
		t.Fatalf("move: %v", err)
	}
	snap := c.Model().Snapshot()
	if !snap.Finished() || snap.Result != ResultDraw {
		t.Fatalf("expected finished draw, got %+v", snap)
	}

	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			out, err := c.ClickCell(ctx, row, col)
			if out != OutcomeIgnored || !errors.Is(err, ErrGameFinished) {
				t.Fatalf("click %d/%d after result = %v, %v", row, col, out, err)
			}
		}
	}
	if api.moveCount() != 1 {
		t.Fatalf("expected exactly one submission, got %d", api.moveCount())
	}
	if c.Model().Snapshot().Selection != nil {
		t.Fatalf("selection must stay empty after result")
	}
}

func TestUnauthenticatedMakesNoRequest(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static(""))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")
	before := c.Model().Snapshot()

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	out, err := c.Click(ctx, mustSquare(t, "e4"))
	if out != OutcomeMove || !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("click = %v, %v; want unauthenticated", out, err)
	}
	if api.moveCount() != 0 {
		t.Fatalf("expected zero network calls, got %d", api.moveCount())
	}
	after := c.Model().Snapshot()
	if after.Board != before.Board || after.Turn != before.Turn || after.Selection != nil {
		t.Fatalf("state changed on unauthenticated move: %+v", after)
	}
}

func TestServerRejectsCredential(t *testing.T) {
	api := openingAPI(t)
	api.moveResp = nil
	api.moveErr = &chessdto.APIError{Status: 401, Detail: "expired"}
	c := NewController(api, auth.Static("old"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	_, err := c.Click(ctx, mustSquare(t, "e4"))
	var apiErr *chessdto.APIError
	if !errors.Is(err, ErrUnauthenticated) || !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestMoveFailureLeavesStateAndClearsSelection(t *testing.T) {
	api := openingAPI(t)
	api.moveResp = nil
	api.moveErr = errors.New("connection reset")
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")
	before := c.Model().Snapshot()

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	if _, err := c.Click(ctx, mustSquare(t, "e4")); err == nil {
		t.Fatalf("expected error")
	}
	after := c.Model().Snapshot()
	if after.Board != before.Board || after.Turn != White || after.Pending || after.Selection != nil {
		t.Fatalf("unexpected snapshot after failure: %+v", after)
	}
	// the same turn is offered again
	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	api.moveErr = nil
	api.moveResp = openingAPI(t).moveResp
	if _, err := c.Click(ctx, mustSquare(t, "e4")); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.Model().Snapshot().Turn != Black {
		t.Fatalf("retry did not apply")
	}
}

func TestFetchFailureIsIsolated(t *testing.T) {
	api := openingAPI(t)
	api.game("g1").whiteErr = errors.New("timeout")
	c := NewController(api, auth.Static("tok"))
	defer c.Close()

	err := c.Enter(context.Background(), "g1")
	if err == nil {
		t.Fatalf("expected joined fetch error")
	}
	snap := c.Model().Snapshot()
	if !snap.Loaded || snap.Black == nil {
		t.Fatalf("other parts must still publish: %+v", snap)
	}
	if snap.White != nil || snap.White.Label() != WaitingLabel {
		t.Fatalf("white should stay at the waiting sentinel, got %q", snap.White.Label())
	}
}

func TestNullPlayerKeepsWaiting(t *testing.T) {
	api := openingAPI(t)
	api.game("g1").black = nil
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	if err := c.Enter(context.Background(), "g1"); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if got := c.Model().Snapshot().Black.Label(); got != WaitingLabel {
		t.Fatalf("black label = %q", got)
	}
}

func TestDisplayCycleDoesNotFetch(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	_ = c.Enter(context.Background(), "g1")
	calls := api.fetchCount()
	version := c.Model().Snapshot().Version

	for i := 0; i < 5; i++ {
		c.Model().Display().Cycle()
	}
	if api.fetchCount() != calls {
		t.Fatalf("display change triggered fetches: %d -> %d", calls, api.fetchCount())
	}
	if c.Model().Snapshot().Version != version {
		t.Fatalf("display change must not publish game snapshots")
	}
}

func TestClickWhileMoveInFlightIsRefused(t *testing.T) {
	api := openingAPI(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	api.moveHook = func(context.Context) {
		close(entered)
		<-release
	}
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	done := make(chan error, 1)
	go func() {
		_, err := c.Click(ctx, mustSquare(t, "e4"))
		done <- err
	}()
	<-entered

	if !c.Model().Snapshot().Pending {
		t.Fatalf("expected pending snapshot")
	}
	out, err := c.Click(ctx, mustSquare(t, "d2"))
	if out != OutcomeIgnored || !errors.Is(err, ErrMoveInFlight) {
		t.Fatalf("click during flight = %v, %v", out, err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("move: %v", err)
	}
	if api.moveCount() != 1 {
		t.Fatalf("expected one submission, got %d", api.moveCount())
	}
}

func TestSnapshotNeverTears(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")

	var (
		mu   sync.Mutex
		seen []Snapshot
	)
	unsub := c.Model().Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer unsub()

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	_, _ = c.Click(ctx, mustSquare(t, "e4"))

	mu.Lock()
	defer mu.Unlock()
	turned := 0
	for _, s := range seen {
		if s.Turn == Black {
			turned++
			if s.Board[4][4] != board.WhitePawn {
				t.Fatalf("turn updated before board: %+v", s)
			}
		} else if s.Board[4][4] == board.WhitePawn {
			t.Fatalf("board updated before turn: %+v", s)
		}
	}
	if turned != 1 {
		t.Fatalf("expected exactly one post-move snapshot, got %d", turned)
	}
}

func TestCloseDiscardsOutstandingFetch(t *testing.T) {
	api := openingAPI(t)
	started := make(chan struct{})
	api.stateHook = func(ctx context.Context, _ string) {
		close(started)
		<-ctx.Done()
	}
	c := NewController(api, auth.Static("tok"))

	done := make(chan error, 1)
	go func() { done <- c.Enter(context.Background(), "g1") }()
	<-started
	c.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Enter did not return after Close")
	}
	if c.Model().Snapshot().Loaded {
		t.Fatalf("state published after close")
	}
	if _, err := c.Click(context.Background(), mustSquare(t, "e2")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("click after close = %v", err)
	}
	if err := c.Enter(context.Background(), "g1"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("enter after close = %v", err)
	}
}

func TestEnterNewGameDiscardsStaleFetch(t *testing.T) {
	api := openingAPI(t)
	b := api.game("g2")
	b.state = &chessdto.StateResponse{
		Board:       rawBoard(t, map[string]board.Piece{"a1": board.WhiteRook}),
		CurrentTurn: "black",
	}
	started := make(chan struct{})
	release := make(chan struct{})
	api.stateHook = func(_ context.Context, gameID string) {
		if gameID == "g1" {
			close(started)
			<-release
		}
	}
	c := NewController(api, auth.Static("tok"))
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Enter(context.Background(), "g1") }()
	<-started

	if err := c.Enter(context.Background(), "g2"); err != nil {
		t.Fatalf("Enter g2: %v", err)
	}
	close(release)
	<-done

	snap := c.Model().Snapshot()
	if snap.GameID != "g2" || snap.Turn != Black || snap.Board[7][0] != board.WhiteRook {
		t.Fatalf("stale result leaked into new session: %+v", snap)
	}
	if !snap.Board[6][4].Empty() {
		t.Fatalf("g1 board leaked")
	}
}

func TestCancelSelection(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	c.CancelSelection()
	if c.Model().Snapshot().Selection != nil {
		t.Fatalf("selection not cleared")
	}
	if out, _ := c.Click(ctx, mustSquare(t, "e4")); out != OutcomeSelected {
		t.Fatalf("after cancel the next click selects, got %v", out)
	}
}

func TestEnterRequiresGameID(t *testing.T) {
	c := NewController(newFakeAPI(), auth.Static("tok"))
	defer c.Close()
	if err := c.Enter(context.Background(), "  "); !errors.Is(err, ErrNoGame) {
		t.Fatalf("err = %v", err)
	}
	if _, err := c.Click(context.Background(), board.Square{File: 'e', Rank: '2'}); !errors.Is(err, ErrNoGame) {
		t.Fatalf("click without game = %v", err)
	}
}

func TestReloadIssuedBeforeMoveDoesNotRollBack(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	if err := c.Enter(ctx, "g1"); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	api.stateHook = func(context.Context, string) {
		close(started)
		<-release
	}
	done := make(chan error, 1)
	go func() { done <- c.Reload(ctx) }()
	<-started

	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	if out, err := c.Click(ctx, mustSquare(t, "e4")); err != nil || out != OutcomeMove {
		t.Fatalf("move = %v, %v", out, err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Reload: %v", err)
	}

	snap := c.Model().Snapshot()
	if snap.Turn != Black || snap.Board[4][4] != board.WhitePawn || !snap.Board[6][4].Empty() {
		t.Fatalf("pre-move state replaced the applied move: turn=%s board=%v", snap.Turn, snap.Board)
	}
	if snap.LastMove == nil || snap.LastMove.String() != "e2e4" {
		t.Fatalf("last move = %v", snap.LastMove)
	}
}

func TestReloadAfterMoveIsPublished(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()
	_ = c.Enter(ctx, "g1")
	_, _ = c.Click(ctx, mustSquare(t, "e2"))
	_, _ = c.Click(ctx, mustSquare(t, "e4"))

	api.game("g1").state = &chessdto.StateResponse{
		Board:       rawBoard(t, map[string]board.Piece{"e4": board.WhitePawn, "e5": board.BlackPawn}),
		CurrentTurn: "white",
	}
	if err := c.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap := c.Model().Snapshot(); snap.Turn != White || snap.Board[3][4] != board.BlackPawn {
		t.Fatalf("fresh state not published: %+v", snap)
	}
}

func TestEnterFinishedGameLocksBoard(t *testing.T) {
	api := openingAPI(t)
	api.game("g1").state.Result = strPtr("black")
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	ctx := context.Background()

	if err := c.Enter(ctx, "g1"); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if snap := c.Model().Snapshot(); !snap.Finished() || snap.Result != ResultBlack {
		t.Fatalf("result not taken from state: %+v", snap)
	}
	if out, err := c.Click(ctx, mustSquare(t, "e2")); out != OutcomeIgnored || !errors.Is(err, ErrGameFinished) {
		t.Fatalf("click on finished game = %v, %v", out, err)
	}
	if api.moveCount() != 0 {
		t.Fatalf("no move may be submitted")
	}
}

// holdMove blocks the fake's move endpoint until the returned release is
// called, and returns once the submission has reached it.
func holdMove(t *testing.T, api *fakeAPI, c *Controller) (release func(), result <-chan error) {
	t.Helper()
	entered := make(chan struct{})
	gate := make(chan struct{})
	api.moveHook = func(context.Context) {
		close(entered)
		<-gate
	}
	ctx := context.Background()
	if _, err := c.Click(ctx, mustSquare(t, "e2")); err != nil {
		t.Fatalf("select: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := c.Click(ctx, mustSquare(t, "e4"))
		done <- err
	}()
	<-entered
	return func() { close(gate) }, done
}

func TestMoveResultAfterEnterNewGameIsDiscarded(t *testing.T) {
	api := openingAPI(t)
	g2 := api.game("g2")
	g2.state = &chessdto.StateResponse{
		Board:       rawBoard(t, map[string]board.Piece{"a1": board.WhiteRook}),
		CurrentTurn: "white",
	}
	c := NewController(api, auth.Static("tok"))
	defer c.Close()
	_ = c.Enter(context.Background(), "g1")

	release, result := holdMove(t, api, c)
	if err := c.Enter(context.Background(), "g2"); err != nil {
		t.Fatalf("Enter g2: %v", err)
	}
	before := c.Model().Snapshot()
	release()

	if err := <-result; !errors.Is(err, ErrStaleSession) {
		t.Fatalf("late move result err = %v", err)
	}
	after := c.Model().Snapshot()
	if after.Version != before.Version || after.GameID != "g2" || after.LastMove != nil {
		t.Fatalf("g2 snapshot mutated by g1 move: %+v", after)
	}
	if after.Turn != White || after.Board[7][0] != board.WhiteRook || !after.Board[4][4].Empty() {
		t.Fatalf("g1 board leaked into g2: %v", after.Board)
	}
}

func TestMoveResultAfterCloseIsDiscarded(t *testing.T) {
	api := openingAPI(t)
	c := NewController(api, auth.Static("tok"))
	_ = c.Enter(context.Background(), "g1")

	release, result := holdMove(t, api, c)
	c.Close()
	before := c.Model().Snapshot()
	release()

	if err := <-result; !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("late move result err = %v", err)
	}
	after := c.Model().Snapshot()
	if after.Version != before.Version || after.LastMove != nil || after.Turn != White {
		t.Fatalf("snapshot mutated after close: %+v", after)
	}
	if after.Board[6][4] != board.WhitePawn {
		t.Fatalf("board changed after close")
	}
}
