package chesspresenter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/internal/msgcat"
	"github.com/park285/chess-session-client/internal/session"
	"github.com/park285/chess-session-client/pkg/chessdto"
)

func TestHeaderWaitingAndResolved(t *testing.T) {
	f := NewFormatter(nil)
	s := session.Snapshot{White: &session.Player{Name: "alice", Rating: 1500}}
	if got := f.Header(s); got != "alice (1500) vs Waiting..." {
		t.Fatalf("header = %q", got)
	}
}

func TestStatusPrecedence(t *testing.T) {
	f := NewFormatter(nil)
	e2, _ := board.ParseSquare("e2")
	e4, _ := board.ParseSquare("e4")

	cases := []struct {
		name string
		snap session.Snapshot
		want string
	}{
		{"loading", session.Snapshot{GameID: "g1"}, "Loading game g1..."},
		{"turn", session.Snapshot{Loaded: true, Turn: session.White}, "Turn: white"},
		{"selected", session.Snapshot{Loaded: true, Selection: &e2}, "Selected e2"},
		{"pending", session.Snapshot{Loaded: true, Pending: true, Selection: &e4}, "Submitting move..."},
		{"draw", session.Snapshot{Loaded: true, Pending: true, Result: session.ResultDraw}, "Draw"},
		{"other", session.Snapshot{Result: "aborted"}, "Game over: aborted"},
	}
	for _, tc := range cases {
		if got := f.Status(tc.snap); got != tc.want {
			t.Fatalf("%s: status = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestErrorMapping(t *testing.T) {
	f := NewFormatter(nil)
	unauth := fmt.Errorf("%w: %w", session.ErrUnauthenticated, &chessdto.APIError{Status: 401})
	if got := f.Error(unauth, "e2e4"); !strings.HasPrefix(got, "Not signed in") {
		t.Fatalf("unauthenticated = %q", got)
	}
	rejected := &chessdto.APIError{Status: 400, Detail: "illegal move"}
	if got := f.Error(rejected, "e2e5"); got != "Move e2e5 rejected: illegal move" {
		t.Fatalf("rejected = %q", got)
	}
	if got := f.Error(rejected, ""); got != "Could not load game" {
		t.Fatalf("fetch = %q", got)
	}
	if got := f.Error(session.ErrSameSquare, "e2e2"); got != "Move e2e2 starts and ends on the same square" {
		t.Fatalf("same square = %q", got)
	}
	if f.Error(nil, "") != "" {
		t.Fatalf("nil error should be blank")
	}
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte("result:\n  draw: \"Remis\"\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	cat, err := msgcat.New(dir)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if got := NewFormatter(cat).Result(session.ResultDraw); got != "Remis" {
		t.Fatalf("override not applied: %q", got)
	}
}
