package session

import (
	"testing"

	"github.com/park285/chess-session-client/pkg/chessdto"
)

func TestSelectionMachine(t *testing.T) {
	var s Selection
	e2, e4 := mustSquare(t, "e2"), mustSquare(t, "e4")

	if _, ok := s.Current(); ok {
		t.Fatalf("zero value must be idle")
	}
	if out, _ := s.Click(e2); out != OutcomeSelected {
		t.Fatalf("idle click = %v", out)
	}
	if out, _ := s.Click(e2); out != OutcomeUnchanged {
		t.Fatalf("same-square click = %v", out)
	}
	if sq, ok := s.Current(); !ok || sq != e2 {
		t.Fatalf("selection after repeat = %v %v", sq, ok)
	}
	out, mv := s.Click(e4)
	if out != OutcomeMove || mv.Start != e2 || mv.End != e4 || mv.String() != "e2e4" {
		t.Fatalf("completing click = %v %v", out, mv)
	}
	s.Reset()
	if _, ok := s.Current(); ok || s.pointer() != nil {
		t.Fatalf("reset must return to idle")
	}
}

func TestDisplayModeCycle(t *testing.T) {
	d := NewDisplay(ParseDisplayMode("GREEN"))
	var got []DisplayMode
	unsub := d.Subscribe(func(m DisplayMode) { got = append(got, m) })

	if d.Cycle() != DisplayMono || d.Cycle() != DisplayClassic || d.Cycle() != DisplayGreen {
		t.Fatalf("unexpected cycle order")
	}
	unsub()
	d.Cycle()
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if ParseDisplayMode("neon") != DisplayClassic || DisplayMode(42).String() != "classic" {
		t.Fatalf("unknown modes must fall back to classic")
	}
}

func TestParseResultAndColor(t *testing.T) {
	if parseResult(nil) != ResultNone {
		t.Fatalf("nil result should be none")
	}
	if parseResult(strPtr(" Draw ")) != ResultDraw {
		t.Fatalf("draw not parsed")
	}
	if parseColor("BLACK") != Black {
		t.Fatalf("color not normalised")
	}
	if p := playerFromDTO(&chessdto.Player{Login: "x", Elo: 1}); p.Label() != "x (1)" {
		t.Fatalf("label = %q", p.Label())
	}
}

func TestSnapshotFEN(t *testing.T) {
	s := Snapshot{Turn: Black}
	if got := s.FEN(); got != "8/8/8/8/8/8/8/8 b - - 0 1" {
		t.Fatalf("FEN = %q", got)
	}
}
