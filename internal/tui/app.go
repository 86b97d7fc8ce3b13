// Package tui is the interactive terminal front end of a session.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nsf/termbox-go"
	"go.uber.org/zap"

	"github.com/park285/chess-session-client/internal/adapter/chesspresenter"
	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/internal/render"
	"github.com/park285/chess-session-client/internal/session"
)

// Session is the part of session.Controller the terminal drives.
type Session interface {
	Model() *session.Model
	Enter(ctx context.Context, gameID string) error
	Reload(ctx context.Context) error
	ClickCell(ctx context.Context, row, col int) (session.Outcome, error)
	CancelSelection()
}

type App struct {
	sess      Session
	formatter *chesspresenter.Formatter
	renderer  *render.Renderer
	exportDir string
	logger    *zap.Logger
	layout    Layout

	// spawn runs blocking session calls off the event loop.
	spawn func(func())
	// wake asks the event loop to redraw; it must not block.
	wake func()

	mu      sync.Mutex
	message string
}

func New(sess Session, formatter *chesspresenter.Formatter, renderer *render.Renderer, exportDir string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatter == nil {
		formatter = chesspresenter.NewFormatter(nil)
	}
	if renderer == nil {
		renderer = render.New()
	}
	return &App{
		sess:      sess,
		formatter: formatter,
		renderer:  renderer,
		exportDir: exportDir,
		logger:    logger,
		layout:    DefaultLayout(),
		spawn:     func(fn func()) { go fn() },
		wake:      func() {},
	}
}

// Run takes over the terminal until the user quits or ctx ends.
func (a *App) Run(ctx context.Context, gameID string) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	quit := make(chan struct{})
	defer close(quit)

	// termbox.Interrupt blocks until PollEvent picks it up, so change
	// notifications only set a flag and a forwarder does the interrupt.
	signal := make(chan struct{}, 1)
	a.wake = func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	}
	go func() {
		for {
			select {
			case <-quit:
				return
			case <-parent.Done():
				termbox.Interrupt()
				return
			case <-signal:
				termbox.Interrupt()
			}
		}
	}()

	model := a.sess.Model()
	unsubModel := model.Subscribe(func(session.Snapshot) { a.wake() })
	defer unsubModel()
	unsubDisplay := model.Display().Subscribe(func(session.DisplayMode) { a.wake() })
	defer unsubDisplay()

	a.spawn(func() { a.report(a.sess.Enter(ctx, gameID), "") })

	for {
		if err := a.draw(); err != nil {
			return err
		}
		ev := termbox.PollEvent()
		if ctx.Err() != nil {
			return nil
		}
		switch ev.Type {
		case termbox.EventError:
			return fmt.Errorf("terminal event: %w", ev.Err)
		case termbox.EventKey:
			if a.handleKey(ctx, ev) {
				return nil
			}
		case termbox.EventMouse:
			a.handleMouse(ctx, ev)
		}
	}
}

func (a *App) draw() error {
	w, h := termbox.Size()
	return compose(a.currentView(), a.layout, w, h).flush()
}

func (a *App) currentView() view {
	model := a.sess.Model()
	snap := model.Snapshot()
	mode := model.Display().Mode()
	a.mu.Lock()
	msg := a.message
	a.mu.Unlock()
	return view{
		Snap:    snap,
		Mode:    mode,
		Header:  a.formatter.Header(snap),
		Status:  a.formatter.Status(snap),
		Message: msg,
		Help:    a.formatter.Help(mode),
	}
}

// handleKey reports whether the user asked to quit.
func (a *App) handleKey(ctx context.Context, ev termbox.Event) bool {
	switch {
	case ev.Key == termbox.KeyCtrlC || ev.Ch == 'q':
		return true
	case ev.Key == termbox.KeyEsc:
		a.sess.CancelSelection()
	case ev.Ch == 'd':
		a.sess.Model().Display().Cycle()
	case ev.Ch == 'r':
		a.setMessage("")
		a.spawn(func() { a.report(a.sess.Reload(ctx), "") })
	case ev.Ch == 'p':
		a.spawn(func() { a.export(ctx) })
	}
	return false
}

func (a *App) handleMouse(ctx context.Context, ev termbox.Event) {
	if ev.Key != termbox.MouseLeft {
		return
	}
	row, col, ok := a.layout.CellAt(ev.MouseX, ev.MouseY)
	if !ok {
		return
	}
	snap := a.sess.Model().Snapshot()
	if snap.Finished() || snap.Pending {
		return
	}
	a.spawn(func() {
		move := pendingMove(snap, row, col)
		_, err := a.sess.ClickCell(ctx, row, col)
		a.report(err, move)
	})
}

// pendingMove names the move a click at (row, col) would complete, or ""
// when the click only selects.
func pendingMove(snap session.Snapshot, row, col int) string {
	if snap.Selection == nil {
		return ""
	}
	end, err := board.SquareOf(row, col)
	if err != nil || end == *snap.Selection {
		return ""
	}
	return session.Move{Start: *snap.Selection, End: end}.String()
}

// sanitizeName keeps a game id usable as a file name.
func sanitizeName(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "game"
	}
	return string(out)
}

func (a *App) export(ctx context.Context) {
	model := a.sess.Model()
	snap := model.Snapshot()
	data, err := a.renderer.RenderPNG(ctx, snap, render.Options{
		Mode:   model.Display().Mode(),
		Header: a.formatter.Header(snap),
		Status: a.formatter.Status(snap),
	})
	if err != nil {
		a.logger.Warn("png_export_failed", zap.String("game_id", snap.GameID), zap.Error(err))
		a.setMessage(a.formatter.Error(err, ""))
		return
	}
	path := filepath.Join(a.exportDir, fmt.Sprintf("%s-%d.png", sanitizeName(snap.GameID), snap.Version))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.logger.Warn("png_export_failed", zap.String("path", path), zap.Error(err))
		a.setMessage(a.formatter.Error(err, ""))
		return
	}
	a.logger.Info("png_exported", zap.String("game_id", snap.GameID), zap.String("path", path))
	a.setMessage(a.formatter.Exported(path))
}

// report shows err as a catalog line; the raw error only goes to the log.
func (a *App) report(err error, move string) {
	if err == nil {
		if move != "" {
			a.setMessage("")
		}
		return
	}
	a.logger.Debug("tui_action_failed", zap.String("move", move), zap.Error(err))
	a.setMessage(a.formatter.Error(err, move))
}

func (a *App) setMessage(msg string) {
	a.mu.Lock()
	a.message = msg
	a.mu.Unlock()
	a.wake()
}

func (a *App) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}
