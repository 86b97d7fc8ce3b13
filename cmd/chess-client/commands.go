package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/park285/chess-session-client/internal/board"
	"github.com/park285/chess-session-client/internal/chessbuilder"
	appcfg "github.com/park285/chess-session-client/internal/config"
	"github.com/park285/chess-session-client/internal/obslog"
	"github.com/park285/chess-session-client/internal/render"
	"github.com/park285/chess-session-client/internal/session"
	"github.com/park285/chess-session-client/internal/tui"
)

type flags struct {
	configFile string
	baseURL    string
	gameID     string
	token      string
	authSource string
	display    string
	timeoutMS  int
	retry      int
	exportDir  string
	messages   string
}

// apply copies explicitly set flags over the loaded configuration.
func (f *flags) apply(fs *pflag.FlagSet, cfg *appcfg.AppConfig) {
	set := func(name string, fn func()) {
		if fl := fs.Lookup(name); fl != nil && fl.Changed {
			fn()
		}
	}
	set("base-url", func() { cfg.APIBaseURL = f.baseURL })
	set("game", func() { cfg.GameID = f.gameID })
	set("token", func() {
		cfg.AuthToken = f.token
		cfg.AuthSource = appcfg.AuthSourceStatic
	})
	set("auth-source", func() { cfg.AuthSource = f.authSource })
	set("display", func() { cfg.DisplayMode = f.display })
	set("timeout-ms", func() { cfg.HTTPTimeoutMS = f.timeoutMS })
	set("retry", func() { cfg.HTTPRetry = f.retry })
	set("export-dir", func() { cfg.ExportDir = f.exportDir })
	set("messages-dir", func() { cfg.MessagesDir = f.messages })
}

func newCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chess-client",
		Short:         "Terminal client for a remote chess game server.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
	}

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	pfs.StringVarP(&f.configFile, "config", "c", "", "YAML config file (env: CHESS_CONFIG_FILE)")
	pfs.StringVar(&f.baseURL, "base-url", "", "chess server base URL (env: CHESS_API_BASE_URL)")
	pfs.StringVarP(&f.gameID, "game", "g", "", "game identifier (env: CHESS_GAME_ID)")
	pfs.StringVarP(&f.token, "token", "t", "", "bearer token, implies --auth-source static (env: CHESS_AUTH_TOKEN)")
	pfs.StringVar(&f.authSource, "auth-source", "", "env, file, redis or static (env: CHESS_AUTH_SOURCE)")
	pfs.StringVar(&f.display, "display", "", "classic, green or mono (env: CHESS_DISPLAY_MODE)")
	pfs.IntVar(&f.timeoutMS, "timeout-ms", 0, "per-request timeout in milliseconds (env: CHESS_HTTP_TIMEOUT_MS)")
	pfs.IntVar(&f.retry, "retry", 0, "retries for read requests (env: CHESS_HTTP_RETRY)")
	pfs.StringVar(&f.exportDir, "export-dir", "", "directory for exported PNGs (env: CHESS_EXPORT_DIR)")
	pfs.StringVar(&f.messages, "messages-dir", "", "directory of YAML message overrides (env: CHESS_MESSAGES_DIR)")

	cmd.AddCommand(
		newPlayCmd(f),
		newStateCmd(f),
		newMoveCmd(f),
		newRenderCmd(f),
		newCheckCmd(f),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("chess-client v{{.Version}}\n")

	return cmd
}

// runtime is what every subcommand needs once configuration is resolved.
type runtime struct {
	cfg    *appcfg.AppConfig
	deps   *chessbuilder.Deps
	logger *zap.Logger
	gameID string
}

func setup(cmd *cobra.Command, f *flags, args []string, logOpts ...obslog.Option) (*runtime, error) {
	cfg, err := appcfg.Load(f.configFile)
	if err != nil {
		return nil, err
	}
	f.apply(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := obslog.InitFromEnv(logOpts...); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := obslog.L()

	gameID := cfg.GameID
	if len(args) > 0 {
		gameID = args[0]
	}
	if strings.TrimSpace(gameID) == "" {
		return nil, errors.New("a game id is required (argument, --game or CHESS_GAME_ID)")
	}

	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, deps: deps, logger: logger, gameID: gameID}, nil
}

func (r *runtime) close() {
	if err := r.deps.Close(); err != nil {
		r.logger.Warn("shutdown_failed", zap.Error(err))
	}
	_ = r.logger.Sync()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newPlayCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "play [game-id]",
		Short: "Open the interactive board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, f, args, obslog.WithoutConsole())
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			app := tui.New(rt.deps.Controller, rt.deps.Formatter, rt.deps.Renderer, rt.cfg.ExportDir, rt.logger)
			return app.Run(ctx, rt.gameID)
		},
	}
}

func newStateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "state [game-id]",
		Short: "Print the current board, players and turn",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, f, args)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			if err := rt.deps.Controller.Enter(ctx, rt.gameID); err != nil {
				rt.logger.Warn("state_incomplete", zap.String("game_id", rt.gameID), zap.Error(err))
			}
			printSnapshot(cmd.OutOrStdout(), rt, rt.deps.Controller.Model().Snapshot())
			return nil
		},
	}
}

func newMoveCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "move <start> <end>",
		Short: "Submit one move, e.g. move e2 e4",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mv, err := moveFromArgs(args[0], args[1])
			if err != nil && !errors.Is(err, session.ErrSameSquare) {
				return err
			}
			rt, serr := setup(cmd, f, nil)
			if serr != nil {
				return serr
			}
			defer rt.close()
			if err != nil {
				return errors.New(rt.deps.Formatter.Error(err, mv.String()))
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			ctrl := rt.deps.Controller
			if err := ctrl.Enter(ctx, rt.gameID); err != nil {
				rt.logger.Warn("state_incomplete", zap.String("game_id", rt.gameID), zap.Error(err))
			}
			for _, sq := range []board.Square{mv.Start, mv.End} {
				if _, err := ctrl.Click(ctx, sq); err != nil {
					return errors.New(rt.deps.Formatter.Error(err, mv.String()))
				}
			}
			printSnapshot(cmd.OutOrStdout(), rt, ctrl.Model().Snapshot())
			return nil
		},
	}
}

// moveFromArgs parses the two squares of a move. A move onto its own
// square is returned alongside ErrSameSquare.
func moveFromArgs(start, end string) (session.Move, error) {
	from, err := board.ParseSquare(start)
	if err != nil {
		return session.Move{}, err
	}
	to, err := board.ParseSquare(end)
	if err != nil {
		return session.Move{}, err
	}
	mv := session.Move{Start: from, End: to}
	if from == to {
		return mv, session.ErrSameSquare
	}
	return mv, nil
}

func newRenderCmd(f *flags) *cobra.Command {
	var out string
	c := &cobra.Command{
		Use:   "render [game-id]",
		Short: "Write the current board as a PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, f, args)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			ctrl := rt.deps.Controller
			if err := ctrl.Enter(ctx, rt.gameID); err != nil {
				rt.logger.Warn("state_incomplete", zap.String("game_id", rt.gameID), zap.Error(err))
			}
			snap := ctrl.Model().Snapshot()
			data, err := rt.deps.Renderer.RenderPNG(ctx, snap, render.Options{
				Mode:   ctrl.Model().Display().Mode(),
				Header: rt.deps.Formatter.Header(snap),
				Status: rt.deps.Formatter.Status(snap),
			})
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(rt.cfg.ExportDir, rt.gameID+".png")
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write png: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.deps.Formatter.Exported(out))
			return nil
		},
	}
	c.Flags().StringVarP(&out, "out", "o", "", "output file (default <export-dir>/<game-id>.png)")
	return c
}

func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [game-id]",
		Short: "Probe the server and the credential source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, f, args)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			w := cmd.OutOrStdout()

			started := time.Now()
			st, err := rt.deps.Client.State(ctx, rt.gameID)
			if err != nil {
				fmt.Fprintf(w, "state error: %v\n", err)
			} else {
				fmt.Fprintf(w, "state ok: turn=%s rows=%d in %s\n", st.CurrentTurn, len(st.Board), time.Since(started).Round(time.Millisecond))
			}

			tok, terr := rt.deps.Tokens.Token(ctx)
			switch {
			case terr != nil:
				fmt.Fprintf(w, "auth error: %v\n", terr)
			case tok == "":
				fmt.Fprintln(w, "auth: no token, moves will be refused")
			default:
				fmt.Fprintf(w, "auth ok: source=%s\n", rt.cfg.AuthSource)
			}
			return errors.Join(err, terr)
		},
	}
}

func printSnapshot(w io.Writer, rt *runtime, snap session.Snapshot) {
	fmt.Fprintln(w, rt.deps.Formatter.Header(snap))
	fmt.Fprintln(w, rt.deps.Formatter.Status(snap))
	for row := 0; row < board.Size; row++ {
		var sb strings.Builder
		sb.WriteRune(rune('0' + board.Size - row))
		sb.WriteByte(' ')
		for col := 0; col < board.Size; col++ {
			sq, _ := board.SquareOf(row, col)
			p := snap.Board.At(sq)
			switch {
			case !p.Empty():
				sb.WriteRune(p.Glyph())
			case sq.Light():
				sb.WriteRune('.')
			default:
				sb.WriteRune(':')
			}
			sb.WriteByte(' ')
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
	fmt.Fprintln(w, "  a b c d e f g h")
	fmt.Fprintln(w, "FEN:", snap.FEN())
}
