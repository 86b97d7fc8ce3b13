// Package chessbuilder assembles a session client from configuration.
package chessbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-session-client/internal/adapter/chesspresenter"
	"github.com/park285/chess-session-client/internal/auth"
	"github.com/park285/chess-session-client/internal/chessapi"
	"github.com/park285/chess-session-client/internal/config"
	"github.com/park285/chess-session-client/internal/msgcat"
	"github.com/park285/chess-session-client/internal/render"
	"github.com/park285/chess-session-client/internal/session"
)

type Deps struct {
	Client     *chessapi.Client
	Tokens     auth.TokenProvider
	Controller *session.Controller
	Formatter  *chesspresenter.Formatter
	Renderer   *render.Renderer

	redis *redis.Client
}

// Option adjusts construction, mainly for tests.
type Option func(*options)

type options struct {
	clientOpts []chessapi.Option
}

// WithClientOptions appends options to the REST client.
func WithClientOptions(opts ...chessapi.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

func New(cfg *config.AppConfig, logger *zap.Logger, opts ...Option) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := append([]chessapi.Option{
		chessapi.WithTimeout(cfg.HTTPTimeout()),
		chessapi.WithRetry(cfg.HTTPRetry),
		chessapi.WithLogger(logger),
	}, o.clientOpts...)
	client := chessapi.NewClient(cfg.APIBaseURL, clientOpts...)

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("init messages: %w", err)
	}

	deps := &Deps{
		Client:    client,
		Formatter: chesspresenter.NewFormatter(cat),
		Renderer:  render.New(),
	}
	if err := deps.buildTokens(cfg, logger); err != nil {
		return nil, err
	}
	deps.Controller = session.NewController(client, deps.Tokens,
		session.WithLogger(logger),
		session.WithDisplayMode(session.ParseDisplayMode(cfg.DisplayMode)),
	)
	return deps, nil
}

func (d *Deps) buildTokens(cfg *config.AppConfig, logger *zap.Logger) error {
	switch strings.ToLower(strings.TrimSpace(cfg.AuthSource)) {
	case config.AuthSourceStatic:
		d.Tokens = auth.Static(cfg.AuthToken)
	case config.AuthSourceFile:
		d.Tokens = auth.File(cfg.AuthTokenFile)
	case config.AuthSourceRedis:
		ropts, err := auth.ParseRedisURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		d.redis = redis.NewClient(ropts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := d.redis.Ping(ctx).Err(); err != nil {
			// Tokens are read per move; the store may come up later.
			logger.Warn("auth_redis_unreachable", zap.String("addr", ropts.Addr), zap.Error(err))
		}
		d.Tokens = auth.NewRedisToken(d.redis, cfg.AuthUser)
	default:
		if strings.TrimSpace(cfg.AuthToken) != "" {
			d.Tokens = auth.Static(cfg.AuthToken)
		} else {
			d.Tokens = auth.Env("CHESS_AUTH_TOKEN")
		}
	}
	return nil
}

// Close ends the session and releases the token store.
func (d *Deps) Close() error {
	if d.Controller != nil {
		d.Controller.Close()
	}
	if d.redis != nil {
		return d.redis.Close()
	}
	return nil
}
