// Package auth supplies bearer credentials to the move path. Providers
// only read credentials; issuing them is the server's job.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// TokenProvider returns the current bearer token. An empty token with a
// nil error means no credential is available.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Func adapts a plain function to TokenProvider.
type Func func(ctx context.Context) (string, error)

func (f Func) Token(ctx context.Context) (string, error) { return f(ctx) }

// Static always yields the same token.
type Static string

func (s Static) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Env reads the token from an environment variable on every call.
type Env string

func (e Env) Token(context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(string(e))), nil
}

// File reads the token from a file on every call, so a login performed
// elsewhere is picked up without restarting. A missing file means no token.
type File string

func (f File) Token(context.Context) (string, error) {
	raw, err := os.ReadFile(string(f))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
