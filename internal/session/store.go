// Package session keeps the access/refresh token pair of a signed-in user.
//
// The web client stores tokens server side, keyed by an opaque session id held
// in a cookie, so every tab of one browser shares a single pair. The CLI keeps
// its pair in a local file. Presence of an access token is the only notion of
// "authenticated"; nothing here tracks expiry.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned by backends when a session id has no stored row.
var ErrNoSession = errors.New("session not found")

// Tokens is the stored pair. Empty strings mean absent.
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// TokenStore is the session context injected into the API client.
type TokenStore interface {
	Set(ctx context.Context, access, refresh string) error
	SetAccess(ctx context.Context, access string) error
	Access(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// Backend persists token pairs for many sessions.
type Backend interface {
	Load(ctx context.Context, sessionID string) (Tokens, error)
	Save(ctx context.Context, sessionID string, t Tokens) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Authenticated reports whether store currently holds an access token.
func Authenticated(ctx context.Context, store TokenStore) bool {
	if store == nil {
		return false
	}
	_, ok := store.Access(ctx)
	return ok
}

// Bind adapts one session row of backend to a TokenStore.
func Bind(backend Backend, sessionID string) TokenStore {
	return &bound{backend: backend, id: sessionID}
}

type bound struct {
	backend Backend
	id      string
}

func (b *bound) load(ctx context.Context) Tokens {
	t, err := b.backend.Load(ctx, b.id)
	if err != nil {
		return Tokens{}
	}
	return t
}

func (b *bound) Set(ctx context.Context, access, refresh string) error {
	return b.backend.Save(ctx, b.id, Tokens{Access: access, Refresh: refresh})
}

func (b *bound) SetAccess(ctx context.Context, access string) error {
	t := b.load(ctx)
	t.Access = access
	return b.backend.Save(ctx, b.id, t)
}

func (b *bound) Access(ctx context.Context) (string, bool) {
	t := b.load(ctx)
	return t.Access, t.Access != ""
}

func (b *bound) Refresh(ctx context.Context) (string, bool) {
	t := b.load(ctx)
	return t.Refresh, t.Refresh != ""
}

func (b *bound) Clear(ctx context.Context) error {
	return b.backend.Delete(ctx, b.id)
}
