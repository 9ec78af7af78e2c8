package credentials

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no credential stored")

// Provider hands out the token attached to every Booking Service request.
// Invalidate is called by the transport with the token the service answered
// 401 to; a token stored since then is left alone.
type Provider interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Invalidate(ctx context.Context, rejected string)
	OnInvalidate(fn func())
}

// Store persists a single token.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

type manager struct {
	store Store
	now   func() time.Time

	writeMu sync.Mutex

	mu        sync.Mutex
	listeners []func()
}

func NewProvider(store Store) Provider {
	return &manager{store: store, now: time.Now}
}

func (m *manager) Get(ctx context.Context) (string, bool) {
	token, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			log.Printf("[Credentials] load failed: %v", err)
		}
		return "", false
	}
	if expired(token, m.now()) {
		log.Println("[Credentials] stored token expired, clearing")
		m.Invalidate(ctx, token)
		return "", false
	}
	return token, true
}

func (m *manager) Set(ctx context.Context, token string) error {
	if token == "" {
		return m.Clear(ctx)
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.store.Save(ctx, token)
}

func (m *manager) Clear(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.store.Delete(ctx)
}

func (m *manager) Invalidate(ctx context.Context, rejected string) {
	m.writeMu.Lock()
	current, err := m.store.Load(ctx)
	switch {
	case err != nil && !errors.Is(err, ErrNoToken):
		m.writeMu.Unlock()
		log.Printf("[Credentials] load on invalidate failed: %v", err)
		return
	case current != rejected:
		m.writeMu.Unlock()
		log.Println("[Credentials] rejected token already replaced, keeping the stored one")
		return
	case current != "":
		if err := m.store.Delete(ctx); err != nil {
			log.Printf("[Credentials] clear on invalidate failed: %v", err)
		}
	}
	m.writeMu.Unlock()

	m.mu.Lock()
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (m *manager) OnInvalidate(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// expired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never expire locally; the service decides.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
