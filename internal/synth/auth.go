package synth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultRefreshCooldown is the minimum time between two credential
// refreshes unless a refresh is forced.
const DefaultRefreshCooldown = 30 * time.Second

// Refresher renegotiates transport credentials.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context) error

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

// RefreshGate throttles credential refreshes process-wide. One gate is
// shared by every worker that talks to the same service.
type RefreshGate struct {
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewRefreshGate creates a gate. A non-positive cooldown uses
// DefaultRefreshCooldown.
func NewRefreshGate(cooldown time.Duration) *RefreshGate {
	if cooldown <= 0 {
		cooldown = DefaultRefreshCooldown
	}
	return &RefreshGate{cooldown: cooldown, now: time.Now}
}

// Acquire reports whether a refresh may run now and, if so, records it.
// force bypasses the cooldown.
func (g *RefreshGate) Acquire(force bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !force && !g.last.IsZero() && now.Sub(g.last) < g.cooldown {
		return false
	}
	g.last = now
	return true
}

// Last returns the time of the last permitted refresh.
func (g *RefreshGate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// TokenSource holds a bearer token for the HTTP transport and exchanges an
// API key for a fresh one on Refresh.
type TokenSource struct {
	url    string
	apiKey string
	client *http.Client

	mu    sync.RWMutex
	token string
}

// NewTokenSource creates a token source. With an empty url, Refresh is a
// no-op and Token returns the static token.
func NewTokenSource(url, apiKey, staticToken string) *TokenSource {
	return &TokenSource{
		url:    url,
		apiKey: apiKey,
		token:  staticToken,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns the current token.
func (s *TokenSource) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Refresh implements Refresher.
func (s *TokenSource) Refresh(ctx context.Context) error {
	if s.url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("unable to build token request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request: %s", resp.Status)
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return fmt.Errorf("token request: empty token")
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}
