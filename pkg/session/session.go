// Package session provides cookie-identified HTTP sessions stored in a
// cache.Store (Redis or memory).
//
// Usage (kernel):
//
//	m := session.NewManager(store, session.DefaultOptions())
//	r.Use(m.Middleware)
//
// Usage (handler):
//
//	sess := session.FromCtx(r.Context())
//	sess.Set("username", "admin")
//	sess.Flash("Order created successfully")
//
// Changes are persisted automatically just before the response headers go
// out, so handlers never call Save themselves.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/tailorshop/pkg/cache"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
)

const flashKey = "_flashes"

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "tailorshop_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// Session is the per-request handle. It is not shared between requests.
type Session struct {
	mu      sync.Mutex
	id      string
	staleID string
	data    map[string]interface{}
	changed bool
}

func newID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func key(id string) string { return "session:" + id }

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.changed = true
}

// Flash queues a one-shot message for the next rendered page.
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flashKey] = append(flashes(s.data[flashKey]), msg)
	s.changed = true
}

// Flashes returns and clears the queued messages.
func (s *Session) Flashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := flashes(s.data[flashKey])
	if len(out) > 0 {
		delete(s.data, flashKey)
		s.changed = true
	}
	return out
}

// flashes accepts both the in-memory []string and the []interface{} that
// comes back from JSON.
func flashes(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Renew moves the session to a fresh ID, keeping its data. Call it when the
// privilege level changes (login).
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleID == "" {
		s.staleID = s.id
	}
	s.id = newID()
	s.changed = true
}

// Clear drops all data. Flashes queued afterwards are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]interface{}{}
	s.changed = true
}

type ctxKey struct{}

// NewContext attaches sess to ctx. Tests use it to fake a signed-in request.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromCtx returns the request's session, or a detached empty one.
func FromCtx(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]interface{}{}}
}

// New returns an unsaved session holding data.
func New(data map[string]interface{}) *Session {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Session{id: newID(), data: data}
}

type Manager struct {
	store cache.Store
	opts  Options
}

func NewManager(store cache.Store, opts Options) *Manager {
	return &Manager{store: store, opts: opts}
}

func (m *Manager) load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return New(nil)
	}

	var data map[string]interface{}
	found, err := m.store.Get(r.Context(), key(cookie.Value), &data)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("session load failed", "driver", m.store.Driver(), "error", err)
	}
	if !found || data == nil {
		metrics.SessionLookups.WithLabelValues(m.store.Driver(), "miss").Inc()
		// Unknown IDs are never adopted.
		return New(nil)
	}
	metrics.SessionLookups.WithLabelValues(m.store.Driver(), "hit").Inc()
	return &Session{id: cookie.Value, data: data}
}

func (m *Manager) save(ctx context.Context, w http.ResponseWriter, s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.changed {
		return
	}

	if s.staleID != "" {
		if err := m.store.Del(ctx, key(s.staleID)); err != nil {
			logger.WithCtx(ctx).Warn("session delete failed", "error", err)
		}
		s.staleID = ""
	}
	if err := m.store.Set(ctx, key(s.id), s.data, m.opts.TTL); err != nil {
		logger.WithCtx(ctx).Error("session save failed", "driver", m.store.Driver(), "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    s.id,
		Path:     m.opts.Path,
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: m.opts.HTTPOnly,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	})
	s.changed = false
}

// Middleware loads the session, exposes it through the request context and
// persists it before the first byte of the response is written.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(r)
		ctx := NewContext(r.Context(), sess)

		sw := &savingWriter{ResponseWriter: w}
		sw.save = func() { m.save(ctx, w, sess) }

		next.ServeHTTP(sw, r.WithContext(ctx))
		sw.commit()
	})
}

type savingWriter struct {
	http.ResponseWriter
	once sync.Once
	save func()
}

func (w *savingWriter) commit() { w.once.Do(w.save) }

func (w *savingWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *savingWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}
