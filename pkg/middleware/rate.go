// Package middleware provides HTTP middleware shared by every route group.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/response"
)

// bucket is a fixed-window request count for one client.
type bucket struct {
	count   int
	resetAt time.Time
}

// Limiter allows max requests per window per client IP.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
	trusted []netip.Prefix
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window, buckets: map[string]*bucket{}, now: time.Now}
}

// Allow records one request from key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	if len(l.buckets) > 10_000 {
		l.evict(now)
	}
	return b.count <= l.max
}

func (l *Limiter) evict(now time.Time) {
	for k, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, k)
		}
	}
}

// Middleware answers 429 once a client exceeds the limit. Only POSTs count,
// so the login and signup forms themselves always render.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		if ip := l.key(r); !l.Allow(ip) {
			logger.WithCtx(r.Context()).Warn("rate limited", "path", r.URL.Path, "ip", ip)
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TrustProxies makes the limiter honour X-Forwarded-For on requests whose
// peer matches one of proxies (addresses or CIDR ranges). Call it before
// serving.
func (l *Limiter) TrustProxies(proxies ...string) error {
	for _, raw := range proxies {
		p, err := parseProxy(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		l.trusted = append(l.trusted, p)
	}
	return nil
}

func parseProxy(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		return netip.ParsePrefix(s)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (l *Limiter) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// key is the address a request is counted under: the peer, or, when the
// peer is a trusted proxy, the nearest X-Forwarded-For hop that is not one.
func (l *Limiter) key(r *http.Request) string {
	ip := ClientIP(r)
	if !l.isTrusted(ip) {
		return ip
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		ip = hop
		if !l.isTrusted(hop) {
			break
		}
	}
	return ip
}

// ClientIP returns the peer address of r. Forwarded headers are ignored.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
