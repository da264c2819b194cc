package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxTrackedClients bounds the limiter's memory; the bucket closest to expiry
// is evicted when a new client arrives at the cap.
const maxTrackedClients = 4096

// withLoginRateLimit throttles credential submissions per client address.
// Only POST requests to the login and register forms count. Forwarding
// headers are consulted only when trustProxy is set.
func withLoginRateLimit(limiter *rateLimiter, trustProxy bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || (r.URL.Path != "/login" && r.URL.Path != "/register") {
			next.ServeHTTP(w, r)
			return
		}
		allowed, reset := limiter.Allow(clientIP(r, trustProxy), time.Now())
		if !allowed {
			retryAfter := int(time.Until(reset).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type rateLimiter struct {
	mu     sync.Mutex
	hits   map[string]rateBucket
	limit  int
	window time.Duration
}

type rateBucket struct {
	count int
	reset time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		hits:   make(map[string]rateBucket),
		limit:  limit,
		window: window,
	}
}

// Allow counts a hit for key and reports whether it is within the limit,
// together with the end of the current window.
func (l *rateLimiter) Allow(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.hits[key]
	if !ok || now.After(bucket.reset) {
		if !ok && len(l.hits) >= maxTrackedClients {
			l.evict(now)
		}
		bucket = rateBucket{reset: now.Add(l.window)}
	}
	if bucket.count >= l.limit {
		l.hits[key] = bucket
		return false, bucket.reset
	}
	bucket.count++
	l.hits[key] = bucket
	return true, bucket.reset
}

// evict drops expired buckets, or the one closest to expiry when none has.
func (l *rateLimiter) evict(now time.Time) {
	var oldest string
	var oldestReset time.Time
	for k, b := range l.hits {
		if now.After(b.reset) {
			delete(l.hits, k)
			continue
		}
		if oldest == "" || b.reset.Before(oldestReset) {
			oldest, oldestReset = k, b.reset
		}
	}
	if len(l.hits) >= maxTrackedClients && oldest != "" {
		delete(l.hits, oldest)
	}
}

// Len returns the number of tracked clients.
func (l *rateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// clientIP keys the limiter. RemoteAddr is authoritative unless the server
// sits behind a proxy that sets X-Forwarded-For or X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
				return ip
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if strings.TrimSpace(r.RemoteAddr) != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
