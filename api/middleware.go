package api

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	maxRequests    = 100             // Maximum requests per window
	windowDuration = time.Minute * 5 // Window duration
)

// RateLimiter tracks request counts per client over a sliding window.
// Requests carrying a configured API key bypass the limit.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string]*clientRequests
	keys     map[string]bool
}

type clientRequests struct {
	count    int
	lastSeen time.Time
}

func NewRateLimiter(apiKeys []string) *RateLimiter {
	l := &RateLimiter{
		requests: make(map[string]*clientRequests),
		keys:     make(map[string]bool),
	}
	for _, key := range apiKeys {
		if key != "" {
			l.keys[key] = true
		}
	}
	return l
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check for API key in Authorization header
		if apiKey := r.Header.Get("Authorization"); apiKey != "" && l.keys[apiKey] {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := r.RemoteAddr

		l.mu.Lock()
		defer l.mu.Unlock()

		// Clean up old entries
		now := time.Now()
		for ip, req := range l.requests {
			if now.Sub(req.lastSeen) > windowDuration {
				delete(l.requests, ip)
			}
		}

		client, exists := l.requests[clientIP]
		if !exists {
			client = &clientRequests{lastSeen: now}
			l.requests[clientIP] = client
		}

		// Check if window has expired
		if now.Sub(client.lastSeen) > windowDuration {
			client.count = 0
			client.lastSeen = now
		}

		if client.count >= maxRequests {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", client.lastSeen.Add(windowDuration).Format(time.RFC3339))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		client.count++
		client.lastSeen = now

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(maxRequests-client.count))
		w.Header().Set("X-RateLimit-Reset", client.lastSeen.Add(windowDuration).Format(time.RFC3339))

		next.ServeHTTP(w, r)
	})
}

// RequestID tags every request with a short id for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log.Printf("[%s] %s %s from %s", id, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
