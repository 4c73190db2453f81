package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/auth"
)

// Logger logs each request once it has been served. Server errors are logged
// at warn level so they show up without -v.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event := log.Debug()
		if ww.Status() >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("Contact API request")
	})
}

// AllowSubnet rejects connections whose source address is outside allowedNet.
// It checks RemoteAddr, so it must run before RealIP rewrites it. A nil
// network allows everything.
func AllowSubnet(allowedNet *net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if allowedNet == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r.RemoteAddr)
			if ip == nil || !allowedNet.Contains(ip) {
				log.Warn().
					Str("remote_addr", r.RemoteAddr).
					Str("allowed_subnet", allowedNet.String()).
					Msg("Rejected contact API connection from outside the allowed subnet")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP parses "host:port" or a bare address, nil when neither parses
func remoteIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(addr)
}

// APIKey is a middleware that requires a key matching the bcrypt hash.
// The key is read from "Authorization: Bearer", the X-API-Key header or the
// api_key query parameter. An empty hash disables the check.
func APIKey(hash string) func(http.Handler) http.Handler {
	// last key that passed the bcrypt check
	var (
		mu       sync.RWMutex
		accepted []byte
	)

	valid := func(key string) bool {
		mu.RLock()
		known := accepted
		mu.RUnlock()
		if known != nil && subtle.ConstantTimeCompare(known, []byte(key)) == 1 {
			return true
		}

		if !auth.CheckAPIKey(key, hash) {
			return false
		}
		mu.Lock()
		accepted = []byte(key)
		mu.Unlock()
		return true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := requestAPIKey(r)
			if key == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "API key required", http.StatusUnauthorized)
				return
			}

			if !valid(key) {
				log.Warn().
					Str("remote_addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("Request rejected: invalid API key")
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestAPIKey(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return r.URL.Query().Get("api_key")
}
