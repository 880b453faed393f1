package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/observability"
)

// requestLogger logs each request and fires the HTTP observability hooks.
// The route pattern (not the raw path) goes to the hooks so metric labels
// stay bounded.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.Round(time.Millisecond))

		observability.HTTP().OnResponse(r.Context(), r.Method, pattern, ww.Status(), duration)
	})
}

// cachedResponse is the stored form of a memoized GET response.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// cacheResponse memoizes successful GET responses under a key derived from
// the snapshot hash and the request URI. Mutations change the snapshot
// hash, so stale entries are never served; the TTL only bounds growth.
func (s *Server) cacheResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := s.result(r.Context())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		key := s.keyer.HTTPKey(res.SnapshotHash, r.URL.RequestURI())

		if data, hit, err := s.httpCache.Get(r.Context(), key); err == nil && hit {
			var stored cachedResponse
			if json.Unmarshal(data, &stored) == nil {
				observability.Cache().OnCacheHit(r.Context(), "http")
				w.Header().Set("Content-Type", stored.ContentType)
				w.Write(stored.Body)
				return
			}
		}
		observability.Cache().OnCacheMiss(r.Context(), "http")

		var buf bytes.Buffer
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&buf)
		next.ServeHTTP(ww, r)

		if ww.Status() != http.StatusOK {
			return
		}
		data, err := json.Marshal(cachedResponse{
			ContentType: ww.Header().Get("Content-Type"),
			Body:        buf.Bytes(),
		})
		if err != nil {
			return
		}
		if s.httpCache.Set(r.Context(), key, data, cache.TTLHTTP) == nil {
			observability.Cache().OnCacheSet(r.Context(), "http", len(data))
		}
	})
}
