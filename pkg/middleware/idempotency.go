package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	Stop() // Stop cleanup goroutines and release resources
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.RWMutex
	store    map[string]*CachedResponse
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*CachedResponse),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup(cleanupInterval(ttl))

	return store
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl > 0 && ttl < time.Hour {
		return ttl
	}
	return time.Hour
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(response.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false
	}

	return response, true
}

func (s *InMemoryIdempotencyStore) Set(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = response
}

func (s *InMemoryIdempotencyStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if time.Since(response.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// bufferedResponse records a handler's response so it can be replayed to
// the leader and to every request that waited on the same key.
type bufferedResponse struct {
	header     http.Header
	statusCode int
	wroteCode  bool
	body       bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (br *bufferedResponse) Header() http.Header {
	return br.header
}

func (br *bufferedResponse) WriteHeader(statusCode int) {
	if br.wroteCode {
		return
	}
	br.statusCode = statusCode
	br.wroteCode = true
}

func (br *bufferedResponse) Write(b []byte) (int, error) {
	br.wroteCode = true
	return br.body.Write(b)
}

func (br *bufferedResponse) cached() *CachedResponse {
	return &CachedResponse{
		StatusCode: br.statusCode,
		Headers:    br.header.Clone(),
		Body:       bytes.Clone(br.body.Bytes()),
	}
}

// Idempotency replays the stored 2xx response for a repeated key instead of
// running the handler again. Keys are scoped to method and path. Requests
// that arrive while the first request for their key is still running wait
// for it and receive its response, whatever its status.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyKeyHeader
	}
	var inFlight singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := extractIdempotencyKey(r, headerName)

			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if handleCachedResponse(w, store, idempotencyKey) {
				return
			}

			executed := false
			result, _, _ := inFlight.Do(idempotencyKey, func() (any, error) {
				// a leader may have finished between the lookup above and Do
				if cached, found := store.Get(idempotencyKey); found {
					return cached, nil
				}
				executed = true
				buffered := newBufferedResponse()
				next.ServeHTTP(buffered, r)
				response := buffered.cached()
				if shouldCacheResponse(response.StatusCode) {
					store.Set(idempotencyKey, response)
				}
				return response, nil
			})

			writeResponse(w, result.(*CachedResponse), !executed)
		})
	}
}

func extractIdempotencyKey(r *http.Request, headerName string) string {
	key := r.Header.Get(headerName)
	if key == "" {
		return ""
	}
	return r.Method + " " + r.URL.Path + " " + key
}

func handleCachedResponse(w http.ResponseWriter, store IdempotencyStore, key string) bool {
	cached, found := store.Get(key)
	if !found {
		return false
	}

	writeResponse(w, cached, true)
	return true
}

func writeResponse(w http.ResponseWriter, response *CachedResponse, replayed bool) {
	for key, values := range response.Headers {
		if key == RequestIDHeader {
			continue
		}
		w.Header()[key] = append([]string(nil), values...)
	}
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}
	w.WriteHeader(response.StatusCode)
	_, _ = w.Write(response.Body)
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
