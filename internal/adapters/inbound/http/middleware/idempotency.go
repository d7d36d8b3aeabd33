package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/idempotency"
	"github.com/architeacher/connectors/pkg/logger"
)

// Idempotency replays the stored response of a node execution submitted
// again under the same key. It is mounted on the execute route only: the
// scope comes from the {node} URL parameter and the credential named in the
// body. Replays with a different body are rejected with 422.
func Idempotency(cache ports.IdempotencyCache, cfg config.Idempotency, maxBodyBytes int64, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(cfg.HeaderName)
			if !cfg.Enabled || key == "" {
				next.ServeHTTP(w, r)

				return
			}

			if err := idempotency.Validate(key); err != nil {
				WriteError(w, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", err.Error())

				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				WriteError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")

				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			var target struct {
				Credential string `json:"credential"`
			}

			// Malformed bodies are left to the handler to reject.
			_ = json.Unmarshal(body, &target)

			ctx := r.Context()
			reqLogger := log.WithContext(ctx)
			cacheKey := idempotency.BuildCacheKey(idempotency.Scope{
				Node:       chi.URLParam(r, "node"),
				Credential: target.Credential,
			}, key)
			fingerprint := idempotency.Fingerprint(body)

			degrade := func(err error, msg string) {
				reqLogger.Warn().Err(err).Msg(msg)

				if cfg.GracefulDegraded {
					next.ServeHTTP(w, r)

					return
				}

				WriteError(w, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "idempotency service temporarily unavailable")
			}

			cached, err := cache.Get(ctx, cacheKey)
			if err != nil {
				degrade(err, "idempotency lookup failed")

				return
			}

			if cached != nil {
				if cached.Fingerprint != fingerprint {
					WriteError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", idempotency.ErrKeyReused.Error())

					return
				}

				writeCachedResponse(w, cfg, cached)

				return
			}

			acquired, err := cache.SetLock(ctx, cacheKey, cfg.LockTTL)
			if err != nil {
				degrade(err, "idempotency lock failed")

				return
			}

			if !acquired {
				WriteError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is already being processed")

				return
			}

			// The outcome is stored even if the caller went away meanwhile.
			storeCtx := context.WithoutCancel(ctx)

			defer func() {
				if err := cache.ReleaseLock(storeCtx, cacheKey); err != nil {
					reqLogger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release lock")
				}
			}()

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r.WithContext(idempotency.WithKey(ctx, key)))

			// Only completed runs are replayed; failures may be retried.
			if recorder.statusCode < http.StatusOK || recorder.statusCode >= http.StatusMultipleChoices {
				return
			}

			response := &ports.CachedResponse{
				StatusCode:  recorder.statusCode,
				Headers:     recorder.capturedHeaders(),
				Body:        recorder.body.Bytes(),
				Fingerprint: fingerprint,
				CreatedAt:   time.Now().UTC(),
			}

			if err := cache.Set(storeCtx, cacheKey, response, cfg.CacheTTL); err != nil {
				reqLogger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store response")
			}
		})
	}
}

func writeCachedResponse(w http.ResponseWriter, cfg config.Idempotency, cached *ports.CachedResponse) {
	for key, value := range cached.Headers {
		w.Header().Set(key, value)
	}

	w.Header().Set(cfg.ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

type responseRecorder struct {
	*statusRecorder
	body *bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{statusRecorder: newStatusRecorder(w), body: &bytes.Buffer{}}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)

	return r.statusRecorder.Write(b)
}

func (r *responseRecorder) capturedHeaders() map[string]string {
	headers := make(map[string]string)

	for key, values := range r.Header() {
		if len(values) > 0 && key != RequestIDHeader {
			headers[key] = values[0]
		}
	}

	return headers
}
