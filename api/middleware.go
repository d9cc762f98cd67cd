package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/matink112/TradeEngine/engine"
	"github.com/matink112/TradeEngine/logging"
	"github.com/matink112/TradeEngine/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const correlationIDKey contextKey = "correlation_id"

// correlationIDMiddleware adds a correlation ID to each request for tracing
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = logging.NewCorrelationID()
		}

		w.Header().Set("X-Correlation-ID", correlationID)
		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID extracts correlation ID from request context
func GetCorrelationID(r *http.Request) string {
	if correlationID, ok := r.Context().Value(correlationIDKey).(string); ok {
		return correlationID
	}
	return ""
}

// abortOnInvariantViolation recovers only to classify the panic. An engine
// invariant violation means the book can no longer be trusted, so the
// process aborts instead of serving further requests from corrupted state.
// Everything else re-panics for chi's Recoverer to turn into a 500.
func abortOnInvariantViolation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if violation, ok := rec.(engine.InvariantViolation); ok {
					logging.GetLogger().WithFields(logrus.Fields{
						"event":          "invariant_violation",
						"error":          violation.Error(),
						"path":           r.URL.Path,
						"correlation_id": GetCorrelationID(r),
						"stack":          string(debug.Stack()),
					}).Fatal("Order book invariant violated, aborting")
				}
				panic(rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}
