// Package middleware provides HTTP middleware shared by all routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationHeader is the request/response header carrying the id.
const CorrelationHeader = "X-Correlation-Id"

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Correlation assigns each request a correlation id, honoring one supplied
// by the client, and echoes it on the response. Error bodies include it so
// clients can quote it when reporting problems.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(CorrelationHeader, id)
		ctx := context.WithValue(r.Context(), correlationIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID returns the request's correlation id, or empty when the
// middleware did not run.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
