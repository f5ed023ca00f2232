package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pcoutinho/legal-management/pkg/logger"
)

const TraceIDHeader = "X-Trace-ID"

// TraceID attaches a trace id to the request logger, generating one when the
// caller did not supply it.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set(TraceIDHeader, traceID)
		ctx := logger.With(r.Context(), "trace_id", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
