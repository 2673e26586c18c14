package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/akolanti/DocsBot/internal/adapter"
	"github.com/akolanti/DocsBot/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateContext(ctx context.Context) bool {
	logRH.With("traceId:", ctx.Value(config.TRACE_ID_KEY).(string))
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, threadID string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(threadID, error, httpCode))
}

func contextWithTrace(traceID string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceID)
	return context.WithTimeout(ctx, timeout)
}
