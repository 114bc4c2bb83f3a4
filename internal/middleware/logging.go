package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs one line per request with the chi request id.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		// Auth middleware further down the chain fills in holder.
		holder := &requestUser{}
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestUserKey, holder)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("user_id", holder.id).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type requestUser struct {
	id string
}

const requestUserKey contextKey = "request_user"

// noteUser records the authenticated user for the request log line.
func noteUser(ctx context.Context, userID string) {
	if holder, ok := ctx.Value(requestUserKey).(*requestUser); ok {
		holder.id = userID
	}
}
