package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const requestIDHeader = "X-Request-ID"

// recoveryLogger adapts zerolog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	log zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(v...))
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	l := hlog.FromRequest(r)
	event := l.Info()
	if status >= http.StatusInternalServerError {
		event = l.Error()
	}
	event.
		Int("status", status).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("query", r.URL.RawQuery).
		Int("size", size).
		Dur("latency", d).
		Msg("request handled")
}

// Wrap puts the request pipeline around the router: CORS, a request scoped
// logger with a request id, the access log and panic recovery. It wraps the
// whole router so preflight and unmatched requests pass through it too.
func (h *Handler) Wrap(next http.Handler) http.Handler {
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: h.log}),
		handlers.PrintRecoveryStack(true),
	)(next)

	chain := hlog.NewHandler(h.log)(
		hlog.RequestIDHandler("request_id", requestIDHeader)(
			hlog.RemoteAddrHandler("ip")(
				hlog.UserAgentHandler("user_agent")(
					hlog.AccessHandler(accessLog)(recovered),
				),
			),
		),
	)

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Accept", "Content-Type", requestIDHeader}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)(chain)
}
