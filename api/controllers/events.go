package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/wirebazaar/wirebazaar-backend/api/middleware"
	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/events"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

const defaultHeartbeat = 25 * time.Second

// EventSource is the subscription side of the change bus.
type EventSource interface {
	Subscribe(filter events.Filter) (<-chan events.Event, func())
}

// EventsStream pushes cart and catalog change signals as Server-Sent Events.
// Each event carries only its name; clients re-fetch what they display.
func EventsStream(src EventSource, heartbeat time.Duration, logg *logger.Logger) http.HandlerFunc {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if src == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event stream unavailable"))
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		ch, cancel := src.Subscribe(events.ForClient(middleware.ClientKeyFromContext(r.Context())))
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case evt, open := <-ch:
				if !open {
					return
				}
				fmt.Fprintf(w, "event: %s\ndata: {}\n\n", evt.Name)
				flusher.Flush()
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
