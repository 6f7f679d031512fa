package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/observation/internal/suspect"
	"github.com/vango-dev/observation/pkg/observation"
)

const writeWait = 10 * time.Second

// handleWatch streams a suspect's report as text frames. A frame is sent on
// connect and after every change to a property the previous render read.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sus, ok := s.lookup(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("watch started", "id", sus.ID())
	defer s.logger.Info("watch stopped", "id", sus.ID())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					s.logger.Debug("watch read error", "id", sus.ID(), "error", err)
				}
				return
			}
		}
	}()

	s.watchLoop(r.Context(), conn, sus, closed)
}

// watchLoop renders under one tracking scope per frame. Each render is an
// observation.track span parented on the request.
func (s *Server) watchLoop(ctx context.Context, conn *websocket.Conn, sus *suspect.Suspect, closed <-chan struct{}) {
	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-changed:
		default:
		}

		var (
			report string
			obs    *observation.Observation
		)
		stable := sus.Stable(func() {
			obs = observation.TrackContext(ctx, func(context.Context) {
				report = sus.Report()
			}, signal)
		})
		if !stable {
			// The render overlapped a mutation and may hold a value that is
			// about to be replaced; render again after this frame.
			signal()
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(report)); err != nil {
			obs.Cancel()
			s.logger.Debug("watch write error", "id", sus.ID(), "error", err)
			return
		}

		select {
		case <-changed:
			obs.Cancel()
		case <-closed:
			obs.Cancel()
			return
		case <-ctx.Done():
			obs.Cancel()
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}
