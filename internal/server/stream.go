package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Frame is the wire format for WebSocket messages sent to clients.
type Frame struct {
	Type  string          `json:"type"` // payload, snapshot, state, error
	Event *Event          `json:"event,omitempty"`
	State *StateView      `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
	Echo  json.RawMessage `json:"echo,omitempty"`
}

const (
	wsWriteWait = 10 * time.Second
	wsReadLimit = 64 * 1024
)

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Current chart first so a new client can draw immediately.
	writeSSE(w, s.currentEvent())
	flusher.Flush()

	heartbeat := time.NewTicker(s.cfg.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// handleWebSocket pushes every event to the client and accepts Command frames
// in the other direction. Command results go back as "state" or "error"
// frames; the resulting chart update arrives as a regular payload frame.
func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	log := s.log.With(zap.String("subscriber", id))
	log.Debug("websocket connected")

	out := make(chan Frame, 16)
	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(done)
		s.readCommands(conn, out, stop, log)
	}()

	cur := s.currentEvent()
	if err := writeFrame(conn, Frame{Type: cur.Type, Event: &cur}); err != nil {
		return
	}

	heartbeat := time.NewTicker(s.cfg.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			log.Debug("websocket closed")
			return
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case ev := <-ch:
			if err := writeFrame(conn, Frame{Type: ev.Type, Event: &ev}); err != nil {
				return
			}
		case f := <-out:
			if err := writeFrame(conn, f); err != nil {
				return
			}
		}
	}
}

func (s *Service) readCommands(conn *websocket.Conn, out chan<- Frame, stop <-chan struct{}, log *zap.Logger) {
	conn.SetReadLimit(wsReadLimit)
	send := func(f Frame) bool {
		select {
		case out <- f:
			return true
		case <-stop:
			return false
		}
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var c Command
		if err := json.Unmarshal(msg, &c); err != nil {
			if !send(Frame{Type: "error", Error: fmt.Sprintf("invalid frame: %v", err)}) {
				return
			}
			continue
		}

		f := Frame{Type: "state", Echo: msg}
		if snap, err := s.Apply(c); err != nil {
			f.Type = "error"
			f.Error = err.Error()
		} else {
			view := viewOf(snap)
			f.State = &view
		}
		if !send(f) {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(f)
}
