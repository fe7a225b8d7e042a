// Package server exposes a forecasting session over HTTP with SSE and
// WebSocket chart feeds.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

// Config controls the service runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int

	// Heartbeat is the interval between keep-alive frames on open streams.
	Heartbeat time.Duration
}

// Event is emitted for every payload the session renders.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   chart.Payload `json:"payload"`
}

// Event types.
const (
	EventPayload  = "payload"
	EventSnapshot = "snapshot"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRenderAt    time.Time `json:"last_render_at"`
	RenderCount     int64     `json:"render_count"`
	Seq             uint64    `json:"seq"`
	Strategy        string    `json:"strategy"`
	Period          int       `json:"period"`
	Points          int       `json:"points"`
	Confidence      string    `json:"confidence"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service renders session payloads into an event feed and serves the HTTP API.
// It implements chart.Renderer.
type Service struct {
	cfg  Config
	sess *workbench.Session
	log  *zap.Logger

	upgrader websocket.Upgrader

	mu           sync.RWMutex
	startedAt    time.Time
	lastRenderAt time.Time
	renderCount  int64
	nextEventID  int64
	events       []Event
	subs         map[string]chan Event
}

// New returns a service bound to sess and attaches it as a renderer.
func New(cfg Config, sess *workbench.Session, log *zap.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		sess:      sess,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[string]chan Event),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	sess.Attach(s)
	return s
}

// Render publishes p to the event ring and every subscriber.
func (s *Service) Render(p chart.Payload) error {
	now := time.Now()

	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      EventPayload,
		Timestamp: now,
		Payload:   p,
	}
	s.lastRenderAt = now
	s.renderCount++
	s.mu.Unlock()

	s.publishEvent(ev)
	return nil
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	// A lagging subscriber loses its oldest queued event, never the newest.
	for id, ch := range s.subs {
		for sent := false; !sent; {
			select {
			case ch <- ev:
				sent = true
				continue
			default:
			}
			select {
			case old := <-ch:
				s.log.Debug("subscriber lagging, oldest event dropped",
					zap.String("subscriber", id), zap.Int64("event", old.ID))
			default:
			}
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	snap := s.sess.Snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastRenderAt:    s.lastRenderAt,
		RenderCount:     s.renderCount,
		Seq:             snap.Seq,
		Strategy:        snap.Result.Strategy,
		Period:          snap.Result.Period,
		Points:          snap.State.Len(),
		Confidence:      snap.Result.Confidence(),
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if snap.Result.Err != nil {
		st.LastError = snap.Result.Err.Error()
	}
	return st
}

func (s *Service) currentEvent() Event {
	return Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Payload:   s.sess.Snapshot().Payload,
	}
}

func (s *Service) addSubscriber(ch chan Event) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
