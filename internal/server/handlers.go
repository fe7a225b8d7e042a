package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

const maxBody = 1 << 20

// Command is one edit to the session, accepted as a JSON body or a
// WebSocket frame.
type Command struct {
	Op       string `json:"op"`
	Field    string `json:"field,omitempty"`
	Index    int    `json:"index,omitempty"`
	Value    any    `json:"value,omitempty"`
	Name     string `json:"name,omitempty"`
	Degree   *int   `json:"degree,omitempty"`
	Label    string `json:"label,omitempty"`
	Revenue  any    `json:"revenue,omitempty"`
	Expenses any    `json:"expenses,omitempty"`
}

// Command ops.
const (
	OpSet      = "set"
	OpPeriod   = "period"
	OpStrategy = "strategy"
	OpAppend   = "append"
	OpDrop     = "drop"
)

var ErrUnknownOp = errors.New("unknown op")

// Apply runs c against the session.
func (s *Service) Apply(c Command) (workbench.Snapshot, error) {
	switch strings.ToLower(c.Op) {
	case OpSet:
		f, err := workbench.ParseField(c.Field)
		if err != nil {
			return s.sess.Snapshot(), err
		}
		return s.sess.SetValue(f, c.Index, c.Value)
	case OpPeriod:
		return s.sess.SetPeriod(c.Value)
	case OpStrategy:
		degree := -1
		if c.Degree != nil {
			degree = *c.Degree
		}
		return s.sess.SetStrategy(c.Name, degree)
	case OpAppend:
		return s.sess.Append(c.Label, c.Revenue, c.Expenses)
	case OpDrop:
		return s.sess.Drop()
	}
	return s.sess.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownOp, c.Op)
}

// StateView is the JSON form of a session snapshot.
type StateView struct {
	Seq     uint64          `json:"seq"`
	State   workbench.State `json:"state"`
	Result  forecast.Result `json:"result"`
	Payload chart.Payload   `json:"payload"`
}

func viewOf(snap workbench.Snapshot) StateView {
	return StateView{Seq: snap.Seq, State: snap.State, Result: snap.Result, Payload: snap.Payload}
}

// ForecastRequest is the body of the stateless POST /v1/forecast.
type ForecastRequest struct {
	Labels   []string `json:"labels"`
	Revenue  []any    `json:"revenue"`
	Expenses []any    `json:"expenses"`
	Period   any      `json:"period"`
	Strategy string   `json:"strategy"`
	Degree   *int     `json:"degree"`
}

// ForecastResponse is returned by POST /v1/forecast.
type ForecastResponse struct {
	Result  forecast.Result `json:"result"`
	Payload chart.Payload   `json:"payload"`
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	v1.HandleFunc("/payload", s.handlePayload).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	v1.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	v1.HandleFunc("/series/{field}/{index:[0-9]+}", s.handleSetValue).Methods(http.MethodPut)
	v1.HandleFunc("/period", s.handleSetPeriod).Methods(http.MethodPut)
	v1.HandleFunc("/strategy", s.handleSetStrategy).Methods(http.MethodPut)
	v1.HandleFunc("/points", s.handleAppend).Methods(http.MethodPost)
	v1.HandleFunc("/points/last", s.handleDrop).Methods(http.MethodDelete)
	v1.HandleFunc("/commands", s.handleCommand).Methods(http.MethodPost)
	v1.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodPost)
	return r
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.sess.Snapshot()))
}

func (s *Service) handlePayload(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot().Payload)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var after int64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("after: %w", err))
			return
		}
		after = n
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > after {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleSetValue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Value any `json:"value"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.Apply(Command{Op: OpSet, Field: vars["field"], Index: idx, Value: body.Value})
	s.respond(w, snap, err)
}

func (s *Service) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value any `json:"value"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.Apply(Command{Op: OpPeriod, Value: body.Value})
	s.respond(w, snap, err)
}

func (s *Service) handleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Degree *int   `json:"degree"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.Apply(Command{Op: OpStrategy, Name: body.Name, Degree: body.Degree})
	s.respond(w, snap, err)
}

func (s *Service) handleAppend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Label    string `json:"label"`
		Revenue  any    `json:"revenue"`
		Expenses any    `json:"expenses"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.Apply(Command{Op: OpAppend, Label: body.Label, Revenue: body.Revenue, Expenses: body.Expenses})
	if err != nil {
		s.respond(w, snap, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(snap))
}

func (s *Service) handleDrop(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.Apply(Command{Op: OpDrop})
	s.respond(w, snap, err)
}

func (s *Service) handleCommand(w http.ResponseWriter, r *http.Request) {
	var c Command
	if !s.decode(w, r, &c) {
		return
	}
	snap, err := s.Apply(c)
	s.respond(w, snap, err)
}

func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if !s.decode(w, r, &req) {
		return
	}

	st := workbench.State{
		Labels:   req.Labels,
		Revenue:  forecast.CoerceAll(req.Revenue),
		Expenses: forecast.CoerceAll(req.Expenses),
		Strategy: req.Strategy,
		Degree:   forecast.DefaultDegree,
	}
	if req.Degree != nil {
		st.Degree = *req.Degree
	}
	if _, err := forecast.New(st.Strategy, st.Degree); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Period == nil {
		st.Period = 1
	} else {
		p, err := forecast.ParsePeriod(req.Period)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		st.Period = p
	}

	res, payload := workbench.Compute(st)
	writeJSON(w, http.StatusOK, ForecastResponse{Result: res, Payload: payload})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return false
	}
	return true
}

func (s *Service) respond(w http.ResponseWriter, snap workbench.Snapshot, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(snap))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workbench.ErrIndex):
		return http.StatusNotFound
	case errors.Is(err, workbench.ErrLastPoint):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
