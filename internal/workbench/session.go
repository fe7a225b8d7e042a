package workbench

import (
	"sync"

	"go.uber.org/zap"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/dataset"
	"github.com/theirongolddev/pnlcast/internal/forecast"
)

// Snapshot is a consistent view of a session after one edit.
type Snapshot struct {
	Seq     uint64
	State   State
	Result  forecast.Result
	Payload chart.Payload
}

// Session serializes edits to a State. Each accepted edit gets the next
// sequence number, is recomputed from scratch and pushed to every attached
// renderer. Renderers only ever see newer payloads than the last one they drew.
type Session struct {
	mu    sync.Mutex
	state State
	seq   uint64
	snap  Snapshot
	sinks []*chart.Latest

	log *zap.Logger
}

// NewSession starts a session at st. r may be nil.
func NewSession(st State, r chart.Renderer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{state: st.Clone(), log: log}
	s.snap = s.computeLocked()
	if r != nil {
		s.Attach(r)
	}
	return s
}

// Attach adds a renderer and draws the current snapshot to it.
func (s *Session) Attach(r chart.Renderer) {
	l := chart.NewLatest(r)

	s.mu.Lock()
	s.sinks = append(s.sinks, l)
	snap := s.snap
	s.mu.Unlock()

	if err := l.Render(snap.Payload); err != nil {
		s.log.Warn("initial render failed", zap.Error(err))
	}
}

// Snapshot returns the latest computed view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetValue edits one cell of revenue, expenses or labels.
func (s *Session) SetValue(f Field, i int, raw any) (Snapshot, error) {
	return s.apply("set value", func(st State) (State, error) {
		return st.WithValue(f, i, raw)
	})
}

// SetPeriod changes the horizon. Invalid input is rejected and nothing is
// recomputed.
func (s *Session) SetPeriod(raw any) (Snapshot, error) {
	return s.apply("set period", func(st State) (State, error) {
		return st.WithPeriod(raw)
	})
}

// SetStrategy switches the fit strategy.
func (s *Session) SetStrategy(name string, degree int) (Snapshot, error) {
	return s.apply("set strategy", func(st State) (State, error) {
		return st.WithStrategy(name, degree)
	})
}

// Append adds a row at the end.
func (s *Session) Append(label string, revenue, expenses any) (Snapshot, error) {
	return s.apply("append point", func(st State) (State, error) {
		return st.Append(label, revenue, expenses), nil
	})
}

// Drop removes the last row.
func (s *Session) Drop() (Snapshot, error) {
	return s.apply("drop point", func(st State) (State, error) {
		return st.Drop()
	})
}

// Load replaces the series with d, keeping strategy and, unless d carries
// one, the horizon.
func (s *Session) Load(d dataset.Dataset) (Snapshot, error) {
	return s.apply("load dataset", func(st State) (State, error) {
		return FromDataset(d, st.Strategy, st.Degree, st.Period), nil
	})
}

// Replace swaps in a whole new state.
func (s *Session) Replace(next State) (Snapshot, error) {
	return s.apply("replace state", func(State) (State, error) {
		return next.Clone(), nil
	})
}

func (s *Session) apply(op string, edit func(State) (State, error)) (Snapshot, error) {
	s.mu.Lock()
	next, err := edit(s.state)
	if err != nil {
		snap := s.snap
		s.mu.Unlock()
		s.log.Debug("edit rejected", zap.String("op", op), zap.Error(err))
		return snap, err
	}
	s.state = next
	s.seq++
	snap := s.computeLocked()
	s.snap = snap
	sinks := append([]*chart.Latest(nil), s.sinks...)
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("op", op),
		zap.Uint64("seq", snap.Seq),
		zap.String("strategy", snap.Result.Strategy),
		zap.Int("period", snap.Result.Period),
	}
	if snap.Result.Err != nil {
		s.log.Info("forecast degraded", append(fields, zap.Error(snap.Result.Err))...)
	} else {
		s.log.Debug("forecast recomputed", append(fields,
			zap.Float64("r2", snap.Result.RSquared),
			zap.Bool("degenerate", snap.Result.Degenerate))...)
	}

	for _, l := range sinks {
		if err := l.Render(snap.Payload); err != nil {
			s.log.Warn("render failed", zap.Uint64("seq", snap.Seq), zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Session) computeLocked() Snapshot {
	res, payload := Compute(s.state)
	payload.Seq = s.seq
	return Snapshot{
		Seq:     s.seq,
		State:   s.state.Clone(),
		Result:  res,
		Payload: payload,
	}
}
