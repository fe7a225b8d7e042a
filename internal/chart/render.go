package chart

import "sync"

// Renderer draws a payload. Implementations must not retain the payload's
// slices past the call.
type Renderer interface {
	Render(Payload) error
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(Payload) error

// Render calls f(p).
func (f RenderFunc) Render(p Payload) error { return f(p) }

// Latest wraps a Renderer so that only payloads newer than the last one
// drawn reach it. Stale payloads are dropped silently.
type Latest struct {
	mu   sync.Mutex
	next Renderer
	seq  uint64
	set  bool
}

// NewLatest returns a last-writer-wins guard around next.
func NewLatest(next Renderer) *Latest {
	return &Latest{next: next}
}

// Render forwards p when p.Seq is newer than anything already forwarded.
func (l *Latest) Render(p Payload) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set && p.Seq <= l.seq {
		return nil
	}
	if err := l.next.Render(p); err != nil {
		return err
	}
	l.seq = p.Seq
	l.set = true
	return nil
}

// Seq returns the sequence number of the last payload drawn.
func (l *Latest) Seq() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq, l.set
}

// Fanout renders to every sink in order and returns the first error.
type Fanout []Renderer

// Render implements Renderer.
func (f Fanout) Render(p Payload) error {
	var first error
	for _, r := range f {
		if r == nil {
			continue
		}
		if err := r.Render(p); err != nil && first == nil {
			first = err
		}
	}
	return first
}
