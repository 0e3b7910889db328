// Package anim runs frame-driven tweens. Animations advance only when the
// owner ticks the registry, once per rendered frame.
package anim

import (
	"sync"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/color"
)

// Spec describes a scalar tween.
type Spec struct {
	Target     any // used by CancelByTarget
	StartValue float64
	EndValue   float64
	Duration   time.Duration
	Easing     string

	// OnChange receives the eased value and linear progress every tick.
	OnChange func(value, progress float64)
	// OnComplete fires once with the end value.
	OnComplete func(value float64)
	// Abort is polled each tick; returning true stops the tween silently.
	Abort func(value, progress float64) bool
}

// ColorSpec describes a color tween.
type ColorSpec struct {
	Target     any
	StartValue string
	EndValue   string
	Duration   time.Duration
	Easing     string
	OnChange   func(value string, progress float64)
	OnComplete func(value string)
}

// Handle controls one running animation.
type Handle struct {
	target  any
	start   time.Time
	started bool
	aborted bool
	done    bool
	step    func(progress float64) bool // returns true when the caller aborted
	finish  func()
	dur     time.Duration
}

// Abort stops the animation before its next tick. No callback fires after it.
func (h *Handle) Abort() { h.aborted = true }

// Done reports whether the animation completed or was aborted.
func (h *Handle) Done() bool { return h.done || h.aborted }

// Registry holds the running animations.
type Registry struct {
	mu      sync.Mutex
	running []*Handle
}

func NewRegistry() *Registry { return &Registry{} }

// Animate registers a scalar tween. It starts on the next Tick.
func (r *Registry) Animate(s Spec) *Handle {
	h := &Handle{target: s.Target, dur: s.Duration}
	value := func(p float64) float64 {
		return s.StartValue + (s.EndValue-s.StartValue)*Ease(s.Easing, p)
	}
	h.step = func(p float64) bool {
		v := value(p)
		if s.Abort != nil && s.Abort(v, p) {
			return true
		}
		if s.OnChange != nil {
			s.OnChange(v, p)
		}
		return false
	}
	h.finish = func() {
		if s.OnComplete != nil {
			s.OnComplete(s.EndValue)
		}
	}
	r.add(h)
	return h
}

// AnimateColor registers a color tween interpolated in RGBA space.
func (r *Registry) AnimateColor(s ColorSpec) *Handle {
	from, to := color.Parse(s.StartValue), color.Parse(s.EndValue)
	h := &Handle{target: s.Target, dur: s.Duration}
	h.step = func(p float64) bool {
		if s.OnChange != nil {
			s.OnChange(from.Lerp(to, Ease(s.Easing, p)).ToRgba(), p)
		}
		return false
	}
	h.finish = func() {
		if s.OnComplete != nil {
			s.OnComplete(to.ToRgba())
		}
	}
	r.add(h)
	return h
}

func (r *Registry) add(h *Handle) {
	r.mu.Lock()
	r.running = append(r.running, h)
	r.mu.Unlock()
}

// Tick advances every animation to now and drops the finished ones. It
// reports whether any animation is still running.
func (r *Registry) Tick(now time.Time) bool {
	r.mu.Lock()
	handles := append([]*Handle(nil), r.running...)
	r.mu.Unlock()

	for _, h := range handles {
		if h.aborted || h.done {
			continue
		}
		if !h.started {
			h.start, h.started = now, true
		}
		progress := 1.0
		if h.dur > 0 {
			progress = min(1, float64(now.Sub(h.start))/float64(h.dur))
		}
		if h.step(progress) {
			h.aborted = true
			continue
		}
		if progress >= 1 {
			h.done = true
			h.finish()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.running[:0]
	for _, h := range r.running {
		if !h.Done() {
			kept = append(kept, h)
		}
	}
	clear(r.running[len(kept):])
	r.running = kept
	return len(kept) > 0
}

// Running returns the number of live animations.
func (r *Registry) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

// CancelAll aborts every animation.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.running {
		h.aborted = true
	}
	r.running = nil
}

// CancelByTarget aborts the animations registered for target.
func (r *Registry) CancelByTarget(target any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	kept := r.running[:0]
	for _, h := range r.running {
		if h.target == target {
			h.aborted = true
			n++
			continue
		}
		kept = append(kept, h)
	}
	clear(r.running[len(kept):])
	r.running = kept
	return n
}
