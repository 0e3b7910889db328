package canvas

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs frame callbacks, the equivalent of requestAnimationFrame.
type Scheduler interface {
	// RequestFrame queues fn for the next frame and returns a cancel func.
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// ManualScheduler queues frames until Tick runs them. Tests and headless
// exports drive it directly.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID uint64
	queue  map[uint64]func(time.Time)
	order  []uint64
}

// NewManualScheduler returns an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{queue: make(map[uint64]func(time.Time))}
}

func (s *ManualScheduler) RequestFrame(fn func(now time.Time)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.queue[id] = fn
	s.order = append(s.order, id)
	return func() {
		s.mu.Lock()
		delete(s.queue, id)
		s.mu.Unlock()
	}
}

// Pending is the number of queued frame callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Tick runs the callbacks queued before the call. Callbacks requested while
// ticking wait for the next Tick.
func (s *ManualScheduler) Tick(now time.Time) int {
	s.mu.Lock()
	order := s.order
	s.order = nil
	var run []func(time.Time)
	for _, id := range order {
		if fn, ok := s.queue[id]; ok {
			run = append(run, fn)
			delete(s.queue, id)
		}
	}
	s.mu.Unlock()
	for _, fn := range run {
		fn(now)
	}
	return len(run)
}

// TickerScheduler runs frames on a fixed interval from Run's goroutine.
// Work that touches the canvas from elsewhere goes through Do so it runs
// on that same goroutine.
type TickerScheduler struct {
	Interval time.Duration

	frames *ManualScheduler
	work   chan func()
}

// NewTickerScheduler returns a scheduler ticking at interval, 60 Hz when
// interval is zero.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerScheduler{
		Interval: interval,
		frames:   NewManualScheduler(),
		work:     make(chan func(), 64),
	}
}

func (s *TickerScheduler) RequestFrame(fn func(now time.Time)) func() {
	return s.frames.RequestFrame(fn)
}

// Do queues fn to run on the loop goroutine. It blocks while the queue is
// full.
func (s *TickerScheduler) Do(fn func()) { s.work <- fn }

// Run drives frames and queued work until ctx is done.
func (s *TickerScheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.work:
			fn()
		case now := <-t.C:
			s.frames.Tick(now)
		}
	}
}
