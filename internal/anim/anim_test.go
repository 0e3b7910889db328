package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseEndpoints(t *testing.T) {
	names := []string{
		Linear, EaseInQuad, EaseOutQuad, EaseInOutQuad, EaseInCubic, EaseOutCubic,
		EaseInOutCubic, EaseInQuart, EaseOutQuart, EaseInOutQuart, EaseInQuint,
		EaseOutQuint, EaseInOutQuint, EaseInSine, EaseOutSine, EaseInOutSine,
		EaseInExpo, EaseOutExpo, EaseInOutExpo, EaseInCirc, EaseOutCirc, EaseInOutCirc,
		EaseInElastic, EaseOutElastic, EaseInBack, EaseOutBack, EaseInOutBack,
		EaseInBounce, EaseOutBounce, EaseInOutBounce,
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0, Ease(name, 0), 1e-9)
			assert.InDelta(t, 1, Ease(name, 1), 1e-9)
		})
	}
}

func TestAnimateRunsToCompletion(t *testing.T) {
	r := NewRegistry()
	var values []float64
	completed := -1.0
	r.Animate(Spec{
		StartValue: 0,
		EndValue:   100,
		Duration:   100 * time.Millisecond,
		OnChange:   func(v, _ float64) { values = append(values, v) },
		OnComplete: func(v float64) { completed = v },
	})

	start := time.Unix(0, 0)
	assert.True(t, r.Tick(start))
	assert.True(t, r.Tick(start.Add(50*time.Millisecond)))
	assert.False(t, r.Tick(start.Add(200*time.Millisecond)))

	assert.Equal(t, []float64{0, 50, 100}, values)
	assert.Equal(t, 100.0, completed)
	assert.Zero(t, r.Running())
}

func TestAbortStopsCallbacks(t *testing.T) {
	r := NewRegistry()
	calls := 0
	h := r.Animate(Spec{
		EndValue:   1,
		Duration:   time.Second,
		OnChange:   func(float64, float64) { calls++ },
		OnComplete: func(float64) { calls += 100 },
	})
	start := time.Unix(0, 0)
	r.Tick(start)
	h.Abort()
	r.Tick(start.Add(2 * time.Second))

	assert.Equal(t, 1, calls)
	assert.True(t, h.Done())
}

func TestAbortCallbackStopsSilently(t *testing.T) {
	r := NewRegistry()
	completed := false
	r.Animate(Spec{
		EndValue:   10,
		Duration:   time.Second,
		Abort:      func(v, _ float64) bool { return v > 4 },
		OnComplete: func(float64) { completed = true },
	})
	start := time.Unix(0, 0)
	r.Tick(start)
	r.Tick(start.Add(500 * time.Millisecond))
	r.Tick(start.Add(2 * time.Second))
	assert.False(t, completed)
	assert.Zero(t, r.Running())
}

func TestCancelByTarget(t *testing.T) {
	r := NewRegistry()
	a, b := new(int), new(int)
	r.Animate(Spec{Target: a, Duration: time.Second})
	r.Animate(Spec{Target: b, Duration: time.Second})
	r.Animate(Spec{Target: a, Duration: time.Second})

	assert.Equal(t, 2, r.CancelByTarget(a))
	assert.Equal(t, 1, r.Running())
}

func TestAnimateColor(t *testing.T) {
	r := NewRegistry()
	var last string
	r.AnimateColor(ColorSpec{
		StartValue: "#000000",
		EndValue:   "#ffffff",
		Duration:   time.Second,
		OnChange:   func(v string, _ float64) { last = v },
	})
	start := time.Unix(0, 0)
	r.Tick(start)
	require.Equal(t, "rgba(0,0,0,1)", last)
	r.Tick(start.Add(time.Second))
	assert.Equal(t, "rgba(255,255,255,1)", last)
}
