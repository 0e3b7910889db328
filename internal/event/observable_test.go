package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnFireDispose(t *testing.T) {
	var o Observable
	var got []string
	dispose := o.On("moving", func(e Event) { got = append(got, e.Name+":"+e.Payload.(string)) })

	o.Fire("moving", Event{Payload: "a"})
	o.Fire("scaling", Event{Payload: "b"})
	dispose()
	o.Fire("moving", Event{Payload: "c"})

	assert.Equal(t, []string{"moving:a"}, got)
	assert.False(t, o.HasListeners("moving"))
}

func TestOnce(t *testing.T) {
	var o Observable
	calls := 0
	o.Once("added", func(Event) { calls++ })
	o.Fire("added", Event{})
	o.Fire("added", Event{})
	assert.Equal(t, 1, calls)
}

func TestHandlerMayUnsubscribeDuringFire(t *testing.T) {
	var o Observable
	calls := 0
	var dispose func()
	dispose = o.On("x", func(Event) { calls++; dispose() })
	o.On("x", func(Event) { calls++ })
	o.Fire("x", Event{})
	o.Fire("x", Event{})
	assert.Equal(t, 3, calls)
}

func TestOff(t *testing.T) {
	var o Observable
	o.On("a", func(Event) {})
	o.On("b", func(Event) {})
	o.Off("a")
	assert.False(t, o.HasListeners("a"))
	assert.True(t, o.HasListeners("b"))
	o.Off("")
	assert.False(t, o.HasListeners("b"))
}
