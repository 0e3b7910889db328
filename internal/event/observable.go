// Package event provides the publish/subscribe primitive shared by scene
// objects and the canvas.
package event

// Event is delivered to handlers. Payload carries the event specific data
// (a transform session, a layout context, the input event and so on).
type Event struct {
	Name    string
	Target  any
	Payload any
}

// Handler receives fired events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
	once    bool
}

// Observable keeps named handler lists. The zero value is ready to use.
// It is not safe for concurrent use; the scene runs on a single goroutine.
type Observable struct {
	handlers map[string][]subscription
	nextID   uint64
}

// On registers h for name and returns a function removing it.
func (o *Observable) On(name string, h Handler) func() {
	return o.add(name, h, false)
}

// Once registers h for a single delivery.
func (o *Observable) Once(name string, h Handler) func() {
	return o.add(name, h, true)
}

func (o *Observable) add(name string, h Handler, once bool) func() {
	if o.handlers == nil {
		o.handlers = make(map[string][]subscription)
	}
	o.nextID++
	id := o.nextID
	o.handlers[name] = append(o.handlers[name], subscription{id: id, handler: h, once: once})
	return func() { o.remove(name, id) }
}

func (o *Observable) remove(name string, id uint64) {
	subs := o.handlers[name]
	for i, s := range subs {
		if s.id == id {
			o.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Off removes every handler for name, or all handlers when name is empty.
func (o *Observable) Off(name string) {
	if name == "" {
		o.handlers = nil
		return
	}
	delete(o.handlers, name)
}

// Fire delivers an event to the handlers registered for name.
func (o *Observable) Fire(name string, e Event) {
	subs := o.handlers[name]
	if len(subs) == 0 {
		return
	}
	e.Name = name
	snapshot := append([]subscription(nil), subs...)
	for _, s := range snapshot {
		if s.once {
			o.remove(name, s.id)
		}
		s.handler(e)
	}
}

// HasListeners reports whether anything listens to name.
func (o *Observable) HasListeners(name string) bool {
	return len(o.handlers[name]) > 0
}
