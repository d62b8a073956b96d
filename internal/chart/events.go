package chart

// EventType identifies different chart events.
type EventType int

const (
	EventRangeChanged EventType = iota
	EventSeriesChanged
	EventOverlayChanged
	EventToolChanged
	EventReadout
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers an event listener for the specified event type.
func (c *Chart) On(event EventType, listener EventListener) {
	c.listeners[event] = append(c.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (c *Chart) Emit(event EventType, data interface{}) {
	for _, listener := range c.listeners[event] {
		listener(data)
	}
}
