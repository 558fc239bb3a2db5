package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints each event before it is handled.
type EventLogger struct {
	*log.Logger
}

// NewEventLogger returns a new EventLogger which will write into the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{Logger: logger}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	named, ok := evt.Handler().(interface{ Name() string })
	if ok {
		h.Printf("%d, %s -> %s", evt.Time(), reflect.TypeOf(evt), named.Name())
	} else {
		h.Printf("%d, %s", evt.Time(), reflect.TypeOf(evt))
	}
}
