package sim

// TickEvent is a generic event that almost all the component can use to
// update their status.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, t VTime) TickEvent {
	return TickEvent{EventBase: MakeEventBase(t, handler)}
}

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	// Tick returns true if the ticker made progress and should tick again.
	Tick() bool
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	handler   Handler
	Freq      Freq
	Engine    Engine
	secondary bool

	scheduled    bool
	nextTickTime VTime
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(handler Handler, engine Engine, freq Freq) *TickScheduler {
	return &TickScheduler{
		handler: handler,
		Engine:  engine,
		Freq:    freq,
	}
}

// NewSecondaryTickScheduler creates a scheduler that always schedule secondary
// tick events, so that they run after the primary events of the same time.
func NewSecondaryTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	t := NewTickScheduler(handler, engine, freq)
	t.secondary = true

	return t
}

// TickNow schedule a Tick event at the current time.
func (t *TickScheduler) TickNow() {
	t.scheduleAt(t.Freq.ThisTick(t.CurrentTime()))
}

// TickLater will schedule a tick event at the cycle after the now time.
func (t *TickScheduler) TickLater() {
	t.scheduleAt(t.Freq.NextTick(t.CurrentTime()))
}

func (t *TickScheduler) scheduleAt(time VTime) {
	if t.scheduled && t.nextTickTime >= time {
		return
	}

	t.scheduled = true
	t.nextTickTime = time

	tick := MakeTickEvent(t.handler, time)
	tick.secondary = t.secondary
	t.Engine.Schedule(tick)
}

// CurrentTime returns the time of the engine.
func (t *TickScheduler) CurrentTime() VTime {
	return t.Engine.CurrentTime()
}

// TickingComponent is a type of component that update states from cycle to
// cycle. A programmer would only need to program a tick function for a ticking
// component.
type TickingComponent struct {
	*TickScheduler

	name   string
	ticker Ticker
}

// NewTickingComponent creates a new ticking component
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{
		name:   name,
		ticker: ticker,
	}
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)

	return tc
}

// NewSecondaryTickingComponent creates a ticking component whose ticks run
// after the primary events of the same time.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := NewTickingComponent(name, engine, freq, ticker)
	tc.TickScheduler.secondary = true

	return tc
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Handle triggers the tick function of the TickingComponent
func (c *TickingComponent) Handle(_ Event) error {
	madeProgress := c.ticker.Tick()
	if madeProgress {
		c.TickLater()
	}

	return nil
}
