package workload

import (
	"fmt"
	"log"

	"github.com/sarchlab/memhier/mem/mem"
	"github.com/sarchlab/memhier/sim"
)

// Memory is what the replayer sends requests to.
type Memory interface {
	Access(addr, writeData uint32, ctrl mem.AccessControl) (uint32, error)
	HandlePeriodicTick()
}

// A Result is a replayed memory request and the word it returned.
type Result struct {
	Request  Request
	ReadData uint32
}

// Replayer is a component that issues one trace request per cycle.
type Replayer struct {
	*sim.TickingComponent

	memory        Memory
	requests      []Request
	next          int
	recordResults bool
	results       []Result
	err           error
}

// Enqueue appends requests to replay.
func (r *Replayer) Enqueue(requests ...Request) {
	r.requests = append(r.requests, requests...)
}

// Start schedules the first request at the current time.
func (r *Replayer) Start() {
	r.TickNow()
}

// Tick issues the next request. It stops at the first failing request.
func (r *Replayer) Tick() bool {
	if r.err != nil || r.next >= len(r.requests) {
		return false
	}

	req := r.requests[r.next]
	r.next++

	if req.Kind == KindInterrupt {
		r.memory.HandlePeriodicTick()
		return true
	}

	data, err := r.memory.Access(req.Address, req.Value, req.Control())
	if err != nil {
		r.err = fmt.Errorf("%s: line %d: %w", r.Name(), req.Line, err)
		return false
	}

	if r.recordResults {
		r.results = append(r.results, Result{Request: req, ReadData: data})
	}

	return true
}

// Done tells if every request has been issued.
func (r *Replayer) Done() bool {
	return r.next >= len(r.requests)
}

// Err returns the error that stopped the replay, if any.
func (r *Replayer) Err() error {
	return r.err
}

// Results returns the memory requests replayed so far with their read data.
// It is empty unless the replayer was built to record results.
func (r *Replayer) Results() []Result {
	return r.results
}

// Builder can build replayers.
type Builder struct {
	engine        sim.Engine
	freq          sim.Freq
	memory        Memory
	recordResults bool
}

// MakeBuilder returns a Builder for a 1 GHz replayer.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets how many requests are issued per second.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMemory sets the memory to replay on.
func (b Builder) WithMemory(memory Memory) Builder {
	b.memory = memory
	return b
}

// WithResultRecording makes the replayer keep every replayed request with its
// read data.
func (b Builder) WithResultRecording() Builder {
	b.recordResults = true
	return b
}

// Build creates a replayer.
func (b Builder) Build(name string) *Replayer {
	if b.engine == nil || b.memory == nil {
		log.Panic("replayer needs an engine and a memory")
	}

	r := &Replayer{
		memory:        b.memory,
		recordResults: b.recordResults,
	}
	r.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, r)

	return r
}
