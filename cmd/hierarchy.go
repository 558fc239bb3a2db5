package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/memhier/datarecording"
	"github.com/sarchlab/memhier/interrupt"
	"github.com/sarchlab/memhier/mem/subsystem"
	"github.com/sarchlab/memhier/mem/trace"
	"github.com/sarchlab/memhier/monitoring"
	"github.com/sarchlab/memhier/sim"
)

// hierarchy is a memory subsystem with everything that drives and observes
// it during one run.
//
// The monitor serves from its own goroutine once started, so every hook must
// be accepted before run.
type hierarchy struct {
	engine      *sim.SerialEngine
	synced      *subsystem.Synced
	clock       *interrupt.Clock
	monitor     *monitoring.Monitor
	monitorURL  string
	openBrowser bool
	recorder    datarecording.DataRecorder
}

func buildHierarchy(o options, out io.Writer) (*hierarchy, error) {
	h := &hierarchy{
		engine: sim.NewSerialEngine(),
	}

	memory, err := subsystem.MakeBuilder().
		WithMemorySize(o.memSize).
		Build("Mem")
	if err != nil {
		return nil, err
	}

	h.synced = subsystem.NewSynced(memory)

	if o.logTrace {
		memory.AcceptHook(trace.NewLogTracer(log.New(out, "", 0), h.engine))
	}

	if o.logEvents {
		h.engine.AcceptHook(sim.NewEventLogger(log.New(out, "", 0)))
	}

	if o.record != "" {
		h.recorder, err = datarecording.New(o.record)
		if err != nil {
			return nil, err
		}

		memory.AcceptHook(trace.NewDBTracer(h.recorder, h.engine))
	}

	if o.interruptEvery > 0 {
		h.clock = interrupt.MakeBuilder().
			WithEngine(h.engine).
			WithInterval(o.interruptEvery).
			WithTarget(h.synced).
			Build("Clock")
	}

	if o.monitor {
		h.monitor = monitoring.NewMonitor().WithPortNumber(o.monitorPort)
		h.monitor.RegisterComponent(h.synced)
		h.openBrowser = o.openBrowser
	}

	return h, nil
}

// startMonitor starts serving, at most once. From then on the subsystem may
// only be touched through h.synced.
func (h *hierarchy) startMonitor() error {
	if h.monitor == nil || h.monitorURL != "" {
		return nil
	}

	url, err := h.monitor.StartServer()
	if err != nil {
		return err
	}

	h.monitorURL = url

	if h.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return nil
}

// trackProgress shows the number of completed accesses on the monitor.
func (h *hierarchy) trackProgress(name string, total uint64) func() {
	if h.monitor == nil {
		return func() {}
	}

	bar := h.monitor.CreateProgressBar(name, total)
	h.synced.Do(func(s *subsystem.Subsystem) {
		s.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == subsystem.HookPosAccess {
				bar.IncrementFinished(1)
			}
		}))
	})

	return func() { h.monitor.CompleteProgressBar(bar) }
}

func (h *hierarchy) run() error {
	if err := h.startMonitor(); err != nil {
		return err
	}

	if h.clock != nil {
		h.clock.Start()
	}

	return h.engine.Run()
}

// finish flushes the recording. After a successful run with a monitor, it
// keeps serving until interrupted.
func (h *hierarchy) finish(runErr error) error {
	if h.recorder != nil {
		if err := h.recorder.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		return runErr
	}

	if h.monitor != nil {
		fmt.Fprintln(os.Stderr, "Run finished, press Ctrl-C to stop the monitor")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		<-ctx.Done()
	}

	return nil
}

func (h *hierarchy) report(out io.Writer) {
	stats := h.synced.Stats()

	fmt.Fprintf(out, "accesses       %d\n", stats.Accesses)
	fmt.Fprintf(out, "l1 misses      %d\n", stats.L1Misses)
	fmt.Fprintf(out, "l2 misses      %d\n", stats.L2Misses)
	fmt.Fprintf(out, "l1 write-backs %d\n", stats.L1WriteBacks)
	fmt.Fprintf(out, "l2 write-backs %d\n", stats.L2WriteBacks)
	fmt.Fprintf(out, "interrupts     %d\n", stats.Ticks)
}
