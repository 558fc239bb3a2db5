package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sarchlab/memhier/interrupt"
	"github.com/sarchlab/memhier/mem/acceptancetests/memaccessagent"
	"github.com/sarchlab/memhier/mem/subsystem"
	"github.com/sarchlab/memhier/sim"
	"github.com/tebeka/atexit"
)

var seedFlag = flag.Int64("seed", 0, "Random Seed")
var numAccessFlag = flag.Int("num-access", 100000,
	"Number of accesses to generate")
var maxAddressFlag = flag.Uint("max-address", 8*1048576,
	"Address range to use")
var intervalFlag = flag.Uint64("interrupt-every", 1000,
	"Cycles between two clock interrupts")

var engine *sim.SerialEngine
var memory *subsystem.Subsystem
var agent *memaccessagent.MemAccessAgent
var clock *interrupt.Clock

func main() {
	flag.Parse()

	buildEnvironment(initSeed())
	runSimulation()
	allAccessesMustBeCorrect()

	atexit.Exit(0)
}

func initSeed() int64 {
	var seed int64
	if *seedFlag == 0 {
		seed = time.Now().UnixNano()
	} else {
		seed = *seedFlag
	}

	fmt.Fprintf(os.Stderr, "Seed %d\n", seed)

	return seed
}

func buildEnvironment(seed int64) {
	engine = sim.NewSerialEngine()

	var err error

	memory, err = subsystem.MakeBuilder().
		WithMemorySize(uint64(*maxAddressFlag)).
		Build("Mem")
	if err != nil {
		log.Print(err)
		atexit.Exit(1)
	}

	agent = memaccessagent.MakeBuilder().
		WithEngine(engine).
		WithMemory(memory).
		WithMaxAddress(uint32(*maxAddressFlag)).
		WithReadLeft(*numAccessFlag).
		WithWriteLeft(*numAccessFlag).
		WithSeed(seed).
		Build("Agent")

	clock = interrupt.MakeBuilder().
		WithEngine(engine).
		WithInterval(*intervalFlag).
		WithTarget(memory).
		Build("Clock")

	agent.Start()
	clock.Start()
}

func runSimulation() {
	err := engine.Run()
	if err != nil {
		panic(err)
	}
}

func allAccessesMustBeCorrect() {
	if agent.Err() != nil {
		log.Print(agent.Err())
		atexit.Exit(1)
	}

	if len(agent.Mismatches) > 0 {
		log.Printf("%d reads returned stale data", len(agent.Mismatches))
		atexit.Exit(1)
	}

	if !agent.Done() {
		panic("more requests to send")
	}

	stats := memory.Stats()
	fmt.Printf("accesses %d, L1 misses %d, L2 misses %d, interrupts %d\n",
		stats.Accesses, stats.L1Misses, stats.L2Misses, clock.NumInterrupts())
}
