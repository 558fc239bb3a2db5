package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/memhier/mem/subsystem"
)

// Environment variables that override the built-in defaults. They can also
// be set in a .env file in the working directory.
const (
	envMemSize        = "MEMHIER_MEM_SIZE"
	envInterruptEvery = "MEMHIER_INTERRUPT_EVERY"
	envMonitorPort    = "MEMHIER_MONITOR_PORT"
)

type options struct {
	memSize        uint64
	interruptEvery uint64
	record         string
	logTrace       bool
	logEvents      bool
	monitor        bool
	monitorPort    int
	openBrowser    bool

	seed       int64
	numAccess  int
	maxAddress uint64
}

func defaultOptions() options {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Ignoring .env: %v\n", err)
		}
	}

	return optionsFromEnv(os.LookupEnv)
}

func optionsFromEnv(lookup func(string) (string, bool)) options {
	o := options{
		memSize:        subsystem.DefaultMemorySize,
		interruptEvery: 1000,
		numAccess:      100000,
		maxAddress:     subsystem.DefaultMemorySize,
	}

	if v, ok := lookupUint(lookup, envMemSize, 64); ok {
		o.memSize = v
		o.maxAddress = v
	}

	if v, ok := lookupUint(lookup, envInterruptEvery, 64); ok {
		o.interruptEvery = v
	}

	if v, ok := lookupUint(lookup, envMonitorPort, 16); ok {
		o.monitorPort = int(v)
	}

	return o
}

func lookupUint(
	lookup func(string) (string, bool),
	name string,
	bitSize int,
) (uint64, bool) {
	s, ok := lookup(name)
	if !ok || s == "" {
		return 0, false
	}

	v, err := strconv.ParseUint(s, 0, bitSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring %s=%q: %v\n", name, s, err)
		return 0, false
	}

	return v, true
}
