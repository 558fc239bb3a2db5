// Package cmd provides the command-line interface of memhier.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "memhier",
	Short: "memhier runs word accesses through a two-level cache hierarchy.",
	Long: `memhier models a 64KB 4-way L1 cache and a 1MB direct-mapped L2 ` +
		`cache in front of a flat main memory. It can replay access traces ` +
		`and stress the hierarchy with random accesses.`,
	SilenceUsage: true,
}

var opts = defaultOptions()

func init() {
	flags := rootCmd.PersistentFlags()

	flags.Uint64Var(&opts.memSize, "mem-size", opts.memSize,
		"Size of the main memory in bytes, a multiple of 32.")
	flags.Uint64Var(&opts.interruptEvery, "interrupt-every",
		opts.interruptEvery,
		"Accesses between two clock interrupts, 0 to disable.")
	flags.StringVar(&opts.record, "record", "",
		"Record accesses, misses and write-backs into this SQLite file.")
	flags.BoolVar(&opts.logTrace, "log-trace", false,
		"Print every access, miss and write-back.")
	flags.BoolVar(&opts.logEvents, "log-events", false,
		"Print every event the engine handles.")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"Serve the live state of the hierarchy over HTTP.")
	flags.IntVar(&opts.monitorPort, "monitor-port", opts.monitorPort,
		"Port of the monitor, random if below 1000.")
	flags.BoolVar(&opts.openBrowser, "open-browser", false,
		"Open the monitor in a browser.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It never returns.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Print(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
