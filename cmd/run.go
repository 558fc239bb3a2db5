package cmd

import (
	"io"

	"github.com/sarchlab/memhier/workload"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Replay an access trace.",
	Long: "Replay an access trace, one request per cycle, with a periodic " +
		"clock interrupt, and print the miss counters.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrace(opts, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTrace(o options, path string, out io.Writer) error {
	requests, err := workload.ParseFile(path)
	if err != nil {
		return err
	}

	h, err := buildHierarchy(o, out)
	if err != nil {
		return err
	}

	replayer := workload.MakeBuilder().
		WithEngine(h.engine).
		WithMemory(h.synced).
		Build("Replayer")
	replayer.Enqueue(requests...)

	done := h.trackProgress("Replay", uint64(len(requests)))

	replayer.Start()

	if err := h.run(); err != nil {
		return h.finish(err)
	}

	done()
	h.report(out)

	return h.finish(replayer.Err())
}
