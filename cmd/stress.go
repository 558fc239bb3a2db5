package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/memhier/mem/acceptancetests/memaccessagent"
	"github.com/sarchlab/memhier/mem/mem"
	"github.com/spf13/cobra"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Check the hierarchy with random accesses.",
	Long: "Issue random reads and writes, compare every read with the last " +
		"value written, and fail on any difference.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStress(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stressCmd)

	flags := stressCmd.Flags()
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed, 0 for the time.")
	flags.IntVar(&opts.numAccess, "num-access", opts.numAccess,
		"Number of reads and of writes to issue.")
	flags.Uint64Var(&opts.maxAddress, "max-address", opts.maxAddress,
		"Accesses stay below this address.")
}

func runStress(o options, out io.Writer) error {
	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fmt.Fprintf(os.Stderr, "Seed %d\n", seed)

	if o.maxAddress <= mem.BytesPerWord {
		return fmt.Errorf("max address 0x%x leaves no word to access",
			o.maxAddress)
	}

	if o.maxAddress > o.memSize || o.maxAddress > 1<<32 {
		return fmt.Errorf("max address 0x%x is beyond the memory size 0x%x",
			o.maxAddress, o.memSize)
	}

	h, err := buildHierarchy(o, out)
	if err != nil {
		return err
	}

	agent := memaccessagent.MakeBuilder().
		WithEngine(h.engine).
		WithMemory(h.synced).
		WithMaxAddress(uint32(o.maxAddress - 1)).
		WithReadLeft(o.numAccess).
		WithWriteLeft(o.numAccess).
		WithSeed(seed).
		Build("Agent")

	done := h.trackProgress("Stress", 2*uint64(o.numAccess))

	agent.Start()

	if err := h.run(); err != nil {
		return h.finish(err)
	}

	done()
	h.report(out)

	if err := agent.Err(); err != nil {
		return h.finish(err)
	}

	if len(agent.Mismatches) > 0 {
		return h.finish(fmt.Errorf("%d reads returned stale data, first: %s",
			len(agent.Mismatches), agent.Mismatches[0]))
	}

	return h.finish(nil)
}
