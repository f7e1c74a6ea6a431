// emulate loads a serialised instruction image and runs it to termination,
// feeding an input file's bytes to port 0 and printing port 0's output
// followed by the instruction and tick counters.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/minilang/mlc/pkg/emulator"
	"github.com/minilang/mlc/pkg/isa"
	"github.com/minilang/mlc/pkg/version"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	limit       uint64
	trace       bool
	memSize     int
)

var rootCmd = &cobra.Command{
	Use:   "emulate <image-file> <input-file>",
	Short: "Run a minilang instruction image " + version.GetVersion(),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println(version.GetFullVersion("emulate"))
			return nil
		}
		return run(args[0], args[1])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information and exit")
	rootCmd.Flags().Uint64Var(&limit, "limit", emulator.DefaultLimit, "instruction-count ceiling before a forced, logged stop")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "log warnings (limit overrun, input exhaustion) to stderr")
	rootCmd.Flags().IntVar(&memSize, "mem-size", isa.DefaultMemSize, "deployment memory size in cells; must match the image's translation --mem-size")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "emulate: %v\n", err)
		os.Exit(1)
	}
}

func run(imagePath, inputPath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image file: %w", err)
	}
	image, err := isa.ReadCode(data, memSize)
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	var warnings io.Writer
	if trace {
		warnings = os.Stderr
	}
	m := emulator.NewMachine(image, input, limit, warnings)
	result, err := m.Run()
	if err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}

	fmt.Print(result.Output)
	fmt.Printf("instr_counter: %d ticks: %d\n", result.InstrCounter, result.Ticks)
	return nil
}
