// debug is an interactive step debugger over a translated instruction
// image: step one instruction at a time, set breakpoints, inspect registers
// and memory.
package main

import (
	"fmt"
	"os"

	"github.com/minilang/mlc/pkg/debugger"
	"github.com/minilang/mlc/pkg/emulator"
	"github.com/minilang/mlc/pkg/isa"
	"github.com/minilang/mlc/pkg/version"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	showVersion bool
	limit       uint64
	memSize     int
)

var rootCmd = &cobra.Command{
	Use:   "debug <image-file> <input-file>",
	Short: "Step through a minilang instruction image interactively " + version.GetVersion(),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println(version.GetFullVersion("debug"))
			return nil
		}
		return runDebugger(args[0], args[1])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information and exit")
	rootCmd.Flags().Uint64Var(&limit, "limit", emulator.DefaultLimit, "instruction-count ceiling before a forced, logged stop")
	rootCmd.Flags().IntVar(&memSize, "mem-size", isa.DefaultMemSize, "deployment memory size in cells; must match the image's translation --mem-size")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "debug: %v\n", err)
		os.Exit(1)
	}
}

func runDebugger(imagePath, inputPath string) error {
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

	// The debugger's console is line-based, which relies on the terminal
	// driver's own canonical-mode line editing — unlike a raw-mode REPL,
	// this debugger never puts the terminal into raw mode. term.IsTerminal
	// only decides whether to show the interactive prompt, or run silently
	// when stdin is piped (e.g. under a test harness).
	prompt := ""
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = "dbg> "
	}

	machine := emulator.NewMachine(image, input, limit, os.Stderr)
	dbg := debugger.New(machine, image, debugger.Config{
		Input:  os.Stdin,
		Output: os.Stdout,
		Prompt: prompt,
	})
	return dbg.Run()
}
