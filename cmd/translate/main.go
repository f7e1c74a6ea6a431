// translate compiles a minilang source file into a serialised instruction
// image.
package main

import (
	"fmt"
	"os"

	"github.com/minilang/mlc/pkg/isa"
	"github.com/minilang/mlc/pkg/toolchain"
	"github.com/minilang/mlc/pkg/version"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	memSize     int
)

var rootCmd = &cobra.Command{
	Use:   "translate <source-file> <image-file>",
	Short: "Compile minilang source into a serialised instruction image " + version.GetVersion(),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println(version.GetFullVersion("translate"))
			return nil
		}
		return translate(args[0], args[1])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information and exit")
	rootCmd.Flags().IntVar(&memSize, "mem-size", isa.DefaultMemSize, "deployment memory size in cells; must match the emulator's --mem-size")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "translate: %v\n", err)
		os.Exit(1)
	}
}

func translate(sourcePath, imagePath string) error {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}

	code, err := toolchain.Translate(string(source), memSize)
	if err != nil {
		return err
	}

	data, err := isa.WriteCode(code)
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		return fmt.Errorf("writing image file: %w", err)
	}
	return nil
}
