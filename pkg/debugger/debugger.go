// Package debugger provides an interactive step debugger over the
// instruction-count-limited, single-threaded machine pkg/emulator models. It
// mirrors the donor's bare bufio/command-loop debugger console style, pared
// down to this machine's register file and memory shape.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minilang/mlc/pkg/emulator"
	"github.com/minilang/mlc/pkg/isa"
)

// HistoryEntry records one executed instruction for the "history" command.
type HistoryEntry struct {
	PC          int32
	Instruction string
}

// console reads one command line at a time from the operator, printing a
// prompt first. It carries no command-history buffer of its own: the
// debugger's own "history" command already tracks executed instructions,
// and nothing here needs line recall or persistence across sessions.
type console struct {
	scanner *bufio.Scanner
	output  io.Writer
	prompt  string
}

func newConsole(input io.Reader, output io.Writer, prompt string) *console {
	return &console{scanner: bufio.NewScanner(input), output: output, prompt: prompt}
}

func (c *console) readLine() (string, error) {
	fmt.Fprint(c.output, c.prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

// Debugger drives emulator.Machine one instruction at a time under operator
// control: step, continue-to-breakpoint, register/memory inspection.
type Debugger struct {
	machine     *emulator.Machine
	image       []isa.Instruction
	breakpoints map[int32]bool
	history     []HistoryEntry
	maxHistory  int
	console     *console
	output      io.Writer
	instrCount  uint64
	halted      bool
}

// Config holds debugger construction parameters. Input defaults to nil,
// meaning no command can ever be read — callers always supply the console's
// input stream (os.Stdin, or a scripted reader in tests).
type Config struct {
	Input      io.Reader
	Output     io.Writer
	Prompt     string
	MaxHistory int
}

// New wraps machine (already constructed over a loaded image) in an
// interactive debugger.
func New(machine *emulator.Machine, image []isa.Instruction, config Config) *Debugger {
	if config.MaxHistory == 0 {
		config.MaxHistory = 200
	}
	return &Debugger{
		machine:     machine,
		image:       image,
		breakpoints: make(map[int32]bool),
		maxHistory:  config.MaxHistory,
		console:     newConsole(config.Input, config.Output, config.Prompt),
		output:      config.Output,
	}
}

// Run starts the interactive command loop, returning when the operator
// quits or the machine halts and the operator chooses not to continue.
func (d *Debugger) Run() error {
	fmt.Fprintln(d.output, "minilang step debugger. Type 'help' for commands.")
	d.printCurrent()

	for {
		line, err := d.console.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			line = "step"
		}
		if quit := d.handle(line); quit {
			return nil
		}
	}
}

func (d *Debugger) handle(line string) (quit bool) {
	parts := strings.Fields(line)
	switch parts[0] {
	case "h", "help", "?":
		d.printHelp()

	case "s", "step":
		d.step()

	case "c", "continue":
		d.continueToBreakpoint()

	case "b", "break":
		if len(parts) < 2 {
			d.listBreakpoints()
			return false
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			fmt.Fprintf(d.output, "invalid address %q\n", parts[1])
			return false
		}
		d.breakpoints[int32(addr)] = true
		fmt.Fprintf(d.output, "breakpoint set at %d\n", addr)

	case "regs", "r":
		d.printRegisters()

	case "mem", "m":
		if len(parts) < 2 {
			fmt.Fprintln(d.output, "usage: mem <address>")
			return false
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			fmt.Fprintf(d.output, "invalid address %q\n", parts[1])
			return false
		}
		d.printMemory(int32(addr))

	case "history", "hist":
		d.printHistory()

	case "q", "quit", "exit":
		return true

	default:
		fmt.Fprintf(d.output, "unknown command %q, try 'help'\n", parts[0])
	}
	return false
}

func (d *Debugger) step() {
	if d.halted {
		fmt.Fprintln(d.output, "machine halted")
		return
	}
	pc := d.machine.Reg(isa.PC)
	instr := d.image[pc]
	halted, err := d.machine.StepOnce()
	if err != nil {
		fmt.Fprintf(d.output, "runtime error: %v\n", err)
		d.halted = true
		return
	}
	d.halted = halted
	d.instrCount++
	d.record(pc, instr)
	d.printCurrent()
}

// continueToBreakpoint single-steps until a breakpoint address is reached
// or the machine halts — the debugger never hands control fully back to
// Machine.Run, so a breakpoint can interrupt it mid-program.
func (d *Debugger) continueToBreakpoint() {
	for !d.halted {
		pc := d.machine.Reg(isa.PC)
		if d.breakpoints[pc] && d.instrCount > 0 {
			fmt.Fprintf(d.output, "breakpoint hit at %d\n", pc)
			return
		}
		instr := d.image[pc]
		halted, err := d.machine.StepOnce()
		if err != nil {
			fmt.Fprintf(d.output, "runtime error: %v\n", err)
			d.halted = true
			return
		}
		d.halted = halted
		d.instrCount++
		d.record(pc, instr)
	}
	d.printCurrent()
}

func (d *Debugger) record(pc int32, instr isa.Instruction) {
	d.history = append(d.history, HistoryEntry{PC: pc, Instruction: instr.String()})
	if len(d.history) > d.maxHistory {
		d.history = d.history[len(d.history)-d.maxHistory:]
	}
}

func (d *Debugger) printCurrent() {
	if d.halted {
		fmt.Fprintln(d.output, "machine halted")
		return
	}
	pc := d.machine.Reg(isa.PC)
	fmt.Fprintf(d.output, "-> %s\n", d.image[pc])
}

func (d *Debugger) printRegisters() {
	for r := isa.R0; r <= isa.R12; r++ {
		fmt.Fprintf(d.output, "%-3s = %d\n", r, d.machine.Reg(r))
	}
	fmt.Fprintf(d.output, "%-3s = %d\n", isa.PC, d.machine.Reg(isa.PC))
	fmt.Fprintf(d.output, "%-3s = %d\n", isa.DR, d.machine.Reg(isa.DR))
	fmt.Fprintf(d.output, "%-3s = %d\n", isa.SP, d.machine.Reg(isa.SP))
}

func (d *Debugger) printMemory(addr int32) {
	if addr < 0 || int(addr) >= len(d.image) {
		fmt.Fprintf(d.output, "address %d out of range\n", addr)
		return
	}
	fmt.Fprintf(d.output, "%04d: %s\n", addr, d.image[addr])
}

func (d *Debugger) printHistory() {
	for _, h := range d.history {
		fmt.Fprintf(d.output, "%04d: %s\n", h.PC, h.Instruction)
	}
}

func (d *Debugger) listBreakpoints() {
	if len(d.breakpoints) == 0 {
		fmt.Fprintln(d.output, "no breakpoints set")
		return
	}
	for addr := range d.breakpoints {
		fmt.Fprintf(d.output, "  %d\n", addr)
	}
}

func (d *Debugger) printHelp() {
	fmt.Fprint(d.output, `commands:
  step, s              execute one instruction
  continue, c          run until a breakpoint or halt
  break, b <addr>      set a breakpoint, or list breakpoints with no argument
  regs, r              print all registers
  mem, m <addr>        print the instruction word at an address
  history, hist        print the most recently executed instructions
  quit, q              exit the debugger
`)
}
