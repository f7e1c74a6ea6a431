package codegen

import "github.com/minilang/mlc/pkg/isa"

// Scratch and working registers are fixed by convention (spec.md §3): r9/r10
// are evaluation scratch for the stack-based arithmetic evaluator, r11/r12
// are working registers for If/While condition evaluation and the counted
// I/O loops. The remaining registers, r1..r8, form the round-robin variable
// cache pool (r0 is deliberately excluded from the pool, per design notes).
const (
	scratchA = isa.R9
	scratchB = isa.R10
	workingA = isa.R11
	workingB = isa.R12
)

var cachePool = []isa.Reg{isa.R1, isa.R2, isa.R3, isa.R4, isa.R5, isa.R6, isa.R7, isa.R8}

// regCache tracks the bijection between variable names and the registers
// currently caching their value, avoiding a redundant load when a variable
// is read again before any control-flow boundary or write invalidates it.
type regCache struct {
	regToVar map[isa.Reg]string
	varToReg map[string]isa.Reg
	next     int // round-robin cursor into cachePool
}

func newRegCache() *regCache {
	return &regCache{
		regToVar: make(map[isa.Reg]string),
		varToReg: make(map[string]isa.Reg),
	}
}

// lookup returns the register currently caching name, if any.
func (c *regCache) lookup(name string) (isa.Reg, bool) {
	r, ok := c.varToReg[name]
	return r, ok
}

// assign picks the next register in round-robin order, evicting whatever
// variable it previously cached, and binds it to name.
func (c *regCache) assign(name string) isa.Reg {
	r := cachePool[c.next]
	c.next = (c.next + 1) % len(cachePool)

	if old, ok := c.regToVar[r]; ok {
		delete(c.varToReg, old)
	}
	c.regToVar[r] = name
	c.varToReg[name] = r
	return r
}

// invalidate drops name from the cache, e.g. after a write to its cell.
func (c *regCache) invalidate(name string) {
	if r, ok := c.varToReg[name]; ok {
		delete(c.regToVar, r)
		delete(c.varToReg, name)
	}
}

// reset drops the entire cache at a control-flow boundary (If/While), since
// straight-line reasoning about register contents breaks across jumps.
func (c *regCache) reset() {
	c.regToVar = make(map[isa.Reg]string)
	c.varToReg = make(map[string]isa.Reg)
}
