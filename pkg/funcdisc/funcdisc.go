// Package funcdisc discovers function boundaries over an already-built
// control-flow graph: which entry blocks behave like leaf functions,
// and which behave like functions whose callees have been inlined.
// It is grounded on dsheffie/mips32-bt's basicBlock.hh free functions
// findLeafNodeFunc and findFuncWithInline, and on its FUNC_STATUS_LIST
// X-macro enumerating the possible outcomes of each DFS.
package funcdisc

import (
	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/bassosimone/mips32sim/pkg/isa"
)

// Status is the outcome of a function-discovery DFS over one candidate
// entry block, matching the original's funcComplStatus enum exactly
// (same cases, same meaning) under Go-idiomatic names.
type Status int

const (
	Success Status = iota
	NoReturn
	TooManyReturns
	RecursiveCall
	Monitor
	DirectCall
	IndirectCall
	ArbitraryJR
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NoReturn:
		return "no_return"
	case TooManyReturns:
		return "too_many_returns"
	case RecursiveCall:
		return "recursive_call"
	case Monitor:
		return "monitor"
	case DirectCall:
		return "direct_call"
	case IndirectCall:
		return "indirect_call"
	case ArbitraryJR:
		return "arbitrary_jr"
	}
	return "unknown"
}

// Symbols maps a function's entry address to its name and size. It is
// its own type: pkg/elfload's symbol table uses elfload.Symbol, whose
// Size is a uint64.
type Symbols map[uint32]struct {
	Name string
	Size uint32
}

// FindLeafNodeFunc walks the CFG reachable from entry and accepts it as
// a leaf function only if every path exits through exactly one
// canonical return (jr $ra) and the walk never crosses a call, an
// indirect jump, or a monitor trap. numErrors increments for every
// rejected non-leaf block, matching the original's output parameter.
func FindLeafNodeFunc(g *cfg.Graph, entry cfg.BlockID, syms Symbols) (Status, int) {
	numErrors := 0
	returns := 0
	status := Success

	g.DFS(entry, func(b *cfg.Block) bool {
		switch {
		case b.HasMonitor:
			status, numErrors = worse(status, Monitor), numErrors+1
			return false
		case b.HasJAL:
			status, numErrors = worse(status, DirectCall), numErrors+1
			return false
		case b.HasJALR:
			status, numErrors = worse(status, IndirectCall), numErrors+1
			return false
		case b.HasJR:
			if isCanonicalReturn(b) {
				returns++
				return true
			}
			status, numErrors = worse(status, ArbitraryJR), numErrors+1
			return false
		}
		return true
	})

	if status == Success {
		switch {
		case returns == 0:
			return NoReturn, numErrors
		case returns > 1:
			return TooManyReturns, numErrors
		}
	}
	return status, numErrors
}

// isCanonicalReturn reports whether b's terminating jr instruction
// reads $ra, the same "is_jr(p.first) && mi.r.rs==31" test
// basicBlock::hasJR(true) performs. It scans from the end so that a
// recorded delay-slot instruction after the jr is skipped.
func isCanonicalReturn(b *cfg.Block) bool {
	for i := len(b.Insns) - 1; i >= 0; i-- {
		w := b.Insns[i].Word
		if isa.Opcode(w) == isa.OpSpecial && isa.Funct(w) == isa.FnJr {
			return isa.Rs(w) == isa.RRA
		}
	}
	return false
}

// jalTarget returns the absolute call target of a block's jal, the same
// (addr+4)&0xf0000000 | target<<2 reconstruction pkg/disasm uses. It
// scans from the end since the jal itself may be followed by its
// recorded delay-slot instruction, or false if the block has no jal.
func jalTarget(b *cfg.Block) (uint32, bool) {
	for i := len(b.Insns) - 1; i >= 0; i-- {
		ins := b.Insns[i]
		if (ins.Word>>26)&0x3f == isa.OpJal {
			target := isa.Target26(ins.Word) << 2
			return (ins.Addr+4)&0xf0000000 | target, true
		}
	}
	return 0, false
}

// worse returns whichever of a, b is a stronger rejection reason,
// preferring to preserve the first non-Success status seen (the
// original reports the first disqualifying condition it hits).
func worse(a, b Status) Status {
	if a != Success {
		return a
	}
	return b
}

// FindFuncWithInline is findLeafNodeFunc's more permissive counterpart:
// it tolerates calls to already-known leaf functions (treating them as
// inlined) but still rejects indirect calls, monitor traps, calls to
// anything outside leafFuncs, and non-canonical returns.
func FindFuncWithInline(g *cfg.Graph, entry cfg.BlockID, syms Symbols, leafFuncs map[uint32]bool) (Status, int) {
	numErrors := 0
	returns := 0
	status := Success

	g.DFS(entry, func(b *cfg.Block) bool {
		switch {
		case b.HasMonitor:
			status, numErrors = worse(status, Monitor), numErrors+1
			return false
		case b.HasJALR:
			status, numErrors = worse(status, IndirectCall), numErrors+1
			return false
		case b.HasJAL:
			// Only a call whose target is a previously discovered leaf
			// function is treated as inlined; anything else (an unknown
			// or non-leaf callee) disqualifies this block just like a
			// call in FindLeafNodeFunc.
			target, ok := jalTarget(b)
			if !ok || !leafFuncs[target] {
				status, numErrors = worse(status, DirectCall), numErrors+1
				return false
			}
			return true
		case b.HasJR:
			if isCanonicalReturn(b) {
				returns++
				return true
			}
			status, numErrors = worse(status, ArbitraryJR), numErrors+1
			return false
		}
		return true
	})

	if status == Success {
		switch {
		case returns == 0:
			return NoReturn, numErrors
		case returns > 1:
			return TooManyReturns, numErrors
		}
	}
	return status, numErrors
}
