// Package interp executes decoded instructions against a state.State,
// optionally recording the instructions it sees into a cfg.Graph as it
// goes. It is grounded on dsheffie/mips32-bt's interpret.cc: the same
// four public entry points (step, with/without CFG construction,
// little/big-endian) collapse here into a single Step method
// parameterised by a buildCFG flag, since Go generics over a boolean
// constant buy nothing Step's own branch doesn't already express
// clearly.
package interp

import (
	"errors"
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

// ErrZeroRegisterClobbered is returned when a step leaves GPR 0 holding
// a nonzero value, the interpreter's one unconditionally fatal
// invariant violation (interpret.cc aborts the whole process on this;
// this port instead returns an error so a caller — the CLI, or a test
// — decides what to do).
var ErrZeroRegisterClobbered = errors.New("interp: gpr[0] clobbered mid-step")

// ErrHalted is returned by Step once the machine has stopped via
// syscall, break, or teq; callers should stop calling Step and may
// inspect State.Brk for why.
var ErrHalted = errors.New("interp: machine halted")

// ErrUnalignedAccess flags a load/store whose address does not satisfy
// its natural alignment — lw/sw require 4-byte alignment, lh/sh 2-byte;
// lwl/lwr/swl/swr exist precisely so unaligned 32-bit accesses never
// need this path.
var ErrUnalignedAccess = errors.New("interp: unaligned memory access")

// Interp threads a state.State and, optionally, a cfg.Graph through a
// sequence of Step calls. It replaces interpret.cc's file-scope globals
// (globals::cBB, globals::enClockFuncts, ...) with fields on a value
// the caller owns and can run several of concurrently.
type Interp struct {
	S   *state.State
	CFG *cfg.Graph // nil when BuildCFG is false

	BuildCFG bool

	// Current is the block execution is presently appending to; only
	// meaningful when BuildCFG is true. It starts nil and is
	// initialised by the first Step call.
	Current *cfg.Block

	// Monitor, when non-nil, is invoked on every reserved-instruction
	// monitor trap. Left unset, such a trap is a hard error.
	Monitor func(*Interp, *isa.Instr) error

	// OnHalt, when non-nil, is invoked on both graceful stopping
	// opcodes (syscall and break) before State.Brk is observed by the
	// caller — the checkpoint package wires a save-state callback in
	// here.
	OnHalt func(*Interp)

	// Sub selects `sub`'s semantics; the zero value defers to
	// defaultSubSemantics (SubUnreachable), matching the original.
	Sub SubSemantics

	// TrapLog records the PC of each teq trap as a bounded ring buffer,
	// the supplemented "log the triggering PC" behaviour monitor.hh's
	// comments describe informally.
	TrapLog    []uint32
	trapLogCap int
}

// New constructs an Interp over s. If buildCFG is true a fresh
// cfg.Graph is allocated and wired in; pass a shared *cfg.Graph via the
// CFG field afterwards if the caller wants to keep discovering into an
// existing graph instead (e.g. across several Interps sharing one
// region-builder view).
func New(s *state.State, buildCFG bool) *Interp {
	it := &Interp{S: s, BuildCFG: buildCFG, trapLogCap: 64}
	if buildCFG {
		it.CFG = cfg.New()
	}
	return it
}

func (it *Interp) logTrap(pc uint32) {
	it.TrapLog = append(it.TrapLog, pc)
	if len(it.TrapLog) > it.trapLogCap {
		it.TrapLog = it.TrapLog[len(it.TrapLog)-it.trapLogCap:]
	}
}

// ensureBlock lazily resolves Current for pc, creating or splitting a
// block as cfg.Graph.FindOrCreate requires. Only called when BuildCFG.
func (it *Interp) ensureBlock(pc uint32) {
	if it.Current != nil {
		if _, ok := it.CFG.LocalFind(pc); ok && pc == it.Current.EntryAddr {
			return
		}
	}
	b, _ := it.CFG.FindOrCreate(pc)
	it.Current = b
}

// advanceBlock implements getNextBlock: find-or-create the block for
// the new pc, mark the outgoing block read-only, and make the new
// block current — recording the taken edge on the outgoing block
// first, so the edge is attributed to the block that actually branched
// rather than to whatever it gets split into later.
func (it *Interp) advanceBlock(pc uint32) {
	if !it.BuildCFG {
		return
	}
	outgoing := it.Current
	nb, _ := it.CFG.FindOrCreate(pc)
	if outgoing != nil {
		it.CFG.AddSuccessor(outgoing, nb, pc)
		it.CFG.SetReadOnly(outgoing)
	}
	it.Current = nb
}

// fetch reads the instruction word at pc, applying target-endianness
// byte swap, and — when BuildCFG — appends it to Current.
func (it *Interp) fetch(pc uint32) (*isa.Instr, error) {
	word, err := it.S.LoadWord(pc)
	if err != nil {
		return nil, fmt.Errorf("interp: fetch at %#08x: %w", pc, err)
	}
	ins, err := isa.Decode(word, pc)
	if err != nil {
		return nil, err
	}
	if it.BuildCFG {
		it.ensureBlock(pc)
		if err := it.CFG.AddIns(it.Current, pc, word); err != nil {
			return nil, err
		}
	}
	return ins, nil
}

// Step executes exactly one instruction, including its delay slot if
// it is a control-flow instruction, and returns when the machine has
// advanced past it. It returns ErrHalted once State.Brk becomes true.
func (it *Interp) Step() error {
	if it.S.Brk {
		return ErrHalted
	}
	if it.BuildCFG && it.Current == nil {
		it.ensureBlock(it.S.PC)
	}
	return it.step()
}

// Run steps the machine until it halts or an error occurs, returning
// nil only on a graceful ErrHalted stop.
func (it *Interp) Run() error {
	for {
		err := it.Step()
		if errors.Is(err, ErrHalted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
