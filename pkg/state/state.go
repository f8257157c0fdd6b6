// Package state holds the machine register file and flat memory image
// that the interpreter reads and writes. It mirrors dsheffie/mips32-bt's
// state_t: a plain value struct with no behaviour beyond initialisation
// and the printable dump format a -v run relies on.
package state

import (
	"fmt"
	"strings"

	"github.com/bassosimone/mips32sim/pkg/endian"
)

// NumGPR, NumCPR0, NumCPR1 and NumFCR size the fixed register banks.
const (
	NumGPR  = 32
	NumCPR0 = 32
	NumCPR1 = 32
	NumFCR  = 5
)

// CP0 register indices this simulator actually consults (everything
// else in the 32-slot bank is inert storage, matching the Non-goal of
// not modelling a full privileged-mode CP0).
const (
	CP0Status = 12
	CP0Cause  = 13
	CP0EPC    = 14
)

// CP1 condition-code control register index within FCR, holding the
// 8-bit FP condition-code vector read by c.cond.fmt/bc1[ft][l]/fmovc.
const FCR25 = 0

// State is the complete simulated machine: general-purpose, HI/LO,
// coprocessor-0, coprocessor-1 (FPR), and floating point control
// registers, the program counter, instruction count, a flat byte-
// addressed memory image, and the two run-stopping flags (brk for a
// graceful stop, abortLoc for an invariant violation).
type State struct {
	PC   uint32
	GPR  [NumGPR]int32
	Lo   int32
	Hi   int32
	CPR0 [NumCPR0]uint32
	CPR1 [NumCPR1]uint32
	FCR1 [NumFCR]uint32
	Icnt uint64

	Mem []byte

	// Brk is set by syscall/break/teq to stop the run gracefully.
	Brk bool
	// AbortLoc records the PC of a hard invariant violation (gpr[0]
	// clobbered mid-step), mirroring the original's abortloc field.
	AbortLoc uint32

	// Order is the target's byte order, fixed for the lifetime of a run
	// once the ELF image declares it.
	Order endian.Order
}

// New allocates a State with memSize bytes of zeroed memory and the
// architectural reset values the original initState establishes: CP0
// status register bits 2 (ERL) and 22 (BEV) set, everything else zero.
func New(memSize uint32, order endian.Order) *State {
	s := &State{
		Mem:   make([]byte, memSize),
		Order: order,
	}
	s.CPR0[CP0Status] = (1 << 2) | (1 << 22)
	return s
}

// ZeroGPR0 restores the hard-wired invariant that GPR 0 always reads as
// zero. The interpreter calls this once per step, after dispatch, and
// treats a nonzero value observed beforehand as a fatal decode/execute
// bug rather than silently tolerating it.
func (s *State) ZeroGPR0() {
	s.GPR[0] = 0
}

// String renders the same register dump shape as the original's
// operator<<: PC, all 32 GPRs in hex, HI/LO, then CP0/CP1/FCR banks.
func (s *State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pc = %#08x icnt = %d\n", s.PC, s.Icnt)
	for i := 0; i < NumGPR; i++ {
		fmt.Fprintf(&b, "gpr[%02d] = %#08x (%d)\n", i, uint32(s.GPR[i]), s.GPR[i])
	}
	fmt.Fprintf(&b, "lo = %#08x hi = %#08x\n", uint32(s.Lo), uint32(s.Hi))
	for i := 0; i < NumCPR0; i++ {
		fmt.Fprintf(&b, "cpr0[%02d] = %#08x\n", i, s.CPR0[i])
	}
	for i := 0; i < NumCPR1; i++ {
		fmt.Fprintf(&b, "cpr1[%02d] = %#08x\n", i, s.CPR1[i])
	}
	for i := 0; i < NumFCR; i++ {
		fmt.Fprintf(&b, "fcr[%d] = %#08x\n", i, s.FCR1[i])
	}
	return b.String()
}
