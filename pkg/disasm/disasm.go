// Package disasm is the thin pretty-printer spec.md §1 calls out as an
// external collaborator: it turns decoded instructions and raw memory
// images into readable text for the monitor's disassemble service (40)
// and the `mipssim disasm` CLI subcommand. It is grounded on
// basicBlock.hh's report/info dump methods (original_source), ported
// here as functions rather than virtual methods since pkg/isa already
// centralises decode; structured value dumps go through
// github.com/davecgh/go-spew, the pack's dump library of choice.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegName returns the ABI name for GPR r, or "?" if r is out of range.
func RegName(r uint32) string {
	if int(r) >= len(regNames) {
		return "?"
	}
	return regNames[r]
}

// Line renders one decoded instruction as "addr: mnemonic operands",
// using whichever operand fields its Kind carries.
func Line(ins *isa.Instr) string {
	var operands string
	switch ins.Kind() {
	case isa.KindRArith, isa.KindMovCond:
		operands = fmt.Sprintf("$%s, $%s, $%s", RegName(ins.Rd()), RegName(ins.Rs()), RegName(ins.Rt()))
	case isa.KindShift:
		operands = fmt.Sprintf("$%s, $%s, %d", RegName(ins.Rd()), RegName(ins.Rt()), ins.Shamt())
	case isa.KindShiftV:
		operands = fmt.Sprintf("$%s, $%s, $%s", RegName(ins.Rd()), RegName(ins.Rt()), RegName(ins.Rs()))
	case isa.KindImmArith:
		operands = fmt.Sprintf("$%s, $%s, %#x", RegName(ins.Rt()), RegName(ins.Rs()), ins.Imm())
	case isa.KindBranch, isa.KindBranchLikely:
		operands = fmt.Sprintf("$%s, $%s, %#08x", RegName(ins.Rs()), RegName(ins.Rt()), ins.Addr()+4+signExtendImmShift2(ins.Imm()))
	case isa.KindJump:
		operands = fmt.Sprintf("%#08x", jumpTarget(ins))
	case isa.KindJumpReg:
		operands = fmt.Sprintf("$%s", RegName(ins.Rs()))
	case isa.KindLoad, isa.KindStore, isa.KindUnalignedLoad, isa.KindUnalignedStore, isa.KindLoadLinked, isa.KindStoreCond:
		operands = fmt.Sprintf("$%s, %#x($%s)", RegName(ins.Rt()), int16(ins.Imm()), RegName(ins.Rs()))
	case isa.KindMonitor:
		operands = fmt.Sprintf("reason=%d", ins.Reason())
	default:
		operands = fmt.Sprintf("rs=%s rt=%s rd=%s", RegName(ins.Rs()), RegName(ins.Rt()), RegName(ins.Rd()))
	}
	return fmt.Sprintf("%08x: %-8s %s", ins.Addr(), ins.Op(), operands)
}

func signExtendImmShift2(imm uint16) uint32 {
	return uint32(int32(int16(imm)) << 2)
}

func jumpTarget(ins *isa.Instr) uint32 {
	return (ins.Addr()+4)&0xf0000000 | ins.Target()
}

// Range decodes and writes n instructions starting at pc, reading
// words directly out of s.Mem, to w — the body behind the monitor's
// disassemble service.
func Range(w io.Writer, s *state.State, pc uint32, n int) error {
	addr := pc
	for i := 0; i < n; i++ {
		word, err := s.LoadWord(addr)
		if err != nil {
			return err
		}
		ins, err := isa.Decode(word, addr)
		if err != nil {
			fmt.Fprintf(w, "%08x: <decode error: %v>\n", addr, err)
		} else {
			fmt.Fprintln(w, Line(ins))
		}
		addr += 4
	}
	return nil
}

// DumpBlock renders a struct-level dump of a basic block via go-spew,
// used by -v/region diagnostics rather than ordinary disassembly
// output.
func DumpBlock(b *cfg.Block) string {
	var sb strings.Builder
	sb.WriteString(spew.Sdump(b))
	return sb.String()
}
