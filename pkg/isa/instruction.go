package isa

import (
	"errors"
	"fmt"
)

// ErrDecode is returned (wrapped) whenever a 32-bit word does not decode
// to any instruction this simulator recognises: an unrecognised
// coprocessor-2 opcode, an unrecognised funct field, or a reserved
// opcode that is not a monitor trap.
var ErrDecode = errors.New("isa: cannot decode instruction word")

// Instruction is the common surface every decoded variant implements.
// It mirrors the teacher's tagged-variant-with-interface pattern
// (one concrete shape per family, a single interface consumed
// uniformly by the interpreter and the region builder) generalized
// from a handful of RiSC-32 opcodes to the much larger MIPS32 table:
// here the tag is Kind+Op rather than a dedicated Go type per mnemonic.
type Instruction interface {
	// Kind reports the structural family this instruction belongs to.
	Kind() Kind
	// Op is the specific mnemonic, e.g. "addu", "beql", "mtc0".
	Op() string
	// Word is the raw 32-bit encoding this instruction was decoded from.
	Word() uint32
	// Addr is the address this instruction occupies in the image.
	Addr() uint32
	// Defines returns the architectural registers this instruction
	// writes: GPR indices 0-31 for general registers, hiRegNum/loRegNum
	// for hi/lo, fcr25Num for the FP condition codes, and FPR indices
	// offset by fprBase for FP registers.
	Defines() []uint32
	// Uses returns the architectural registers this instruction reads,
	// using the same numbering convention as Defines.
	Uses() []uint32
	// CanTranslate reports whether a region builder may safely emit
	// this instruction inside an ahead-of-time translated block. Traps,
	// unaligned memory ops, LL/SC, coprocessor-0 moves, the monitor trap
	// and register-indirect jumps other than jr $ra are excluded; FP ops
	// are not (see spec's region admissibility notes).
	CanTranslate() bool
	// ConstantFold attempts to evaluate this instruction given a set of
	// known-constant register values (keyed by the same numbering as
	// Uses/Defines). It returns the folded value and true only when
	// every input this instruction reads is present in known.
	ConstantFold(known map[uint32]uint32) (value uint32, ok bool)
	// String renders a short disassembly-style form.
	String() string
}

// Register-space numbering used by Defines/Uses across GPR, HI/LO and FPR.
const (
	fprBase  = 1000 // fpr index i is numbered fprBase+i
	hiRegNum = 2000
	loRegNum = 2001
	fcr25Num = 2002
)

// Instr is the single concrete implementation behind Instruction. Its
// Kind field is the discriminant; every method below switches on Kind
// (and, where multiple ops share a Kind, on Op) rather than dispatching
// through Go's type system, because MIPS32's several hundred opcodes
// would otherwise demand several hundred near-identical struct types.
type Instr struct {
	kind   Kind
	op     string
	word   uint32
	addr   uint32
	rs     uint32
	rt     uint32
	rd     uint32
	shamt  uint32
	funct  uint32
	imm    uint16
	target uint32
	fmt    uint32
	ft     uint32
	fs     uint32
	fd     uint32
	cond   uint32
	cc     uint32
	reason uint32 // monitor reason code, valid only when kind==KindMonitor
}

var _ Instruction = (*Instr)(nil)

func (i *Instr) Kind() Kind   { return i.kind }
func (i *Instr) Op() string   { return i.op }
func (i *Instr) Word() uint32 { return i.word }
func (i *Instr) Addr() uint32 { return i.addr }

// Reason returns the monitor reason code; only meaningful when
// Kind() == KindMonitor.
func (i *Instr) Reason() uint32 { return i.reason }

// Rs/Rt/Rd/Shamt/Imm/Target/Fmt/Ft/Fs/Fd/Cond/CC expose the raw decoded
// fields for the interpreter, which needs them directly rather than
// through the Defines/Uses abstraction.
func (i *Instr) Rs() uint32     { return i.rs }
func (i *Instr) Rt() uint32     { return i.rt }
func (i *Instr) Rd() uint32     { return i.rd }
func (i *Instr) Shamt() uint32  { return i.shamt }
func (i *Instr) Imm() uint16    { return i.imm }
func (i *Instr) Target() uint32 { return i.target }
func (i *Instr) Fmt() uint32    { return i.fmt }
func (i *Instr) Ft() uint32     { return i.ft }
func (i *Instr) Fs() uint32     { return i.fs }
func (i *Instr) Fd() uint32     { return i.fd }
func (i *Instr) Cond() uint32   { return i.cond }
func (i *Instr) CC() uint32     { return i.cc }

func (i *Instr) String() string {
	return fmt.Sprintf("%08x: %s (rs=%d rt=%d rd=%d imm=%#x)", i.addr, i.op, i.rs, i.rt, i.rd, i.imm)
}

func (i *Instr) Defines() []uint32 {
	switch i.kind {
	case KindRArith, KindShift, KindShiftV, KindMovCond, KindClz:
		return gprOrEmpty(i.rd, true)
	case KindImmArith:
		return gprOrEmpty(i.rt, true)
	case KindBitfield:
		if i.op == "ext" || i.op == "ins" {
			return gprOrEmpty(i.rt, true)
		}
		return gprOrEmpty(i.rd, true)
	case KindCop0Move:
		return gprOrEmpty(i.rt, i.op == "mfc0")
	case KindMulAddSub:
		return []uint32{hiRegNum, loRegNum}
	case KindMulImm:
		return gprOrEmpty(i.rd, true)
	case KindMulDiv:
		return []uint32{hiRegNum, loRegNum}
	case KindHiLoMove:
		switch i.op {
		case "mfhi", "mflo":
			return gprOrEmpty(i.rd, true)
		case "mthi":
			return []uint32{hiRegNum}
		case "mtlo":
			return []uint32{loRegNum}
		}
	case KindJump:
		if i.op == "jal" {
			return []uint32{RRA}
		}
		return nil
	case KindJumpReg:
		if i.op == "jalr" {
			return gprOrEmpty(i.rd, true)
		}
		return nil
	case KindLoad, KindUnalignedLoad, KindLoadLinked:
		return gprOrEmpty(i.rt, true)
	case KindFPMove:
		if i.op == "mfc1" || i.op == "cfc1" {
			return gprOrEmpty(i.rt, true)
		}
		return []uint32{fprBase + i.fs}
	case KindFPArith, KindFPConvert, KindFPMulAddSub:
		return []uint32{fprBase + i.fd}
	case KindFPCompare:
		return []uint32{fcr25Num}
	case KindFPCondMove:
		return []uint32{fprBase + i.fd}
	case KindFPLoad, KindFPMemX:
		if i.op == "lwxc1" || i.op == "ldxc1" || i.op == "lwc1" || i.op == "ldc1" {
			return []uint32{fprBase + i.fd}
		}
		return nil
	case KindStoreCond:
		return gprOrEmpty(i.rt, true)
	}
	return nil
}

func gprOrEmpty(r uint32, ok bool) []uint32 {
	if !ok || r == RZero {
		return nil
	}
	return []uint32{r}
}

func (i *Instr) Uses() []uint32 {
	switch i.kind {
	case KindRArith, KindShiftV, KindMovCond, KindMulDiv, KindMulAddSub, KindMulImm:
		return nonZero(i.rs, i.rt)
	case KindShift:
		return nonZero(i.rt)
	case KindClz:
		return nonZero(i.rs)
	case KindBitfield:
		switch i.op {
		case "ext":
			return nonZero(i.rs)
		case "ins":
			return nonZero(i.rs, i.rt)
		}
		return nonZero(i.rt)
	case KindImmArith:
		if i.op == "lui" {
			return nil
		}
		return nonZero(i.rs)
	case KindHiLoMove:
		switch i.op {
		case "mthi", "mtlo":
			return nonZero(i.rs)
		}
		return nil
	case KindBranch, KindBranchLikely:
		return nonZero(i.rs, i.rt)
	case KindJump:
		return nil
	case KindJumpReg:
		return nonZero(i.rs)
	case KindLoad, KindLoadLinked:
		return nonZero(i.rs)
	case KindStore, KindStoreCond:
		return nonZero(i.rs, i.rt)
	case KindUnalignedLoad:
		return nonZero(i.rs, i.rt) // rt participates as partial destination/source
	case KindUnalignedStore:
		return nonZero(i.rs, i.rt)
	case KindCop0Move:
		if i.op == "mtc0" {
			return nonZero(i.rt)
		}
		return nil
	case KindFPMove:
		switch i.op {
		case "mtc1", "ctc1":
			return nonZero(i.rt)
		}
		return []uint32{fprBase + i.fs}
	case KindFPArith:
		if i.op == "abs" || i.op == "neg" || i.op == "mov" || i.op == "sqrt" || i.op == "recip" || i.op == "rsqrt" {
			return []uint32{fprBase + i.fs}
		}
		return []uint32{fprBase + i.fs, fprBase + i.ft}
	case KindFPConvert:
		return []uint32{fprBase + i.fs}
	case KindFPMulAddSub:
		return []uint32{fprBase + i.rs, fprBase + i.fs, fprBase + i.ft}
	case KindFPCompare:
		return []uint32{fprBase + i.fs, fprBase + i.ft}
	case KindFPBranch:
		return []uint32{fcr25Num}
	case KindFPCondMove:
		uses := []uint32{fprBase + i.fs}
		if i.op == "movz.fmt" || i.op == "movn.fmt" {
			uses = append(uses, i.rt)
		} else {
			uses = append(uses, fcr25Num)
		}
		return uses
	case KindFPLoad, KindFPStore, KindFPMemX:
		uses := nonZero(i.rs)
		if i.kind == KindFPMemX {
			uses = append(uses, nonZero(i.rt)...)
		}
		if i.kind == KindFPStore || (i.kind == KindFPMemX && (i.op == "swxc1" || i.op == "sdxc1")) {
			uses = append(uses, fprBase+i.fs)
		}
		return uses
	}
	return nil
}

func nonZero(rs ...uint32) []uint32 {
	out := make([]uint32, 0, len(rs))
	for _, r := range rs {
		if r != RZero {
			out = append(out, r)
		}
	}
	return out
}

// CanTranslate reports whether the region builder may emit this
// instruction verbatim inside an ahead-of-time translated block. The
// rule follows the project's region-admissibility policy: traps,
// unaligned memory accesses, LL/SC, and the monitor boundary are never
// translatable; everything else with statically-known control flow is.
func (i *Instr) CanTranslate() bool {
	switch i.kind {
	case KindSyscall, KindBreak, KindSync, KindTeq, KindMonitor,
		KindUnalignedLoad, KindUnalignedStore, KindLoadLinked, KindStoreCond,
		KindCop0Move:
		return false
	case KindJumpReg:
		// jr $ra (a recognised return) is translatable as a region
		// exit; jalr and jr through any other register are not, since
		// the target is only known at run time.
		return i.op == "jr" && i.rs == RRA
	default:
		return true
	}
}

// ConstantFold evaluates simple arithmetic/logical instructions when
// every register they read is present in known. It never folds loads,
// stores, branches, or floating point — those either have side effects
// or depend on more state than a single register file snapshot.
func (i *Instr) ConstantFold(known map[uint32]uint32) (uint32, bool) {
	get := func(r uint32) (uint32, bool) {
		if r == RZero {
			return 0, true
		}
		v, ok := known[r]
		return v, ok
	}
	switch i.kind {
	case KindImmArith:
		rs, ok := get(i.rs)
		if i.op != "lui" && !ok {
			return 0, false
		}
		imm32 := Sext16(i.imm)
		switch i.op {
		case "addi", "addiu":
			return rs + imm32, true
		case "slti":
			if int32(rs) < int32(imm32) {
				return 1, true
			}
			return 0, true
		case "sltiu":
			if rs < imm32 {
				return 1, true
			}
			return 0, true
		case "andi":
			return rs & uint32(i.imm), true
		case "ori":
			return rs | uint32(i.imm), true
		case "xori":
			return rs ^ uint32(i.imm), true
		case "lui":
			return uint32(i.imm) << 16, true
		}
	case KindRArith:
		rs, ok1 := get(i.rs)
		rt, ok2 := get(i.rt)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch i.op {
		case "add", "addu":
			return rs + rt, true
		case "subu":
			return rs - rt, true
		case "and":
			return rs & rt, true
		case "or":
			return rs | rt, true
		case "xor":
			return rs ^ rt, true
		case "nor":
			return ^(rs | rt), true
		case "slt":
			if int32(rs) < int32(rt) {
				return 1, true
			}
			return 0, true
		case "sltu":
			if rs < rt {
				return 1, true
			}
			return 0, true
		}
	case KindShift:
		rt, ok := get(i.rt)
		if !ok {
			return 0, false
		}
		switch i.op {
		case "sll":
			return rt << i.shamt, true
		case "srl":
			return rt >> i.shamt, true
		case "sra":
			return uint32(int32(rt) >> i.shamt), true
		}
	}
	return 0, false
}
