package interp

import (
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/isa"
)

// SubSemantics selects how the signed `sub` opcode behaves. The
// original interpreter treats it as UNREACHABLE() — a debug build
// would abort immediately, because no compiler in that project's
// toolchain ever emitted it. This simulator keeps both behaviours
// behind a flag (recorded as an explicit decision in DESIGN.md) rather
// than silently picking one: callers that know their binaries never
// use `sub` can leave it at SubUnreachable and get the original's
// strictness; callers replaying arbitrary MIPS binaries can select
// SubTrapOverflow or SubWrapping.
type SubSemantics int

const (
	// SubUnreachable matches the original: executing `sub` is a fatal
	// interpreter error.
	SubUnreachable SubSemantics = iota
	// SubWrapping treats `sub` exactly like `subu` (silently wrapping).
	SubWrapping
	// SubTrapOverflow performs the signed subtraction and returns an
	// error if it overflows a 32-bit signed integer, the behaviour the
	// MIPS architecture manual actually specifies for `sub`.
	SubTrapOverflow
)

// Sub controls this Interp's `sub` semantics; zero value is
// SubUnreachable, matching the original interpreter's behaviour.
var defaultSubSemantics = SubUnreachable

func (it *Interp) subSemantics() SubSemantics {
	if it.Sub == 0 {
		return defaultSubSemantics
	}
	return it.Sub
}

// step decodes and executes exactly one instruction at the current PC,
// including incrementing the instruction counter and enforcing the
// hard-wired-zero invariant on GPR 0 — matching execMips's own shape in
// the original, where a delay-slot instruction is executed via a
// recursive call to the very same function and so gets the same
// icnt/zero-register treatment as a top-level step.
func (it *Interp) step() error {
	pc := it.S.PC
	ins, err := it.fetch(pc)
	if err != nil {
		return err
	}
	it.S.Icnt++

	bumpPC := true
	switch ins.Kind() {
	case isa.KindRArith:
		err = it.execRArith(ins)
	case isa.KindShift:
		it.execShift(ins)
	case isa.KindShiftV:
		it.execShiftV(ins)
	case isa.KindMovCond:
		it.execMovCond(ins)
	case isa.KindMulDiv:
		it.execMulDiv(ins)
	case isa.KindMulAddSub:
		it.execMulAddSub(ins)
	case isa.KindMulImm:
		it.setGPR(ins.Rd(), it.gpr(ins.Rs())*it.gpr(ins.Rt()))
	case isa.KindClz:
		it.execClz(ins)
	case isa.KindBitfield:
		err = it.execBitfield(ins)
	case isa.KindHiLoMove:
		it.execHiLoMove(ins)
	case isa.KindImmArith:
		it.execImmArith(ins)
	case isa.KindBranch:
		bumpPC = false
		err = it.execBranch(ins)
	case isa.KindBranchLikely:
		bumpPC = false
		err = it.execBranchLikely(ins)
	case isa.KindJump:
		bumpPC = false
		err = it.execJump(ins)
	case isa.KindJumpReg:
		bumpPC = false
		err = it.execJumpReg(ins)
	case isa.KindLoad:
		err = it.execLoad(ins)
	case isa.KindStore:
		err = it.execStore(ins)
	case isa.KindUnalignedLoad:
		err = it.execUnalignedLoad(ins)
	case isa.KindUnalignedStore:
		err = it.execUnalignedStore(ins)
	case isa.KindLoadLinked:
		err = it.execLoad(ins) // single-threaded: ll behaves exactly like lw
	case isa.KindStoreCond:
		err = it.execStoreConditional(ins)
	case isa.KindCop0Move:
		it.execCop0Move(ins)
	case isa.KindFPArith:
		err = it.execFPArith(ins)
	case isa.KindFPCompare:
		err = it.execFPCompare(ins)
	case isa.KindFPBranch:
		bumpPC = false
		err = it.execFPBranch(ins)
	case isa.KindFPMove:
		it.execFPMove(ins)
	case isa.KindFPCondMove:
		it.execFPCondMove(ins)
	case isa.KindFPConvert:
		err = it.execFPConvert(ins)
	case isa.KindFPLoad:
		err = it.execFPLoad(ins)
	case isa.KindFPStore:
		err = it.execFPStore(ins)
	case isa.KindFPMemX:
		err = it.execFPMemX(ins)
	case isa.KindFPMulAddSub:
		err = it.execFPMulAddSub(ins)
	case isa.KindSyscall:
		bumpPC = false
		err = it.execSyscall(ins)
	case isa.KindBreak:
		bumpPC = false
		it.S.PC += 4
		// Checkpoint on a graceful stop regardless of which of the two
		// stopping opcodes triggered it; the original only wires this
		// up on the syscall path, but its own documentation treats
		// syscall and break as equally graceful halts, so this port
		// makes the checkpoint hook symmetrical (see DESIGN.md).
		if it.OnHalt != nil {
			it.OnHalt(it)
		}
		it.S.Brk = true
	case isa.KindSync:
		bumpPC = false
		it.execSync()
	case isa.KindTeq:
		bumpPC = false
		it.execTeq(ins)
	case isa.KindMonitor:
		bumpPC = false
		err = it.execMonitor(ins)
	default:
		err = fmt.Errorf("interp: unhandled kind %q at pc=%#08x", ins.Kind(), pc)
	}
	if err != nil {
		return err
	}
	if bumpPC {
		it.S.PC += 4
	}
	if it.S.GPR[0] != 0 {
		it.S.AbortLoc = pc
		return fmt.Errorf("%w at pc=%#08x", ErrZeroRegisterClobbered, pc)
	}
	it.S.ZeroGPR0()
	return nil
}

func (it *Interp) gpr(r uint32) int32 {
	return it.S.GPR[r]
}

func (it *Interp) setGPR(r uint32, v int32) {
	if r == isa.RZero {
		return
	}
	it.S.GPR[r] = v
}

func (it *Interp) execRArith(ins *isa.Instr) error {
	rs, rt := it.gpr(ins.Rs()), it.gpr(ins.Rt())
	switch ins.Op() {
	case "add":
		// Ground truth (interpret.cc) implements add identically to addu,
		// with no overflow trap; only sub carries a documented ambiguity
		// (see subSemantics).
		it.setGPR(ins.Rd(), rs+rt)
	case "addu":
		it.setGPR(ins.Rd(), rs+rt)
	case "sub":
		switch it.subSemantics() {
		case SubUnreachable:
			return fmt.Errorf("interp: sub is unreachable at pc=%#08x (SubUnreachable semantics)", ins.Addr())
		case SubTrapOverflow:
			diff := int64(rs) - int64(rt)
			if diff != int64(int32(diff)) {
				return fmt.Errorf("interp: sub overflow at pc=%#08x", ins.Addr())
			}
			it.setGPR(ins.Rd(), int32(diff))
		default:
			it.setGPR(ins.Rd(), rs-rt)
		}
	case "subu":
		it.setGPR(ins.Rd(), rs-rt)
	case "and":
		it.setGPR(ins.Rd(), rs&rt)
	case "or":
		it.setGPR(ins.Rd(), rs|rt)
	case "xor":
		it.setGPR(ins.Rd(), rs^rt)
	case "nor":
		it.setGPR(ins.Rd(), ^(rs | rt))
	case "slt":
		it.setGPR(ins.Rd(), boolToInt32(rs < rt))
	case "sltu":
		it.setGPR(ins.Rd(), boolToInt32(uint32(rs) < uint32(rt)))
	}
	return nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (it *Interp) execShift(ins *isa.Instr) {
	rt := uint32(it.gpr(ins.Rt()))
	sh := ins.Shamt()
	switch ins.Op() {
	case "sll":
		it.setGPR(ins.Rd(), int32(rt<<sh))
	case "srl":
		it.setGPR(ins.Rd(), int32(rt>>sh))
	case "sra":
		it.setGPR(ins.Rd(), int32(it.gpr(ins.Rt()))>>sh)
	}
}

func (it *Interp) execShiftV(ins *isa.Instr) {
	rt := uint32(it.gpr(ins.Rt()))
	sh := uint32(it.gpr(ins.Rs())) & 0x1f
	switch ins.Op() {
	case "sllv":
		it.setGPR(ins.Rd(), int32(rt<<sh))
	case "srlv":
		it.setGPR(ins.Rd(), int32(rt>>sh))
	case "srav":
		it.setGPR(ins.Rd(), int32(it.gpr(ins.Rt()))>>sh)
	}
}

func (it *Interp) execMovCond(ins *isa.Instr) {
	rt := it.gpr(ins.Rt())
	switch ins.Op() {
	case "movz":
		if rt == 0 {
			it.setGPR(ins.Rd(), it.gpr(ins.Rs()))
		}
	case "movn":
		if rt != 0 {
			it.setGPR(ins.Rd(), it.gpr(ins.Rs()))
		}
	}
}

func (it *Interp) execMulDiv(ins *isa.Instr) {
	rs, rt := it.gpr(ins.Rs()), it.gpr(ins.Rt())
	switch ins.Op() {
	case "mult":
		y := int64(rs) * int64(rt)
		it.S.Lo = int32(uint64(y) & 0xffffffff)
		it.S.Hi = int32(uint64(y) >> 32)
	case "multu":
		y := uint64(uint32(rs)) * uint64(uint32(rt))
		it.S.Lo = int32(uint32(y & 0xffffffff))
		it.S.Hi = int32(uint32(y >> 32))
	case "div":
		if rt != 0 {
			it.S.Lo = rs / rt
			it.S.Hi = rs % rt
		}
	case "divu":
		if uint32(rt) != 0 {
			it.S.Lo = int32(uint32(rs) / uint32(rt))
			it.S.Hi = int32(uint32(rs) % uint32(rt))
		}
	}
}

func (it *Interp) execMulAddSub(ins *isa.Instr) {
	rs, rt := it.gpr(ins.Rs()), it.gpr(ins.Rt())
	hiLo := func() int64 {
		return int64(it.S.Hi)<<32 | int64(uint32(it.S.Lo))
	}
	setHiLo := func(v int64) {
		it.S.Lo = int32(uint64(v) & 0xffffffff)
		it.S.Hi = int32(uint64(v) >> 32)
	}
	switch ins.Op() {
	case "madd":
		setHiLo(hiLo() + int64(rs)*int64(rt))
	case "maddu":
		setHiLo(hiLo() + int64(uint32(rs))*int64(uint32(rt)))
	case "msub":
		setHiLo(hiLo() - int64(rs)*int64(rt))
	}
}

func (it *Interp) execClz(ins *isa.Instr) {
	v := uint32(it.gpr(ins.Rs()))
	n := 0
	for i := 31; i >= 0; i-- {
		if v&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	it.setGPR(ins.Rd(), int32(n))
}

func (it *Interp) execBitfield(ins *isa.Instr) error {
	switch ins.Op() {
	case "seb":
		it.setGPR(ins.Rd(), int32(int8(it.gpr(ins.Rt()))))
	case "seh":
		it.setGPR(ins.Rd(), int32(int16(it.gpr(ins.Rt()))))
	case "ext":
		lsb := ins.Shamt()
		size := ins.Rd() + 1
		v := uint32(it.gpr(ins.Rs()))
		if lsb+size > 32 {
			return fmt.Errorf("interp: ext lsb+size>32 at pc=%#08x", ins.Addr())
		}
		it.setGPR(ins.Rt(), int32((v>>lsb)&((1<<size)-1)))
	case "ins":
		lsb := ins.Shamt()
		msb := ins.Rd()
		if msb < lsb {
			return fmt.Errorf("interp: ins msb<lsb at pc=%#08x", ins.Addr())
		}
		size := msb - lsb + 1
		mask := uint32((1<<size)-1) << lsb
		v := uint32(it.gpr(ins.Rs()))
		old := uint32(it.gpr(ins.Rt()))
		it.setGPR(ins.Rt(), int32((old&^mask)|((v<<lsb)&mask)))
	}
	return nil
}

func (it *Interp) execHiLoMove(ins *isa.Instr) {
	switch ins.Op() {
	case "mfhi":
		it.setGPR(ins.Rd(), it.S.Hi)
	case "mflo":
		it.setGPR(ins.Rd(), it.S.Lo)
	case "mthi":
		it.S.Hi = it.gpr(ins.Rs())
	case "mtlo":
		it.S.Lo = it.gpr(ins.Rs())
	}
}

func (it *Interp) execImmArith(ins *isa.Instr) {
	rs := it.gpr(ins.Rs())
	imm32 := endian.SignExtend16(ins.Imm())
	switch ins.Op() {
	case "addi", "addiu":
		it.setGPR(ins.Rt(), rs+int32(imm32))
	case "slti":
		it.setGPR(ins.Rt(), boolToInt32(rs < int32(imm32)))
	case "sltiu":
		it.setGPR(ins.Rt(), boolToInt32(uint32(rs) < imm32))
	case "andi":
		it.setGPR(ins.Rt(), int32(uint32(rs)&uint32(ins.Imm())))
	case "ori":
		it.setGPR(ins.Rt(), int32(uint32(rs)|uint32(ins.Imm())))
	case "xori":
		it.setGPR(ins.Rt(), int32(uint32(rs)^uint32(ins.Imm())))
	case "lui":
		it.setGPR(ins.Rt(), int32(uint32(ins.Imm())<<16))
	}
}

func (it *Interp) execSync() {
	if it.BuildCFG {
		it.CFG.DropAllBlocks()
		it.Current = nil
	}
	it.S.PC += 4
	if it.BuildCFG {
		it.ensureBlock(it.S.PC)
	}
}

func (it *Interp) execTeq(ins *isa.Instr) {
	if it.gpr(ins.Rs()) == it.gpr(ins.Rt()) {
		it.logTrap(ins.Addr())
		it.S.Brk = true
	}
	it.S.PC += 4
}

func (it *Interp) execSyscall(ins *isa.Instr) error {
	it.S.PC += 4
	if it.OnHalt != nil {
		it.OnHalt(it)
	}
	it.S.Brk = true
	return nil
}
