package isa

import "fmt"

// Decode turns a 32-bit instruction word (already in host byte order)
// occupying address addr into its typed variant. It returns ErrDecode,
// wrapped with the offending word and address, for anything this
// simulator's table does not recognise — coprocessor-2, most reserved
// encodings outside the monitor convention, and unassigned funct codes.
func Decode(word, addr uint32) (*Instr, error) {
	op := Opcode(word)
	switch {
	case op == OpSpecial:
		return decodeRType(word, addr)
	case op == OpRegImm:
		return decodeRegImm(word, addr)
	case op == OpJ || op == OpJal:
		return decodeJType(word, addr)
	case op == OpCop0:
		return decodeCop0(word, addr)
	case op == OpCop1:
		return decodeCop1(word, addr)
	case op == OpCop1x:
		return decodeCop1x(word, addr)
	case op == OpCop2:
		return nil, fmt.Errorf("%w: coprocessor-2 word %#08x at %#08x", ErrDecode, word, addr)
	case op == OpSpecial2:
		return decodeSpecial2(word, addr)
	case op == OpSpecial3:
		return decodeSpecial3(word, addr)
	case op == OpLl:
		return &Instr{kind: KindLoadLinked, op: "ll", word: word, addr: addr, rs: Rs(word), rt: Rt(word), imm: Imm16(word)}, nil
	case op == OpSc:
		return &Instr{kind: KindStoreCond, op: "sc", word: word, addr: addr, rs: Rs(word), rt: Rt(word), imm: Imm16(word)}, nil
	default:
		return decodeIType(word, addr)
	}
}

// OpMonitor is the primary opcode Decode treats as a host-service trap
// rather than an illegal instruction. The convention: opcode 0x3f (the highest
// reserved SPECIAL3-adjacent slot) is never a real MIPS32 opcode, so it
// is free for this project's monitor ABI to claim.
const OpMonitor = 0x3f

func decodeMonitor(word, addr uint32) *Instr {
	return &Instr{kind: KindMonitor, op: "monitor", word: word, addr: addr, reason: RsvdArg(word)}
}

func decodeRType(word, addr uint32) (*Instr, error) {
	fn := Funct(word)
	base := Instr{word: word, addr: addr, rs: Rs(word), rt: Rt(word), rd: Rd(word), shamt: Shamt(word), funct: fn}
	switch fn {
	case FnSll:
		base.kind, base.op = KindShift, "sll"
	case FnSrl:
		base.kind, base.op = KindShift, "srl"
	case FnSra:
		base.kind, base.op = KindShift, "sra"
	case FnSllv:
		base.kind, base.op = KindShiftV, "sllv"
	case FnSrlv:
		base.kind, base.op = KindShiftV, "srlv"
	case FnSrav:
		base.kind, base.op = KindShiftV, "srav"
	case FnJr:
		base.kind, base.op = KindJumpReg, "jr"
	case FnJalr:
		base.kind, base.op = KindJumpReg, "jalr"
	case FnMovz:
		base.kind, base.op = KindMovCond, "movz"
	case FnMovn:
		base.kind, base.op = KindMovCond, "movn"
	case FnSyscall:
		base.kind, base.op = KindSyscall, "syscall"
	case FnBreak:
		base.kind, base.op = KindBreak, "break"
	case FnSync:
		base.kind, base.op = KindSync, "sync"
	case FnMfhi:
		base.kind, base.op = KindHiLoMove, "mfhi"
	case FnMthi:
		base.kind, base.op = KindHiLoMove, "mthi"
	case FnMflo:
		base.kind, base.op = KindHiLoMove, "mflo"
	case FnMtlo:
		base.kind, base.op = KindHiLoMove, "mtlo"
	case FnMult:
		base.kind, base.op = KindMulDiv, "mult"
	case FnMultu:
		base.kind, base.op = KindMulDiv, "multu"
	case FnDiv:
		base.kind, base.op = KindMulDiv, "div"
	case FnDivu:
		base.kind, base.op = KindMulDiv, "divu"
	case FnAdd:
		base.kind, base.op = KindRArith, "add"
	case FnAddu:
		base.kind, base.op = KindRArith, "addu"
	case FnSub:
		base.kind, base.op = KindRArith, "sub"
	case FnSubu:
		base.kind, base.op = KindRArith, "subu"
	case FnAnd:
		base.kind, base.op = KindRArith, "and"
	case FnOr:
		base.kind, base.op = KindRArith, "or"
	case FnXor:
		base.kind, base.op = KindRArith, "xor"
	case FnNor:
		base.kind, base.op = KindRArith, "nor"
	case FnSlt:
		base.kind, base.op = KindRArith, "slt"
	case FnSltu:
		base.kind, base.op = KindRArith, "sltu"
	case FnTeq:
		base.kind, base.op = KindTeq, "teq"
	default:
		return nil, fmt.Errorf("%w: r-type funct %#x at %#08x", ErrDecode, fn, addr)
	}
	return &base, nil
}

func decodeRegImm(word, addr uint32) (*Instr, error) {
	rt := Rt(word)
	base := Instr{word: word, addr: addr, rs: Rs(word), imm: Imm16(word), kind: KindBranch}
	switch rt {
	case RtBltz:
		base.op = "bltz"
	case RtBgez:
		base.op = "bgez"
	case RtBltzl:
		base.kind, base.op = KindBranchLikely, "bltzl"
	case RtBgezl:
		base.kind, base.op = KindBranchLikely, "bgezl"
	default:
		return nil, fmt.Errorf("%w: regimm rt %#x at %#08x", ErrDecode, rt, addr)
	}
	return &base, nil
}

func decodeJType(word, addr uint32) (*Instr, error) {
	op := Opcode(word)
	i := &Instr{kind: KindJump, word: word, addr: addr, target: Target26(word) << 2}
	if op == OpJal {
		i.op = "jal"
	} else {
		i.op = "j"
	}
	return i, nil
}

func decodeIType(word, addr uint32) (*Instr, error) {
	op := Opcode(word)
	base := Instr{word: word, addr: addr, rs: Rs(word), rt: Rt(word), imm: Imm16(word)}
	switch op {
	case OpBeq:
		base.kind, base.op = KindBranch, "beq"
	case OpBne:
		base.kind, base.op = KindBranch, "bne"
	case OpBlez:
		base.kind, base.op = KindBranch, "blez"
	case OpBgtz:
		base.kind, base.op = KindBranch, "bgtz"
	case OpBeql:
		base.kind, base.op = KindBranchLikely, "beql"
	case OpBnel:
		base.kind, base.op = KindBranchLikely, "bnel"
	case OpBlezl:
		base.kind, base.op = KindBranchLikely, "blezl"
	case OpBgtzl:
		base.kind, base.op = KindBranchLikely, "bgtzl"
	case OpAddi:
		base.kind, base.op = KindImmArith, "addi"
	case OpAddiu:
		base.kind, base.op = KindImmArith, "addiu"
	case OpSlti:
		base.kind, base.op = KindImmArith, "slti"
	case OpSltiu:
		base.kind, base.op = KindImmArith, "sltiu"
	case OpAndi:
		base.kind, base.op = KindImmArith, "andi"
	case OpOri:
		base.kind, base.op = KindImmArith, "ori"
	case OpXori:
		base.kind, base.op = KindImmArith, "xori"
	case OpLui:
		base.kind, base.op = KindImmArith, "lui"
	case OpLb:
		base.kind, base.op = KindLoad, "lb"
	case OpLh:
		base.kind, base.op = KindLoad, "lh"
	case OpLw:
		base.kind, base.op = KindLoad, "lw"
	case OpLbu:
		base.kind, base.op = KindLoad, "lbu"
	case OpLhu:
		base.kind, base.op = KindLoad, "lhu"
	case OpLwl:
		base.kind, base.op = KindUnalignedLoad, "lwl"
	case OpLwr:
		base.kind, base.op = KindUnalignedLoad, "lwr"
	case OpSb:
		base.kind, base.op = KindStore, "sb"
	case OpSh:
		base.kind, base.op = KindStore, "sh"
	case OpSw:
		base.kind, base.op = KindStore, "sw"
	case OpSwl:
		base.kind, base.op = KindUnalignedStore, "swl"
	case OpSwr:
		base.kind, base.op = KindUnalignedStore, "swr"
	case OpCache:
		base.kind, base.op = KindSync, "cache" // treated as a no-op hint, same CFG impact as sync
	case OpLwc1:
		base.kind, base.op, base.ft = KindFPLoad, "lwc1", Rt(word)
		base.fd = base.ft
	case OpLdc1:
		base.kind, base.op, base.ft = KindFPLoad, "ldc1", Rt(word)
		base.fd = base.ft
	case OpSwc1:
		base.kind, base.op, base.fs = KindFPStore, "swc1", Rt(word)
	case OpSdc1:
		base.kind, base.op, base.fs = KindFPStore, "sdc1", Rt(word)
	case OpMonitor:
		return decodeMonitor(word, addr), nil
	default:
		return nil, fmt.Errorf("%w: i-type opcode %#x at %#08x", ErrDecode, op, addr)
	}
	return &base, nil
}

func decodeCop0(word, addr uint32) (*Instr, error) {
	rs := Rs(word)
	switch rs {
	case Cop0Mfc0:
		return &Instr{kind: KindCop0Move, op: "mfc0", word: word, addr: addr, rt: Rt(word), rd: Rd(word)}, nil
	case Cop0Mtc0:
		return &Instr{kind: KindCop0Move, op: "mtc0", word: word, addr: addr, rt: Rt(word), rd: Rd(word)}, nil
	default:
		return nil, fmt.Errorf("%w: cop0 rs %#x at %#08x", ErrDecode, rs, addr)
	}
}

func decodeCop1(word, addr uint32) (*Instr, error) {
	rs := Rs(word)
	base := Instr{word: word, addr: addr, rt: Rt(word), fs: Fs(word), fd: Fd(word), ft: Ft(word), fmt: rs}
	switch {
	case rs == Cop1Mfc1:
		base.kind, base.op = KindFPMove, "mfc1"
		base.fs = Fs(word)
	case rs == Cop1Cfc1:
		base.kind, base.op = KindFPMove, "cfc1"
	case rs == Cop1Mtc1:
		base.kind, base.op = KindFPMove, "mtc1"
	case rs == Cop1Ctc1:
		base.kind, base.op = KindFPMove, "ctc1"
	case rs == Cop1Bc1:
		nd, tf := NDTF(word)
		base.kind = KindFPBranch
		base.imm = Imm16(word)
		base.cc = CC(word)
		if tf == 1 {
			base.op = "bc1t"
		} else {
			base.op = "bc1f"
		}
		if nd == 1 {
			if tf == 1 {
				base.op = "bc1tl"
			} else {
				base.op = "bc1fl"
			}
			base.kind = KindFPBranch
		}
	case rs == Cop1FmtS || rs == Cop1FmtD || rs == Cop1FmtW:
		return decodeCop1Arith(word, addr, rs)
	default:
		return nil, fmt.Errorf("%w: cop1 fmt/rs %#x at %#08x", ErrDecode, rs, addr)
	}
	return &base, nil
}

func decodeCop1Arith(word, addr, fmtField uint32) (*Instr, error) {
	fn := Funct(word)
	base := Instr{word: word, addr: addr, fmt: fmtField, fs: Fs(word), ft: Ft(word), fd: Fd(word), rt: Rt(word), funct: fn}
	if fn&0x30 == Fp1CBase {
		base.kind, base.op, base.cond, base.cc = KindFPCompare, "c.cond.fmt", Cond(word), CompareCC(word)
		return &base, nil
	}
	switch fn {
	case Fp1Add:
		base.kind, base.op = KindFPArith, "add"
	case Fp1Sub:
		base.kind, base.op = KindFPArith, "sub"
	case Fp1Mul:
		base.kind, base.op = KindFPArith, "mul"
	case Fp1Div:
		base.kind, base.op = KindFPArith, "div"
	case Fp1Sqrt:
		base.kind, base.op = KindFPArith, "sqrt"
	case Fp1Abs:
		base.kind, base.op = KindFPArith, "abs"
	case Fp1Mov:
		base.kind, base.op = KindFPArith, "mov"
	case Fp1Neg:
		base.kind, base.op = KindFPArith, "neg"
	case Fp1Recip:
		base.kind, base.op = KindFPArith, "recip"
	case Fp1Rsqrt:
		base.kind, base.op = KindFPArith, "rsqrt"
	case Fp1RoundW, Fp1TruncW, Fp1CeilW, Fp1FloorW, Fp1CvtS, Fp1CvtD, Fp1CvtW:
		base.kind, base.op = KindFPConvert, cvtName(fn)
	case Fp1MovZ:
		base.kind, base.op = KindFPCondMove, "movz.fmt"
	case Fp1MovN:
		base.kind, base.op = KindFPCondMove, "movn.fmt"
	default:
		return nil, fmt.Errorf("%w: cop1 funct %#x at %#08x", ErrDecode, fn, addr)
	}
	return &base, nil
}

func cvtName(fn uint32) string {
	switch fn {
	case Fp1RoundW:
		return "round.w"
	case Fp1TruncW:
		return "trunc.w"
	case Fp1CeilW:
		return "ceil.w"
	case Fp1FloorW:
		return "floor.w"
	case Fp1CvtS:
		return "cvt.s"
	case Fp1CvtD:
		return "cvt.d"
	case Fp1CvtW:
		return "cvt.w"
	}
	return "cvt.?"
}

func decodeCop1x(word, addr uint32) (*Instr, error) {
	fn := word & 0x3f
	base := Instr{word: word, addr: addr, rs: Rs(word), rt: Rt(word), fs: Fs(word), ft: Ft(word), fd: Fd(word)}
	switch fn {
	case Fp1xLwxc1:
		base.kind, base.op = KindFPMemX, "lwxc1"
	case Fp1xLdxc1:
		base.kind, base.op = KindFPMemX, "ldxc1"
	case Fp1xSwxc1:
		base.kind, base.op = KindFPMemX, "swxc1"
	case Fp1xSdxc1:
		base.kind, base.op = KindFPMemX, "sdxc1"
	case Fp1xMaddS:
		base.kind, base.op, base.fmt = KindFPMulAddSub, "madd.s", Cop1FmtS
	case Fp1xMaddD:
		base.kind, base.op, base.fmt = KindFPMulAddSub, "madd.d", Cop1FmtD
	case Fp1xMsubS:
		base.kind, base.op, base.fmt = KindFPMulAddSub, "msub.s", Cop1FmtS
	case Fp1xMsubD:
		base.kind, base.op, base.fmt = KindFPMulAddSub, "msub.d", Cop1FmtD
	default:
		return nil, fmt.Errorf("%w: cop1x funct %#x at %#08x", ErrDecode, fn, addr)
	}
	return &base, nil
}

func decodeSpecial2(word, addr uint32) (*Instr, error) {
	fn := Funct(word)
	base := Instr{word: word, addr: addr, rs: Rs(word), rt: Rt(word), rd: Rd(word)}
	switch fn {
	case Fn2Madd:
		base.kind, base.op = KindMulAddSub, "madd"
	case Fn2Maddu:
		base.kind, base.op = KindMulAddSub, "maddu"
	case Fn2Msub:
		base.kind, base.op = KindMulAddSub, "msub"
	case Fn2Mul:
		base.kind, base.op = KindMulImm, "mul"
	case Fn2Clz:
		base.kind, base.op = KindClz, "clz"
	default:
		return nil, fmt.Errorf("%w: special2 funct %#x at %#08x", ErrDecode, fn, addr)
	}
	return &base, nil
}

func decodeSpecial3(word, addr uint32) (*Instr, error) {
	fn := Funct(word)
	base := Instr{word: word, addr: addr, rs: Rs(word), rt: Rt(word), rd: Rd(word), shamt: Shamt(word)}
	switch fn {
	case Fn3Ext:
		base.kind, base.op = KindBitfield, "ext"
	case Fn3Ins:
		base.kind, base.op = KindBitfield, "ins"
	case Fn3Bshfl:
		switch Shamt(word) {
		case ShamtSeb:
			base.kind, base.op = KindBitfield, "seb"
		case ShamtSeh:
			base.kind, base.op = KindBitfield, "seh"
		default:
			return nil, fmt.Errorf("%w: special3 bshfl shamt %#x at %#08x", ErrDecode, Shamt(word), addr)
		}
	default:
		return nil, fmt.Errorf("%w: special3 funct %#x at %#08x", ErrDecode, fn, addr)
	}
	return &base, nil
}
