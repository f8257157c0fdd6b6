package isa

// Kind tags the structural shape of a decoded instruction: which fields
// it carries and how the interpreter and region builder must treat it.
// It is deliberately coarser than the full mnemonic set (Op) — two
// instructions of the same Kind share defines/uses/translatability
// logic and differ only in their concrete operation.
type Kind string

const (
	KindRArith        Kind = "r-arith"        // add/sub/and/or/xor/nor/slt(u)
	KindShift         Kind = "shift"          // sll/srl/sra (shamt-immediate)
	KindShiftV        Kind = "shift-var"      // sllv/srlv/srav (register shift)
	KindMovCond       Kind = "mov-cond"       // movz/movn
	KindMulDiv        Kind = "muldiv"         // mult/multu/div/divu -> hi/lo
	KindMulAddSub     Kind = "special2-macc"  // madd/maddu/msub (special2)
	KindMulImm        Kind = "special2-mul"   // mul (special2, writes rd directly)
	KindClz           Kind = "clz"            // special2 count-leading-zeros
	KindBitfield      Kind = "bitfield"       // special3 ext/ins/seb/seh
	KindHiLoMove      Kind = "hilo-move"      // mfhi/mthi/mflo/mtlo
	KindImmArith      Kind = "i-arith"        // addi(u)/slti(u)/andi/ori/xori/lui
	KindBranch        Kind = "branch"         // beq/bne/blez/bgtz/bltz/bgez
	KindBranchLikely  Kind = "branch-likely"  // beql/bnel/blezl/bgtzl/bltzl/bgezl
	KindJump          Kind = "jump"           // j/jal
	KindJumpReg       Kind = "jump-reg"       // jr/jalr
	KindLoad          Kind = "load"           // lb(u)/lh(u)/lw
	KindStore         Kind = "store"          // sb/sh/sw
	KindUnalignedLoad Kind = "load-unaligned" // lwl/lwr
	KindUnalignedStore Kind = "store-unaligned" // swl/swr
	KindLoadLinked    Kind = "load-linked"    // ll
	KindStoreCond     Kind = "store-cond"     // sc
	KindFPArith       Kind = "fp-arith"       // add.fmt/sub.fmt/mul.fmt/div.fmt/sqrt/abs/neg/mov/recip/rsqrt
	KindFPCompare     Kind = "fp-compare"     // c.cond.fmt
	KindFPBranch      Kind = "fp-branch"      // bc1f/bc1t/bc1fl/bc1tl
	KindFPMove        Kind = "fp-move"        // mfc1/mtc1/cfc1/ctc1
	KindFPCondMove    Kind = "fp-cond-move"   // movz.fmt/movn.fmt
	KindFPConvert     Kind = "fp-convert"     // cvt.*/round.w/trunc.w/ceil.w/floor.w
	KindFPMemX        Kind = "fp-mem-indexed" // lwxc1/ldxc1/swxc1/sdxc1 (cop1x)
	KindFPMulAddSub   Kind = "fp-muladd"      // madd.fmt/msub.fmt (cop1x fused multiply-add)
	KindFPLoad        Kind = "fp-load"        // lwc1/ldc1
	KindFPStore       Kind = "fp-store"       // swc1/sdc1
	KindCop0Move      Kind = "cop0-move"      // mfc0/mtc0
	KindSyscall       Kind = "syscall"
	KindBreak         Kind = "break"
	KindSync          Kind = "sync"
	KindTeq           Kind = "teq"
	KindMonitor       Kind = "monitor" // reserved-opcode host-service trap
	KindInvalid       Kind = "invalid"
)
