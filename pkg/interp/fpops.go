package interp

import (
	"math"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

// Double-precision values occupy a register pair (fs, fs+1) with the
// low-order 32 bits in the even register, matching the FR=0 MIPS32
// register model dsheffie/mips32-bt targets (no odd/even FPR aliasing
// complications, since this simulator's CP1 bank is a flat array rather
// than a modelled FPU with FR-mode switching — a Non-goal).
func (it *Interp) getFloat32(fs uint32) float32 {
	return math.Float32frombits(it.S.CPR1[fs])
}

func (it *Interp) setFloat32(fs uint32, v float32) {
	it.S.CPR1[fs] = math.Float32bits(v)
}

func (it *Interp) getFloat64(fs uint32) float64 {
	lo := uint64(it.S.CPR1[fs])
	hi := uint64(it.S.CPR1[fs+1])
	return math.Float64frombits(lo | hi<<32)
}

func (it *Interp) setFloat64(fs uint32, v float64) {
	bits := math.Float64bits(v)
	it.S.CPR1[fs] = uint32(bits)
	it.S.CPR1[fs+1] = uint32(bits >> 32)
}

func (it *Interp) execFPArith(ins *isa.Instr) error {
	isDouble := ins.Fmt() == isa.Cop1FmtD
	if isDouble {
		return it.execFPArithD(ins)
	}
	return it.execFPArithS(ins)
}

func (it *Interp) execFPArithS(ins *isa.Instr) error {
	fs := it.getFloat32(ins.Fs())
	var out float32
	switch ins.Op() {
	case "abs":
		out = float32(math.Abs(float64(fs)))
	case "neg":
		out = -fs
	case "mov":
		out = fs
	case "sqrt":
		out = float32(math.Sqrt(float64(fs)))
	case "recip":
		out = 1 / fs
	case "rsqrt":
		out = float32(1 / math.Sqrt(float64(fs)))
	case "add":
		out = fs + it.getFloat32(ins.Ft())
	case "sub":
		out = fs - it.getFloat32(ins.Ft())
	case "mul":
		out = fs * it.getFloat32(ins.Ft())
	case "div":
		ft := it.getFloat32(ins.Ft())
		if ft == 0 {
			out = math.MaxFloat32
		} else {
			out = fs / ft
		}
	}
	it.setFloat32(ins.Fd(), out)
	return nil
}

func (it *Interp) execFPArithD(ins *isa.Instr) error {
	fs := it.getFloat64(ins.Fs())
	var out float64
	switch ins.Op() {
	case "abs":
		out = math.Abs(fs)
	case "neg":
		out = -fs
	case "mov":
		out = fs
	case "sqrt":
		out = math.Sqrt(fs)
	case "recip":
		out = 1 / fs
	case "rsqrt":
		out = 1 / math.Sqrt(fs)
	case "add":
		out = fs + it.getFloat64(ins.Ft())
	case "sub":
		out = fs - it.getFloat64(ins.Ft())
	case "mul":
		out = fs * it.getFloat64(ins.Ft())
	case "div":
		ft := it.getFloat64(ins.Ft())
		if ft == 0 {
			out = math.MaxFloat64
		} else {
			out = fs / ft
		}
	}
	it.setFloat64(ins.Fd(), out)
	return nil
}

// execFPMulAddSub implements the cop1x fused madd.fmt/msub.fmt: fd =
// (fs*ft)+fr for madd, fd = (fs*ft)-fr for msub. fr is the third source
// register carried in the instruction's rs field (the COP1X encoding's
// fr slot), not a GPR.
func (it *Interp) execFPMulAddSub(ins *isa.Instr) error {
	isDouble := ins.Fmt() == isa.Cop1FmtD
	isSub := ins.Op() == "msub.s" || ins.Op() == "msub.d"
	if isDouble {
		fr, fs, ft := it.getFloat64(ins.Rs()), it.getFloat64(ins.Fs()), it.getFloat64(ins.Ft())
		prod := fs * ft
		if isSub {
			it.setFloat64(ins.Fd(), prod-fr)
		} else {
			it.setFloat64(ins.Fd(), prod+fr)
		}
		return nil
	}
	fr, fs, ft := it.getFloat32(ins.Rs()), it.getFloat32(ins.Fs()), it.getFloat32(ins.Ft())
	prod := fs * ft
	if isSub {
		it.setFloat32(ins.Fd(), prod-fr)
	} else {
		it.setFloat32(ins.Fd(), prod+fr)
	}
	return nil
}

// execFPConvert implements round.w/trunc.w/ceil.w/floor.w/cvt.s/cvt.d/
// cvt.w. Rounding modes other than truncation (round-toward-zero) are
// not separately modelled — the Non-goal on exact IEEE-754 exception
// semantics covers the rest of the rounding-mode state machine — but
// each named conversion still picks the right math.Round variant.
func (it *Interp) execFPConvert(ins *isa.Instr) error {
	src := func() float64 {
		if ins.Fmt() == isa.Cop1FmtD {
			return it.getFloat64(ins.Fs())
		}
		if ins.Fmt() == isa.Cop1FmtW {
			return float64(int32(it.S.CPR1[ins.Fs()]))
		}
		return float64(it.getFloat32(ins.Fs()))
	}()
	switch ins.Op() {
	case "round.w":
		it.S.CPR1[ins.Fd()] = uint32(int32(math.RoundToEven(src)))
	case "trunc.w":
		it.S.CPR1[ins.Fd()] = uint32(int32(src))
	case "ceil.w":
		it.S.CPR1[ins.Fd()] = uint32(int32(math.Ceil(src)))
	case "floor.w":
		it.S.CPR1[ins.Fd()] = uint32(int32(math.Floor(src)))
	case "cvt.s":
		it.setFloat32(ins.Fd(), float32(src))
	case "cvt.d":
		it.setFloat64(ins.Fd(), src)
	case "cvt.w":
		it.S.CPR1[ins.Fd()] = uint32(int32(src))
	}
	return nil
}

func (it *Interp) execFPCompare(ins *isa.Instr) error {
	var less, equal, unordered bool
	if ins.Fmt() == isa.Cop1FmtD {
		a, b := it.getFloat64(ins.Fs()), it.getFloat64(ins.Ft())
		unordered = math.IsNaN(a) || math.IsNaN(b)
		less, equal = a < b, a == b
	} else {
		a, b := it.getFloat32(ins.Fs()), it.getFloat32(ins.Ft())
		unordered = float32IsNaN(a) || float32IsNaN(b)
		less, equal = a < b, a == b
	}
	cond := ins.Cond()
	result := fpCondResult(cond, less, equal, unordered)
	it.S.FCR1[state.FCR25] = endian.SetBit(it.S.FCR1[state.FCR25], uint(ins.CC()), boolToBit(result))
	return nil
}

func float32IsNaN(f float32) bool { return f != f }

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// fpCondResult evaluates the four-bit c.cond.fmt predicate (MIPS32's
// unordered/equal/less-than combination encoded in the low 3 bits, with
// bit 3 selecting the signalling variant this simulator does not
// distinguish from the quiet one, matching the IEEE-754-exception
// Non-goal).
func fpCondResult(cond uint32, less, equal, unordered bool) bool {
	switch cond & 0x7 {
	case 0: // f / sf
		return false
	case 1: // un / ngle
		return unordered
	case 2: // eq / seq
		return !unordered && equal
	case 3: // ueq / ngl
		return unordered || equal
	case 4: // olt / lt
		return !unordered && less
	case 5: // ult / nge
		return unordered || less
	case 6: // ole / le
		return !unordered && (less || equal)
	case 7: // ule / ngt
		return unordered || less || equal
	}
	return false
}

func (it *Interp) execFPBranch(ins *isa.Instr) error {
	if it.Current != nil {
		it.Current.SetTermAddr(ins.Addr())
	}
	bit := endian.ExtractBit(it.S.FCR1[state.FCR25], uint(ins.CC()))
	tf := ins.Op() == "bc1t" || ins.Op() == "bc1tl"
	take := (bit == 1) == tf
	likely := ins.Op() == "bc1tl" || ins.Op() == "bc1fl"
	npc := it.S.PC + 4
	if likely && it.Current != nil {
		it.Current.BranchLikely = true
	}
	if !likely || take {
		if err := it.execDelaySlot(); err != nil {
			return err
		}
	} else {
		if err := it.appendSkippedDelaySlot(); err != nil {
			return err
		}
	}
	if take {
		it.S.PC = npc + (endian.SignExtend16(ins.Imm()) << 2)
	} else {
		it.S.PC = npc + 4
	}
	it.advanceBlock(it.S.PC)
	return nil
}

func (it *Interp) execFPMove(ins *isa.Instr) {
	switch ins.Op() {
	case "mfc1":
		it.setGPR(ins.Rt(), int32(it.S.CPR1[ins.Fs()]))
	case "mtc1":
		it.S.CPR1[ins.Fs()] = uint32(it.gpr(ins.Rt()))
	case "cfc1":
		it.setGPR(ins.Rt(), int32(it.S.FCR1[state.FCR25]))
	case "ctc1":
		it.S.FCR1[state.FCR25] = uint32(it.gpr(ins.Rt()))
	}
}

func (it *Interp) execFPCondMove(ins *isa.Instr) {
	switch ins.Op() {
	case "movz.fmt":
		if it.gpr(ins.Rt()) == 0 {
			it.S.CPR1[ins.Fd()] = it.S.CPR1[ins.Fs()]
		}
	case "movn.fmt":
		if it.gpr(ins.Rt()) != 0 {
			it.S.CPR1[ins.Fd()] = it.S.CPR1[ins.Fs()]
		}
	}
}

func (it *Interp) execFPLoad(ins *isa.Instr) error {
	ea := it.effAddr(ins)
	switch ins.Op() {
	case "lwc1":
		v, err := it.S.LoadWord(ea)
		if err != nil {
			return err
		}
		it.S.CPR1[ins.Fd()] = v
	case "ldc1":
		lo, err := it.S.LoadWord(ea)
		if err != nil {
			return err
		}
		hi, err := it.S.LoadWord(ea + 4)
		if err != nil {
			return err
		}
		it.S.CPR1[ins.Fd()] = lo
		it.S.CPR1[ins.Fd()+1] = hi
	}
	return nil
}

func (it *Interp) execFPStore(ins *isa.Instr) error {
	ea := it.effAddr(ins)
	switch ins.Op() {
	case "swc1":
		return it.S.StoreWord(ea, it.S.CPR1[ins.Fs()])
	case "sdc1":
		if err := it.S.StoreWord(ea, it.S.CPR1[ins.Fs()]); err != nil {
			return err
		}
		return it.S.StoreWord(ea+4, it.S.CPR1[ins.Fs()+1])
	}
	return nil
}

func (it *Interp) execFPMemX(ins *isa.Instr) error {
	ea := uint32(it.gpr(ins.Rs())) + uint32(it.gpr(ins.Rt()))
	switch ins.Op() {
	case "lwxc1":
		v, err := it.S.LoadWord(ea)
		if err != nil {
			return err
		}
		it.S.CPR1[ins.Fd()] = v
	case "ldxc1":
		lo, err := it.S.LoadWord(ea)
		if err != nil {
			return err
		}
		hi, err := it.S.LoadWord(ea + 4)
		if err != nil {
			return err
		}
		it.S.CPR1[ins.Fd()] = lo
		it.S.CPR1[ins.Fd()+1] = hi
	case "swxc1":
		return it.S.StoreWord(ea, it.S.CPR1[ins.Fs()])
	case "sdxc1":
		if err := it.S.StoreWord(ea, it.S.CPR1[ins.Fs()]); err != nil {
			return err
		}
		return it.S.StoreWord(ea+4, it.S.CPR1[ins.Fs()+1])
	}
	return nil
}

func (it *Interp) execCop0Move(ins *isa.Instr) {
	switch ins.Op() {
	case "mfc0":
		it.setGPR(ins.Rt(), int32(it.S.CPR0[ins.Rd()]))
	case "mtc0":
		it.S.CPR0[ins.Rd()] = uint32(it.gpr(ins.Rt()))
	}
}
