package interp

import (
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/isa"
)

func (it *Interp) effAddr(ins *isa.Instr) uint32 {
	return uint32(it.gpr(ins.Rs())) + endian.SignExtend16(ins.Imm())
}

func (it *Interp) execLoad(ins *isa.Instr) error {
	ea := it.effAddr(ins)
	switch ins.Op() {
	case "lb":
		v, err := it.S.LoadByte(ea)
		if err != nil {
			return err
		}
		it.setGPR(ins.Rt(), int32(endian.SignExtend8(v)))
	case "lbu":
		v, err := it.S.LoadByte(ea)
		if err != nil {
			return err
		}
		it.setGPR(ins.Rt(), int32(v))
	case "lh":
		if ea&1 != 0 {
			return fmt.Errorf("%w: lh at %#08x", ErrUnalignedAccess, ea)
		}
		v, err := it.S.LoadHalf(ea)
		if err != nil {
			return err
		}
		it.setGPR(ins.Rt(), int32(int16(v)))
	case "lhu":
		if ea&1 != 0 {
			return fmt.Errorf("%w: lhu at %#08x", ErrUnalignedAccess, ea)
		}
		v, err := it.S.LoadHalf(ea)
		if err != nil {
			return err
		}
		it.setGPR(ins.Rt(), int32(v))
	case "lw", "ll":
		if ea&3 != 0 {
			return fmt.Errorf("%w: lw at %#08x", ErrUnalignedAccess, ea)
		}
		v, err := it.S.LoadWord(ea)
		if err != nil {
			return err
		}
		it.setGPR(ins.Rt(), int32(v))
	}
	return nil
}

func (it *Interp) execStore(ins *isa.Instr) error {
	ea := it.effAddr(ins)
	switch ins.Op() {
	case "sb":
		return it.S.StoreByte(ea, uint8(it.gpr(ins.Rt())))
	case "sh":
		if ea&1 != 0 {
			return fmt.Errorf("%w: sh at %#08x", ErrUnalignedAccess, ea)
		}
		return it.S.StoreHalf(ea, uint16(it.gpr(ins.Rt())))
	case "sw":
		if ea&3 != 0 {
			return fmt.Errorf("%w: sw at %#08x", ErrUnalignedAccess, ea)
		}
		return it.S.StoreWord(ea, uint32(it.gpr(ins.Rt())))
	}
	return nil
}

// execStoreConditional is sc's single-threaded degenerate form: with no
// other hart able to observe or break the reservation this simulator
// never models, sc always succeeds, matching a single-core LL/SC
// sequence. This is a Non-goal, not a bug — recorded in DESIGN.md.
func (it *Interp) execStoreConditional(ins *isa.Instr) error {
	ea := it.effAddr(ins)
	if ea&3 != 0 {
		return fmt.Errorf("%w: sc at %#08x", ErrUnalignedAccess, ea)
	}
	if err := it.S.StoreWord(ea, uint32(it.gpr(ins.Rt()))); err != nil {
		return err
	}
	it.setGPR(ins.Rt(), 1)
	return nil
}

// execUnalignedLoad implements lwl/lwr exactly as interpret.cc's
// _lwl<EL>/_lwr<EL>: read the aligned word containing ea, then merge a
// byte-aligned slice of it into rt depending on ea's low two bits,
// already corrected for target endianness (EL flips which end of the
// word "left"/"right" refer to).
func (it *Interp) execUnalignedLoad(ins *isa.Instr) error {
	ea := uint32(it.gpr(ins.Rs())) + endian.SignExtend16(ins.Imm())
	ma := ea & 3
	aligned := ea &^ 3
	if it.S.Order == endian.Little {
		ma = 3 - ma
	}
	r, err := it.S.RawWordAt(aligned)
	if err != nil {
		return err
	}
	r = endian.Swap32(it.S.Order, r)
	rt := uint32(it.gpr(ins.Rt()))
	switch ins.Op() {
	case "lwl":
		switch ma & 3 {
		case 0:
			rt = r
		case 1:
			rt = ((r & 0x00ffffff) << 8) | (rt & 0xff)
		case 2:
			rt = ((r & 0x0000ffff) << 16) | (rt & 0xffff)
		case 3:
			rt = ((r & 0x000000ff) << 24) | (rt & 0xffffff)
		}
	case "lwr":
		switch ma & 3 {
		case 0:
			rt = (rt & 0xffffff00) | (r >> 24)
		case 1:
			rt = (rt & 0xffff0000) | (r >> 16)
		case 2:
			rt = (rt & 0xff000000) | (r >> 8)
		case 3:
			rt = r
		}
	}
	it.setGPR(ins.Rt(), int32(rt))
	return nil
}

// execUnalignedStore implements swl/swr exactly as interpret.cc's
// _swl<EL>/_swr<EL>.
func (it *Interp) execUnalignedStore(ins *isa.Instr) error {
	ea := uint32(it.gpr(ins.Rs())) + endian.SignExtend16(ins.Imm())
	ma := ea & 3
	aligned := ea &^ 3
	if it.S.Order == endian.Little {
		ma = 3 - ma
	}
	r, err := it.S.RawWordAt(aligned)
	if err != nil {
		return err
	}
	r = endian.Swap32(it.S.Order, r)
	x := uint32(it.gpr(ins.Rt()))
	var xx uint32
	switch ins.Op() {
	case "swl":
		xs := x >> (8 * ma)
		m := ^uint32(0)
		if sh := 8 * (4 - ma); sh < 32 {
			m = ^((uint32(1) << sh) - 1)
		} else {
			m = 0
		}
		xx = (r & m) | xs
	case "swr":
		xs := 8 * (3 - ma)
		rm := (uint32(1) << xs) - 1
		xx = (x << xs) | (rm & r)
	}
	return it.S.StoreRawWordAt(aligned, endian.Swap32(it.S.Order, xx))
}
