package interp

import (
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/isa"
)

// execDelaySlot executes the instruction at pc+4 unconditionally. It is
// the branch/jump family's shared "always run the delay slot" step,
// implemented as a direct recursive call to step (matching
// execMips<appendIns,EL>'s own recursion in the original) rather than a
// separate code path, so every delay-slot instruction — including one
// that is itself a branch — gets identical fetch/CFG/icnt handling.
func (it *Interp) execDelaySlot() error {
	it.S.PC += 4
	return it.step()
}

// appendSkippedDelaySlot records the delay-slot word into the current
// block without executing it, the branch-likely-not-taken rule from
// _bgez_bltz/branchLikely: CFG discovery still needs to see the
// instruction so later disassembly and region admissibility checks are
// accurate, but it must never run (its architectural effect is
// annulled).
func (it *Interp) appendSkippedDelaySlot() error {
	pc := it.S.PC + 4
	if !it.BuildCFG {
		return nil
	}
	word, err := it.S.LoadWord(pc)
	if err != nil {
		return fmt.Errorf("interp: annulled delay slot fetch at %#08x: %w", pc, err)
	}
	it.ensureBlock(pc)
	return it.CFG.AddIns(it.Current, pc, word)
}

func (it *Interp) execBranch(ins *isa.Instr) error {
	if it.Current != nil {
		it.Current.SetTermAddr(ins.Addr())
	}
	npc := it.S.PC + 4
	take := it.branchTaken(ins)
	if err := it.execDelaySlot(); err != nil {
		return err
	}
	if take {
		it.S.PC = npc + int32ToUint32(int32(endian.SignExtend16(ins.Imm())<<2))
	}
	it.advanceBlock(it.S.PC)
	return nil
}

func int32ToUint32(v int32) uint32 { return uint32(v) }

func (it *Interp) execBranchLikely(ins *isa.Instr) error {
	if it.Current != nil {
		it.Current.SetTermAddr(ins.Addr())
		it.Current.BranchLikely = true
	}
	npc := it.S.PC + 4
	take := it.branchTaken(ins)
	if take {
		if err := it.execDelaySlot(); err != nil {
			return err
		}
		it.S.PC = npc + int32ToUint32(int32(endian.SignExtend16(ins.Imm())<<2))
	} else {
		if err := it.appendSkippedDelaySlot(); err != nil {
			return err
		}
		it.S.PC = npc + 4
	}
	it.advanceBlock(it.S.PC)
	return nil
}

func (it *Interp) branchTaken(ins *isa.Instr) bool {
	rs := it.gpr(ins.Rs())
	switch ins.Op() {
	case "beq", "beql":
		return rs == it.gpr(ins.Rt())
	case "bne", "bnel":
		return rs != it.gpr(ins.Rt())
	case "blez", "blezl":
		return rs <= 0
	case "bgtz", "bgtzl":
		return rs > 0
	case "bltz", "bltzl":
		return rs < 0
	case "bgez", "bgezl":
		return rs >= 0
	}
	return false
}

func (it *Interp) execJump(ins *isa.Instr) error {
	if it.Current != nil {
		it.Current.SetTermAddr(ins.Addr())
	}
	jaddr := ins.Target()
	if ins.Op() == "jal" {
		if it.Current != nil {
			it.Current.HasJAL = true
		}
		it.setGPR(isa.RRA, int32(it.S.PC+8))
	}
	it.S.PC += 4
	jaddr |= it.S.PC &^ 0x0fffffff
	if err := it.step(); err != nil {
		return err
	}
	it.S.PC = jaddr
	it.advanceBlock(it.S.PC)
	return nil
}

func (it *Interp) execJumpReg(ins *isa.Instr) error {
	if it.Current != nil {
		it.Current.SetTermAddr(ins.Addr())
	}
	jaddr := uint32(it.gpr(ins.Rs()))
	if ins.Op() == "jalr" {
		if it.Current != nil {
			it.Current.HasJALR = true
		}
		it.setGPR(ins.Rd(), int32(it.S.PC+8))
	} else if it.Current != nil {
		it.Current.HasJR = true
	}
	it.S.PC += 4
	if err := it.step(); err != nil {
		return err
	}
	it.S.PC = jaddr
	it.advanceBlock(it.S.PC)
	return nil
}
