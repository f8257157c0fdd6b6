package interp

import (
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/isa"
)

// execMonitor dispatches a reserved-instruction host-service trap. It
// marks the current block's terminator, invokes the installed Monitor
// callback (pkg/monitor's Dispatch is the production implementation),
// and then — matching monitor.hh's _monitor<EL> wrapper — returns
// control to the caller's return address in $ra, exactly like a
// library call returning.
func (it *Interp) execMonitor(ins *isa.Instr) error {
	if it.Current != nil {
		it.Current.SetTermAddr(ins.Addr())
		it.Current.HasMonitor = true
	}
	if it.Monitor == nil {
		return fmt.Errorf("interp: monitor trap (reason %d) at pc=%#08x with no Monitor installed", ins.Reason(), ins.Addr())
	}
	if err := it.Monitor(it, ins); err != nil {
		return err
	}
	if it.S.Brk {
		return nil
	}
	it.S.PC = uint32(it.gpr(isa.RRA))
	it.advanceBlock(it.S.PC)
	return nil
}
