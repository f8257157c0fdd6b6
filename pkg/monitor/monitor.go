// Package monitor implements the host-service trap layer a reserved
// ("monitor") instruction invokes: the small set of POSIX-like
// syscalls a statically linked MIPS binary needs from the simulator
// itself rather than from a kernel. It is grounded on
// dsheffie/mips32-bt's monitor.hh (_monitorBody<EL>'s reason-code
// switch and its byte-swapped stat32/timeval32/tms32 wire structs),
// using golang.org/x/sys/unix for the host-side fstat call, which needs
// a raw syscall-shaped result rather than os.FileInfo's lossy portable
// view.
package monitor

import (
	"fmt"
	"os"

	"github.com/bassosimone/mips32sim/pkg/interp"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

// Reason codes, matching monitor.hh's switch exactly.
const (
	ReasonOpen          = 6
	ReasonRead          = 7
	ReasonWrite         = 8
	ReasonLseek         = 9
	ReasonClose         = 10
	ReasonFstat         = 13
	ReasonGettimeofday  = 33
	ReasonTimes         = 34
	ReasonGetargs       = 35
	ReasonGetcwd        = 37
	ReasonChdir         = 38
	ReasonDisassemble   = 40
	ReasonCycleCounter  = 50
	ReasonFlush1        = 51
	ReasonFlush2        = 52
	ReasonIcntQuery     = 53
	ReasonMemorySize    = 55
)

// K1Size is the simulated KSEG1 base reported by the memory-size query,
// matching monitor.hh's K1SIZE.
const K1Size = 0x80000000

// MARGS bounds how many argv pointers Getargs will copy, matching the
// original's own cap on the same service.
const MARGS = 64

// Monitor holds everything the trap handlers need beyond the machine
// state itself: an open-file table keyed by guest file descriptor, the
// process argv this binary was launched with, a synthetic-vs-real
// clock switch, and an IcountMIPS divisor for the synthetic clock.
type Monitor struct {
	// Files maps guest fds (0/1/2 pre-populated with stdin/stdout/
	// stderr) to host files opened on the guest's behalf.
	Files map[int32]*os.File
	nextFD int32

	Argv []string

	// EnableClockFuncts selects a real wall-clock reading for
	// gettimeofday/times when true, or an icnt-derived synthetic clock
	// when false — monitor.hh's globals::enClockFuncts.
	EnableClockFuncts bool
	// IcountMIPS is the assumed simulated-MIPS rate used to derive a
	// synthetic clock from the instruction counter.
	IcountMIPS float64

	// Disassemble is invoked by ReasonDisassemble to print n
	// instructions starting at pc, the "debug aid" service. Left nil,
	// that reason code is a silent no-op.
	Disassemble func(pc uint32, n int)
}

// New returns a Monitor with stdio pre-populated at guest fds 0-2.
func New(argv []string) *Monitor {
	return &Monitor{
		Files:      map[int32]*os.File{0: os.Stdin, 1: os.Stdout, 2: os.Stderr},
		nextFD:     3,
		Argv:       argv,
		IcountMIPS: 200.0,
	}
}

// Dispatch handles one monitor trap, matching the reason packed into
// ins by pkg/isa's RsvdArg convention. It is installed as an
// interp.Interp's Monitor callback.
func (m *Monitor) Dispatch(it *interp.Interp, ins *isa.Instr) error {
	s := it.S
	gpr := func(r uint32) uint32 { return uint32(s.GPR[r]) }
	setGPR := func(r uint32, v uint32) {
		if r != isa.RZero {
			s.GPR[r] = int32(v)
		}
	}

	switch ins.Reason() {
	case ReasonOpen:
		return m.doOpen(s, gpr, setGPR)
	case ReasonRead:
		return m.doRead(s, gpr, setGPR)
	case ReasonWrite:
		return m.doWrite(s, gpr, setGPR)
	case ReasonLseek:
		return m.doLseek(s, gpr, setGPR)
	case ReasonClose:
		return m.doClose(gpr, setGPR)
	case ReasonFstat:
		return m.doFstat(s, gpr, setGPR)
	case ReasonGettimeofday:
		return m.doGettimeofday(s, gpr)
	case ReasonTimes:
		return m.doTimes(s, gpr, setGPR)
	case ReasonGetargs:
		return m.doGetargs(s, gpr, setGPR)
	case ReasonGetcwd:
		return m.doGetcwd(s, gpr, setGPR)
	case ReasonChdir:
		return m.doChdir(s, gpr, setGPR)
	case ReasonDisassemble:
		if m.Disassemble != nil {
			m.Disassemble(gpr(isa.RA0), int(gpr(isa.RA1)))
		}
		return nil
	case ReasonCycleCounter:
		setGPR(isa.RV0, 0)
		return nil
	case ReasonFlush1, ReasonFlush2:
		return nil
	case ReasonIcntQuery:
		setGPR(isa.RV0, uint32(s.Icnt))
		return nil
	case ReasonMemorySize:
		return m.doMemorySize(s, gpr)
	default:
		return fmt.Errorf("monitor: unhandled reason code %d at pc=%#08x", ins.Reason(), ins.Addr())
	}
}

// doMemorySize writes the {K1SIZE, 0, 0} triple the original's case 55
// stores into the buffer pointed at by $a0.
func (m *Monitor) doMemorySize(s *state.State, gpr func(uint32) uint32) error {
	base := gpr(isa.RA0)
	if err := s.StoreWord(base, K1Size); err != nil {
		return err
	}
	if err := s.StoreWord(base+4, 0); err != nil {
		return err
	}
	return s.StoreWord(base+8, 0)
}
