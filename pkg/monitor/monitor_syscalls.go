package monitor

import (
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

// remapIOFlags translates the guest's O_* bit pattern (which follows
// the same little-endian MIPS libc convention dsheffie/mips32-bt's
// remapIOFlags assumes) into the host's os.OpenFile flags. Only the
// handful of bits a statically linked newlib-style binary actually
// uses are handled; anything else is ignored rather than rejected,
// matching the original's best-effort remap.
func remapIOFlags(guestFlags uint32) int {
	const (
		oRDONLY = 0x0
		oWRONLY = 0x1
		oRDWR   = 0x2
		oCREAT  = 0x0200
		oTRUNC  = 0x0400
		oAPPEND = 0x0008
	)
	flags := 0
	switch guestFlags & 0x3 {
	case oWRONLY:
		flags |= os.O_WRONLY
	case oRDWR:
		flags |= os.O_RDWR
	default:
		flags |= os.O_RDONLY
	}
	if guestFlags&oCREAT != 0 {
		flags |= os.O_CREATE
	}
	if guestFlags&oTRUNC != 0 {
		flags |= os.O_TRUNC
	}
	if guestFlags&oAPPEND != 0 {
		flags |= os.O_APPEND
	}
	return flags
}

func readCString(s *state.State, addr uint32) (string, error) {
	var b []byte
	for {
		c, err := s.LoadByte(addr)
		if err != nil {
			return "", err
		}
		if c == 0 {
			break
		}
		b = append(b, c)
		addr++
	}
	return string(b), nil
}

func writeCString(s *state.State, addr uint32, str string) error {
	for i := 0; i < len(str); i++ {
		if err := s.StoreByte(addr+uint32(i), str[i]); err != nil {
			return err
		}
	}
	return s.StoreByte(addr+uint32(len(str)), 0)
}

func (m *Monitor) doOpen(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	path, err := readCString(s, gpr(isa.RA0))
	if err != nil {
		return err
	}
	flags := remapIOFlags(gpr(isa.RA1))
	f, err := os.OpenFile(path, flags, 0600) // S_IRUSR|S_IWUSR
	if err != nil {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	fd := m.nextFD
	m.nextFD++
	m.Files[fd] = f
	setGPR(isa.RV0, uint32(fd))
	return nil
}

func (m *Monitor) doRead(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	fd := int32(gpr(isa.RA0))
	buf := gpr(isa.RA1)
	n := gpr(isa.RA2)
	f, ok := m.Files[fd]
	if !ok {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	tmp := make([]byte, n)
	nread, err := f.Read(tmp)
	if err != nil && err != io.EOF {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	for i := 0; i < nread; i++ {
		if err := s.StoreByte(buf+uint32(i), tmp[i]); err != nil {
			return err
		}
	}
	setGPR(isa.RV0, uint32(nread))
	return nil
}

func (m *Monitor) doWrite(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	fd := int32(gpr(isa.RA0))
	buf := gpr(isa.RA1)
	n := gpr(isa.RA2)
	f, ok := m.Files[fd]
	if !ok {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	tmp := make([]byte, n)
	for i := uint32(0); i < n; i++ {
		b, err := s.LoadByte(buf + i)
		if err != nil {
			return err
		}
		tmp[i] = b
	}
	nwrote, err := f.Write(tmp)
	if err != nil {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	setGPR(isa.RV0, uint32(nwrote))
	return nil
}

func (m *Monitor) doLseek(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	fd := int32(gpr(isa.RA0))
	off := int64(int32(gpr(isa.RA1)))
	whence := int(gpr(isa.RA2))
	f, ok := m.Files[fd]
	if !ok {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	pos, err := f.Seek(off, whence)
	if err != nil {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	setGPR(isa.RV0, uint32(pos))
	return nil
}

func (m *Monitor) doClose(gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	fd := int32(gpr(isa.RA0))
	if fd <= 2 {
		setGPR(isa.RV0, 0)
		return nil
	}
	f, ok := m.Files[fd]
	if !ok {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	delete(m.Files, fd)
	if err := f.Close(); err != nil {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	setGPR(isa.RV0, 0)
	return nil
}

// writeStat32 fills monitor.hh's stat32_t field-for-field: 16-bit
// dev/ino/mode-adjacent fields, 32-bit size/time/block fields, with
// st_atime/st_mtime/st_ctime always zeroed (the original never fills
// them in either).
func writeStat32(s *state.State, addr uint32, st *unix.Stat_t) error {
	u16 := func(off uint32, v uint16) error { return s.StoreHalf(addr+off, v) }
	u32 := func(off uint32, v uint32) error { return s.StoreWord(addr+off, v) }

	if err := u16(0, uint16(st.Dev)); err != nil {
		return err
	}
	if err := u16(2, uint16(st.Ino)); err != nil {
		return err
	}
	if err := u32(4, uint32(st.Mode)); err != nil {
		return err
	}
	if err := u16(8, uint16(st.Nlink)); err != nil {
		return err
	}
	if err := u16(10, uint16(st.Uid)); err != nil {
		return err
	}
	if err := u16(12, uint16(st.Gid)); err != nil {
		return err
	}
	if err := u16(14, uint16(st.Rdev)); err != nil {
		return err
	}
	if err := u32(16, uint32(st.Size)); err != nil {
		return err
	}
	if err := u32(20, 0); err != nil { // _st_atime left unset like the original
		return err
	}
	if err := u32(24, 0); err != nil { // st_spare1
		return err
	}
	if err := u32(28, 0); err != nil { // _st_mtime
		return err
	}
	if err := u32(32, 0); err != nil { // st_spare2
		return err
	}
	if err := u32(36, 0); err != nil { // _st_ctime
		return err
	}
	if err := u32(40, 0); err != nil { // st_spare3
		return err
	}
	if err := u32(44, uint32(st.Blksize)); err != nil {
		return err
	}
	if err := u32(48, uint32(st.Blocks)); err != nil {
		return err
	}
	if err := u32(52, 0); err != nil {
		return err
	}
	return u32(56, 0)
}

func (m *Monitor) doFstat(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	fd := int32(gpr(isa.RA0))
	f, ok := m.Files[fd]
	if !ok {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	if err := writeStat32(s, gpr(isa.RA1), &st); err != nil {
		return err
	}
	setGPR(isa.RV0, 0)
	return nil
}

// syntheticClock derives a (seconds, micros) pair from the instruction
// counter when EnableClockFuncts is false, matching monitor.hh's
// icnt/(icountMIPS*1e6) branch.
func (m *Monitor) syntheticClock(icnt uint64) (sec, usec uint32) {
	totalUsec := float64(icnt) / (m.IcountMIPS)
	sec = uint32(totalUsec / 1e6)
	usec = uint32(uint64(totalUsec) % 1000000)
	return
}

func (m *Monitor) doGettimeofday(s *state.State, gpr func(uint32) uint32) error {
	base := gpr(isa.RA0)
	var sec, usec uint32
	if m.EnableClockFuncts {
		now := time.Now()
		sec = uint32(now.Unix())
		usec = uint32(now.Nanosecond() / 1000)
	} else {
		sec, usec = m.syntheticClock(s.Icnt)
	}
	if err := s.StoreWord(base, sec); err != nil {
		return err
	}
	return s.StoreWord(base+4, usec)
}

func (m *Monitor) doTimes(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	base := gpr(isa.RA0)
	var utime uint32
	if m.EnableClockFuncts {
		utime = uint32(time.Now().Unix())
	} else {
		// "linux 100 ticks/sec" convention, matching the original.
		utime = uint32((float64(s.Icnt) / m.IcountMIPS) * 100)
	}
	for i, v := range []uint32{utime, 0, 0, 0} {
		if err := s.StoreWord(base+uint32(i*4), v); err != nil {
			return err
		}
	}
	setGPR(isa.RV0, utime)
	return nil
}

func (m *Monitor) doGetargs(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	argvBase := gpr(isa.RA0)
	n := len(m.Argv)
	if n > MARGS {
		n = MARGS
	}
	strBase := argvBase + uint32(n+1)*4
	offset := strBase
	for i := 0; i < n; i++ {
		if err := s.StoreWord(argvBase+uint32(i*4), offset); err != nil {
			return err
		}
		if err := writeCString(s, offset, m.Argv[i]); err != nil {
			return err
		}
		offset += uint32(len(m.Argv[i]) + 1)
	}
	if err := s.StoreWord(argvBase+uint32(n*4), 0); err != nil {
		return err
	}
	setGPR(isa.RV0, uint32(n))
	return nil
}

func (m *Monitor) doGetcwd(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	cwd, err := os.Getwd()
	if err != nil {
		setGPR(isa.RV0, 0)
		return nil
	}
	if err := writeCString(s, gpr(isa.RA0), cwd); err != nil {
		return err
	}
	setGPR(isa.RV0, gpr(isa.RA0))
	return nil
}

func (m *Monitor) doChdir(s *state.State, gpr func(uint32) uint32, setGPR func(uint32, uint32)) error {
	path, err := readCString(s, gpr(isa.RA0))
	if err != nil {
		return err
	}
	if err := os.Chdir(path); err != nil {
		setGPR(isa.RV0, ^uint32(0))
		return nil
	}
	setGPR(isa.RV0, 0)
	return nil
}
