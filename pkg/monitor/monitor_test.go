package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/interp"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

func newMachine(t *testing.T) (*state.State, *interp.Interp) {
	t.Helper()
	s := state.New(1<<16, endian.Little)
	it := interp.New(s, false)
	return s, it
}

func monitorInstr(reason uint32) *isa.Instr {
	word := (uint32(isa.OpMonitor) << 26) | ((reason << 1) << 6)
	ins, err := isa.Decode(word, 0x1000)
	if err != nil {
		panic(err)
	}
	return ins
}

func TestDoMemorySize(t *testing.T) {
	s, it := newMachine(t)
	m := New(nil)
	s.GPR[isa.RA0] = 0x2000

	require.NoError(t, m.Dispatch(it, monitorInstr(ReasonMemorySize)))

	v, err := s.LoadWord(0x2000)
	require.NoError(t, err)
	assert.Equal(t, uint32(K1Size), v)
}

func TestDoOpenWriteReadCloseRoundTrip(t *testing.T) {
	s, it := newMachine(t)
	m := New(nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	writeCString(s, 0x100, path)
	s.GPR[isa.RA0] = 0x100
	s.GPR[isa.RA1] = 0x0201 // O_CREAT|O_WRONLY-ish per remapIOFlags

	require.NoError(t, m.Dispatch(it, monitorInstr(ReasonOpen)))
	fd := s.GPR[isa.RV0]
	assert.GreaterOrEqual(t, fd, int32(3))

	payload := "hello"
	for i, c := range []byte(payload) {
		require.NoError(t, s.StoreByte(0x300+uint32(i), c))
	}
	s.GPR[isa.RA0] = fd
	s.GPR[isa.RA1] = 0x300
	s.GPR[isa.RA2] = int32(len(payload))
	require.NoError(t, m.Dispatch(it, monitorInstr(ReasonWrite)))
	assert.Equal(t, int32(len(payload)), s.GPR[isa.RV0])

	s.GPR[isa.RA0] = fd
	require.NoError(t, m.Dispatch(it, monitorInstr(ReasonClose)))
	assert.Equal(t, int32(0), s.GPR[isa.RV0])

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestDoGetargsCapsAtMARGS(t *testing.T) {
	s, it := newMachine(t)
	argv := make([]string, 0, MARGS+10)
	for i := 0; i < MARGS+10; i++ {
		argv = append(argv, "x")
	}
	m := New(argv)
	s.GPR[isa.RA0] = 0x1000

	require.NoError(t, m.Dispatch(it, monitorInstr(ReasonGetargs)))
	assert.Equal(t, int32(MARGS), s.GPR[isa.RV0])
}

func TestDoTimesSyntheticClock(t *testing.T) {
	s, it := newMachine(t)
	m := New(nil)
	m.EnableClockFuncts = false
	m.IcountMIPS = 1.0
	s.Icnt = 200
	s.GPR[isa.RA0] = 0x1000

	require.NoError(t, m.Dispatch(it, monitorInstr(ReasonTimes)))
	assert.Equal(t, int32(200*100), s.GPR[isa.RV0])
}

func TestDispatchUnhandledReasonErrors(t *testing.T) {
	_, it := newMachine(t)
	m := New(nil)
	err := m.Dispatch(it, monitorInstr(999))
	assert.Error(t, err)
}
