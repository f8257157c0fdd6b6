package state

import (
	"testing"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetsCP0StatusBits(t *testing.T) {
	s := New(4096, endian.Little)
	assert.Equal(t, uint32((1<<2)|(1<<22)), s.CPR0[CP0Status])
}

func TestZeroGPR0(t *testing.T) {
	s := New(4096, endian.Little)
	s.GPR[0] = 42
	s.ZeroGPR0()
	assert.Equal(t, int32(0), s.GPR[0])
}

func TestLoadStoreWordLittleEndian(t *testing.T) {
	s := New(4096, endian.Little)
	require.NoError(t, s.StoreWord(0x100, 0xdeadbeef))
	v, err := s.LoadWord(0x100)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)
	assert.Equal(t, byte(0xef), s.Mem[0x100])
}

func TestLoadStoreWordBigEndian(t *testing.T) {
	s := New(4096, endian.Big)
	require.NoError(t, s.StoreWord(0x100, 0xdeadbeef))
	assert.Equal(t, byte(0xde), s.Mem[0x100])
	v, err := s.LoadWord(0x100)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)
}

func TestLoadWordOutOfRange(t *testing.T) {
	s := New(16, endian.Little)
	_, err := s.LoadWord(100)
	assert.ErrorIs(t, err, ErrSegfault)
}

func TestLoadStoreByte(t *testing.T) {
	s := New(16, endian.Little)
	require.NoError(t, s.StoreByte(4, 0x7f))
	v, err := s.LoadByte(4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7f), v)
}
