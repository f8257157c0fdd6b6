package interp

import (
	"testing"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return (rs&0x1f)<<21 | (rt&0x1f)<<16 | (rd&0x1f)<<11 | (shamt&0x1f)<<6 | (funct & 0x3f)
}

func encodeI(op, rs, rt uint32, imm uint16) uint32 {
	return (op&0x3f)<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | uint32(imm)
}

func newMachine(t *testing.T, words []uint32) (*state.State, *Interp) {
	t.Helper()
	s := state.New(4096, endian.Little)
	for i, w := range words {
		require.NoError(t, s.StoreWord(uint32(i*4), w))
	}
	return s, New(s, true)
}

func TestLuiOriConstantPropagation(t *testing.T) {
	s, it := newMachine(t, []uint32{
		encodeI(isa.OpLui, 0, 8, 0x1234),
		encodeI(isa.OpOri, 8, 8, 0x5678),
	})
	require.NoError(t, it.Step())
	require.NoError(t, it.Step())
	assert.Equal(t, int32(0x12345678), s.GPR[8])
}

func TestBranchLikelyNotTakenSkipsDelaySlot(t *testing.T) {
	// bnel $0, $0, +2 (never taken since 0==0); delay slot would be
	// addiu $9, $0, 1 if executed.
	s, it := newMachine(t, []uint32{
		encodeI(isa.OpBnel, 0, 0, 2),
		encodeI(isa.OpAddiu, 0, 9, 1),
		encodeI(isa.OpAddiu, 0, 0, 0),
		encodeI(isa.OpAddiu, 0, 0, 0),
	})
	require.NoError(t, it.Step())
	assert.Equal(t, int32(0), s.GPR[9], "annulled delay slot must not execute")
	assert.Equal(t, uint32(8), s.PC)
}

func TestBranchLikelyTakenExecutesDelaySlot(t *testing.T) {
	s, it := newMachine(t, []uint32{
		encodeI(isa.OpBeql, 0, 0, 2),
		encodeI(isa.OpAddiu, 0, 9, 1),
		encodeI(isa.OpAddiu, 0, 0, 0),
		encodeI(isa.OpAddiu, 0, 0, 0),
	})
	require.NoError(t, it.Step())
	assert.Equal(t, int32(1), s.GPR[9])
	assert.Equal(t, uint32(4+(2<<2)), s.PC)
}

func TestJalJrRoundTrip(t *testing.T) {
	s, it := newMachine(t, []uint32{
		(uint32(isa.OpJal) << 26) | 2, // jal 0x8 (word-aligned target 2<<2)
		encodeI(isa.OpAddiu, 0, 0, 0),   // delay slot
		encodeR(isa.RRA, 0, 0, 0, isa.FnJr),
		encodeI(isa.OpAddiu, 0, 0, 0),
	})
	require.NoError(t, it.Step()) // jal + delay slot
	assert.Equal(t, int32(8), s.GPR[isa.RRA])
	assert.Equal(t, uint32(8), s.PC)
	require.NoError(t, it.Step()) // jr $ra + delay slot
	assert.Equal(t, uint32(8), s.PC)
}

func TestSyncDropsAllBlocks(t *testing.T) {
	s, it := newMachine(t, []uint32{
		encodeI(isa.OpAddiu, 0, 8, 1),
		encodeR(0, 0, 0, 0, isa.FnSync),
		encodeI(isa.OpAddiu, 0, 0, 0),
	})
	require.NoError(t, it.Step())
	require.NotNil(t, it.CFG)
	before := it.CFG.NumBlocks()
	require.NoError(t, it.Step())
	assert.Less(t, it.CFG.NumBlocks(), before+1)
	assert.Equal(t, uint32(8), s.PC)
}

func TestZeroRegisterNeverObserved(t *testing.T) {
	s, it := newMachine(t, []uint32{
		encodeR(8, 9, 0, 0, isa.FnAddu), // writes rd=0, should be forced back to zero
	})
	require.NoError(t, it.Step())
	assert.Equal(t, int32(0), s.GPR[0])
}

func TestLoadWordRoundTrip(t *testing.T) {
	s, it := newMachine(t, []uint32{
		encodeI(isa.OpLui, 0, 8, 0x0000), // base = 0
		encodeI(isa.OpLw, 8, 9, 0x100),
	})
	require.NoError(t, s.StoreWord(0x100, 0xcafebabe))
	require.NoError(t, it.Step())
	require.NoError(t, it.Step())
	assert.Equal(t, int32(int64(int32(0xcafebabe))), s.GPR[9])
}
