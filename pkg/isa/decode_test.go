package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return (rs&0x1f)<<21 | (rt&0x1f)<<16 | (rd&0x1f)<<11 | (shamt&0x1f)<<6 | (funct & 0x3f)
}

func encodeI(op, rs, rt uint32, imm uint16) uint32 {
	return (op&0x3f)<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | uint32(imm)
}

func TestDecodeAddu(t *testing.T) {
	w := encodeR(8, 9, 10, 0, FnAddu)
	ins, err := Decode(w, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, KindRArith, ins.Kind())
	assert.Equal(t, "addu", ins.Op())
	assert.ElementsMatch(t, []uint32{8, 9}, ins.Uses())
	assert.ElementsMatch(t, []uint32{10}, ins.Defines())
	assert.True(t, ins.CanTranslate())
}

func TestDecodeAddiuConstantFold(t *testing.T) {
	w := encodeI(OpAddiu, 8, 9, 0x0005)
	ins, err := Decode(w, 0x1000)
	require.NoError(t, err)
	v, ok := ins.ConstantFold(map[uint32]uint32{8: 100})
	assert.True(t, ok)
	assert.Equal(t, uint32(105), v)
}

func TestDecodeLuiOri(t *testing.T) {
	lui, err := Decode(encodeI(OpLui, 0, 8, 0x1234), 0x0)
	require.NoError(t, err)
	v, ok := lui.ConstantFold(nil)
	require.True(t, ok)
	assert.Equal(t, uint32(0x12340000), v)

	ori, err := Decode(encodeI(OpOri, 8, 9, 0x5678), 0x4)
	require.NoError(t, err)
	v2, ok := ori.ConstantFold(map[uint32]uint32{8: v})
	require.True(t, ok)
	assert.Equal(t, uint32(0x12345678), v2)
}

func TestDecodeJType(t *testing.T) {
	w := (uint32(OpJal) << 26) | 0x000400
	ins, err := Decode(w, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, KindJump, ins.Kind())
	assert.Equal(t, "jal", ins.Op())
	assert.Equal(t, []uint32{RRA}, ins.Defines())
}

func TestDecodeJrRaTranslatable(t *testing.T) {
	w := encodeR(RRA, 0, 0, 0, FnJr)
	ins, err := Decode(w, 0x1000)
	require.NoError(t, err)
	assert.True(t, ins.CanTranslate())

	w2 := encodeR(8, 0, 0, 0, FnJr)
	ins2, err := Decode(w2, 0x1000)
	require.NoError(t, err)
	assert.False(t, ins2.CanTranslate())
}

func TestDecodeSyscallNotTranslatable(t *testing.T) {
	w := encodeR(0, 0, 0, 0, FnSyscall)
	ins, err := Decode(w, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, KindSyscall, ins.Kind())
	assert.False(t, ins.CanTranslate())
}

func TestDecodeUnknownFunct(t *testing.T) {
	w := encodeR(0, 0, 0, 0, 0x3f)
	_, err := Decode(w, 0x1000)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeMonitorReason(t *testing.T) {
	w := (uint32(OpMonitor) << 26) | (110 << 6) // reason 55 packed per RsvdArg's (shift,mask)>>1 convention
	ins, err := Decode(w, 0x2000)
	require.NoError(t, err)
	assert.Equal(t, KindMonitor, ins.Kind())
	assert.Equal(t, uint32(55), ins.Reason())
}
