package endian

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwap32Identity(t *testing.T) {
	assert.Equal(t, uint32(0x01020304), Swap32(Little, 0x01020304))
}

func TestSwap32Reverse(t *testing.T) {
	assert.Equal(t, uint32(0x04030201), Swap32(Big, 0x01020304))
}

func TestSwap16(t *testing.T) {
	assert.Equal(t, uint16(0xabcd), Swap16(Little, 0xabcd))
	assert.Equal(t, uint16(0xcdab), Swap16(Big, 0xabcd))
}

func TestSwap64(t *testing.T) {
	assert.Equal(t, uint64(0x0102030405060708), Swap64(Little, 0x0102030405060708))
	assert.Equal(t, uint64(0x0807060504030201), Swap64(Big, 0x0102030405060708))
}

func TestSignExtend16(t *testing.T) {
	assert.Equal(t, uint32(0xffffffff), SignExtend16(0xffff))
	assert.Equal(t, uint32(0x00007fff), SignExtend16(0x7fff))
	assert.Equal(t, uint32(0xffff8000), SignExtend16(0x8000))
}

func TestSignExtend8(t *testing.T) {
	assert.Equal(t, uint32(0xffffffff), SignExtend8(0xff))
	assert.Equal(t, uint32(0x0000007f), SignExtend8(0x7f))
	assert.Equal(t, uint32(0xffffff80), SignExtend8(0x80))
}

func TestExtractAndSetBit(t *testing.T) {
	var w uint32
	w = SetBit(w, 3, 1)
	assert.Equal(t, uint32(1), ExtractBit(w, 3))
	assert.Equal(t, uint32(0), ExtractBit(w, 2))
	w = SetBit(w, 3, 0)
	assert.Equal(t, uint32(0), ExtractBit(w, 3))
}
