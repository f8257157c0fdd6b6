package disasm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/state"
)

func addiuWord(rt, rs uint32, imm uint16) uint32 {
	return (isa.OpAddiu&0x3f)<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | uint32(imm)
}

func TestLineRendersImmArith(t *testing.T) {
	ins, err := isa.Decode(addiuWord(8, 0, 5), 0x1000)
	require.NoError(t, err)
	line := Line(ins)
	assert.Contains(t, line, "addiu")
	assert.Contains(t, line, "$t0")
	assert.Contains(t, line, "$zero")
}

func TestRegNameOutOfRange(t *testing.T) {
	assert.Equal(t, "?", RegName(99))
	assert.Equal(t, "ra", RegName(31))
}

func TestRangeDisassemblesMultipleWords(t *testing.T) {
	s := state.New(64, endian.Little)
	require.NoError(t, s.StoreWord(0, addiuWord(8, 0, 1)))
	require.NoError(t, s.StoreWord(4, addiuWord(9, 0, 2)))

	var buf bytes.Buffer
	require.NoError(t, Range(&buf, s, 0, 2))
	out := buf.String()
	assert.Contains(t, out, "00000000")
	assert.Contains(t, out, "00000004")
}
