package checkpoint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/state"
)

func TestSaveRestoreRoundTrip(t *testing.T) {
	s := state.New(3*PageSize, endian.Little)
	s.PC = 0x4000
	s.GPR[8] = 42
	s.Lo = 7
	s.Hi = -3
	s.Icnt = 1234
	s.Mem[PageSize+10] = 0xaa // only the second page is non-zero

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, s))

	restored := state.New(3*PageSize, endian.Little)
	require.NoError(t, Restore(&buf, restored))

	assert.Equal(t, s.PC, restored.PC)
	assert.Equal(t, s.GPR, restored.GPR)
	assert.Equal(t, s.Lo, restored.Lo)
	assert.Equal(t, s.Hi, restored.Hi)
	assert.Equal(t, s.Icnt, restored.Icnt)
	assert.Equal(t, s.Mem, restored.Mem)
}

func TestRestoreRejectsBadMagic(t *testing.T) {
	s := state.New(PageSize, endian.Little)
	buf := bytes.NewBuffer(make([]byte, 8))
	err := Restore(buf, s)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestNonZeroPagesOnlyFlagsPagesWithContent(t *testing.T) {
	mem := make([]byte, 3*PageSize)
	mem[PageSize+5] = 1
	pages := nonZeroPages(mem)
	assert.Equal(t, []uint32{PageSize}, pages)
}
