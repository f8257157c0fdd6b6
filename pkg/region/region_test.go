package region

import (
	"testing"

	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addiu(rt uint32, imm uint16) uint32 {
	return (9&0x3f)<<26 | (0&0x1f)<<21 | (rt&0x1f)<<16 | uint32(imm)
}

func syscallWord() uint32 {
	return 0x0c // funct only, opcode 0 rs=rt=rd=0
}

func TestBuildFromAdmitsPlainBlock(t *testing.T) {
	g := cfg.New()
	head, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(head, 0x1000, addiu(8, 1)))
	require.NoError(t, g.AddIns(head, 0x1004, addiu(9, 2)))

	bld := NewBuilder(g, 16, AugNone)
	r, err := bld.BuildFrom(head.ID())
	require.NoError(t, err)
	assert.Len(t, r.Blocks, 1)
	assert.True(t, head.HasRegion)
}

func TestBuildFromRejectsSyscallBlock(t *testing.T) {
	g := cfg.New()
	head, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(head, 0x1000, syscallWord()))

	bld := NewBuilder(g, 16, AugNone)
	_, err := bld.BuildFrom(head.ID())
	assert.ErrorIs(t, err, ErrNotAdmissible)
}

func TestShouldAttemptThreshold(t *testing.T) {
	g := cfg.New()
	a, _ := g.FindOrCreate(0x1000)
	b, _ := g.FindOrCreate(0x2000)
	g.AddSuccessor(a, b, 0x2000)
	g.AddSuccessor(a, b, 0x2000)

	assert.True(t, ShouldAttempt(g, b.ID(), 2))
	assert.False(t, ShouldAttempt(g, b.ID(), 3))
}
