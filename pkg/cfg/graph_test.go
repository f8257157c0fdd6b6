package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateNewBlock(t *testing.T) {
	g := New()
	b, created := g.FindOrCreate(0x1000)
	assert.True(t, created)
	assert.Equal(t, uint32(0x1000), b.EntryAddr)

	b2, created2 := g.FindOrCreate(0x1000)
	assert.False(t, created2)
	assert.Equal(t, b.ID(), b2.ID())
}

func TestSplitOnBranchIntoMiddle(t *testing.T) {
	g := New()
	head, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(head, 0x1000, 0x11111111))
	require.NoError(t, g.AddIns(head, 0x1004, 0x22222222))
	require.NoError(t, g.AddIns(head, 0x1008, 0x33333333))
	head.SetTermAddr(0x1008)

	tail, created := g.FindOrCreate(0x1004)
	assert.False(t, created) // discovered via split, not a brand-new block
	assert.Equal(t, uint32(0x1004), tail.EntryAddr)
	assert.Equal(t, 1, head.NumIns())
	assert.Equal(t, 2, tail.NumIns())
	assert.True(t, head.ReadOnly)

	ownerID, ok := g.LocalFind(0x1004)
	require.True(t, ok)
	assert.Equal(t, tail.ID(), ownerID)
}

func TestAddSuccessorEdgeCounting(t *testing.T) {
	g := New()
	a, _ := g.FindOrCreate(0x1000)
	b, _ := g.FindOrCreate(0x2000)
	g.AddSuccessor(a, b, 0x2000)
	g.AddSuccessor(a, b, 0x2000)

	assert.Equal(t, uint64(2), a.TotalEdges)
	assert.InDelta(t, 1.0, a.EdgeWeight(0x2000), 1e-9)
	require.NoError(t, g.SanityCheck())
}

func TestTermAddrMonotoneOnce(t *testing.T) {
	b := &Block{}
	b.SetTermAddr(0x10)
	b.SetTermAddr(0x20)
	assert.Equal(t, uint32(0x10), b.TermAddr)
}

func TestToposortOrdersPredsBeforeSuccs(t *testing.T) {
	g := New()
	a, _ := g.FindOrCreate(0x1000)
	b, _ := g.FindOrCreate(0x2000)
	c, _ := g.FindOrCreate(0x3000)
	g.AddSuccessor(a, b, 0x2000)
	g.AddSuccessor(b, c, 0x3000)

	order := g.Toposort(a.ID(), func(BlockID) bool { return true })
	require.Len(t, order, 3)
	assert.Equal(t, a.ID(), order[0])
	assert.Equal(t, c.ID(), order[2])
}

func TestDropAllBlocksResetsGraph(t *testing.T) {
	g := New()
	g.FindOrCreate(0x1000)
	g.DropAllBlocks()
	assert.Equal(t, 0, g.NumBlocks())
	_, ok := g.GlobalFind(0x1000)
	assert.False(t, ok)
}
