package funcdisc

import (
	"testing"

	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLeafNodeFuncSuccess(t *testing.T) {
	g := cfg.New()
	entry, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(entry, 0x1000, 0x00000000))
	require.NoError(t, g.AddIns(entry, 0x1004, (31<<21)|0x08)) // jr $ra
	entry.HasJR = true

	status, numErr := FindLeafNodeFunc(g, entry.ID(), nil)
	assert.Equal(t, Success, status)
	assert.Equal(t, 0, numErr)
}

func TestFindLeafNodeFuncRejectsMonitor(t *testing.T) {
	g := cfg.New()
	entry, _ := g.FindOrCreate(0x1000)
	entry.HasMonitor = true

	status, numErr := FindLeafNodeFunc(g, entry.ID(), nil)
	assert.Equal(t, Monitor, status)
	assert.Equal(t, 1, numErr)
}

func TestFindLeafNodeFuncNoReturn(t *testing.T) {
	g := cfg.New()
	entry, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(entry, 0x1000, 0))

	status, _ := FindLeafNodeFunc(g, entry.ID(), nil)
	assert.Equal(t, NoReturn, status)
}

func jalWord(target uint32) uint32 {
	return (0x03 << 26) | ((target >> 2) & 0x03ffffff)
}

func TestFindFuncWithInlineAcceptsCallToLeaf(t *testing.T) {
	g := cfg.New()
	entry, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(entry, 0x1000, jalWord(0x2000)))
	require.NoError(t, g.AddIns(entry, 0x1004, 0)) // delay slot
	entry.HasJAL = true

	ret, _ := g.FindOrCreate(0x1008)
	require.NoError(t, g.AddIns(ret, 0x1008, (31<<21)|0x08)) // jr $ra
	ret.HasJR = true
	g.AddSuccessor(entry, ret, 0x1008)

	leaf := map[uint32]bool{0x2000: true}
	status, numErr := FindFuncWithInline(g, entry.ID(), nil, leaf)
	assert.Equal(t, Success, status)
	assert.Equal(t, 0, numErr)
}

func TestFindFuncWithInlineRejectsCallToNonLeaf(t *testing.T) {
	g := cfg.New()
	entry, _ := g.FindOrCreate(0x1000)
	require.NoError(t, g.AddIns(entry, 0x1000, jalWord(0x3000)))
	require.NoError(t, g.AddIns(entry, 0x1004, 0)) // delay slot
	entry.HasJAL = true

	ret, _ := g.FindOrCreate(0x1008)
	require.NoError(t, g.AddIns(ret, 0x1008, (31<<21)|0x08)) // jr $ra
	ret.HasJR = true
	g.AddSuccessor(entry, ret, 0x1008)

	leaf := map[uint32]bool{0x2000: true} // 0x3000 is not a known leaf
	status, numErr := FindFuncWithInline(g, entry.ID(), nil, leaf)
	assert.Equal(t, DirectCall, status)
	assert.Equal(t, 1, numErr)
}
