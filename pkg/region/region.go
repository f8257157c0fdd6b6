// Package region builds translatable subgraphs ("regions") out of a
// hot basic block once it crosses an edge-count threshold, bounding
// each region's size and rejecting any block containing an
// instruction the rest of the toolchain cannot translate ahead of
// time. It is grounded on dsheffie/mips32-bt's region-related fields
// on basicBlock (bbRegionCounts/bbRegions/cfgInRegions/addRegion/
// enoughRegions) plus globals.hh's cfgAugEnum levels, which this
// package supplements as AugmentationLevel.
package region

import (
	"errors"
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/bassosimone/mips32sim/pkg/isa"
)

// ErrNotAdmissible is returned when a region cannot be formed because
// its head block (or a block reachable from it within the size bound)
// contains an untranslatable instruction.
var ErrNotAdmissible = errors.New("region: head block is not admissible for translation")

// AugmentationLevel names the levels of globals.hh's cfgAugEnum. A
// Builder records its level in Level, but BuildFrom does not consult
// it: at every level BuildFrom makes a single attempt per call and
// never retries.
type AugmentationLevel int

const (
	// AugNone is the baseline policy: one region attempt per
	// qualifying crossing of the edge threshold, with no retry.
	AugNone AugmentationLevel = iota
	// AugHead names cfgAugEnum's retry-from-the-head level.
	AugHead
	// AugAggressive names cfgAugEnum's retry-from-hot-successors level.
	AugAggressive
	// AugInsane names cfgAugEnum's retry-from-every-block level.
	AugInsane
)

// ID identifies a Region within a Builder's registry.
type ID int

// Region is a toposorted, size-bounded, fully translatable subgraph
// rooted at Head. Blocks list the member blocks in translation order;
// every block in Blocks passed CanAdmit when the region was formed.
type Region struct {
	id    ID
	Head  cfg.BlockID
	Blocks []cfg.BlockID
}

func (r *Region) ID() ID { return r.id }

// Builder owns the region registry for one Graph and enforces the
// per-region block-count bound. The edge-count admission threshold
// (globals::enoughRegions) is not held here; ShouldAttempt takes it as
// a parameter.
type Builder struct {
	Graph       *cfg.Graph
	MaxBlocks   int
	Level       AugmentationLevel
	regions     []*Region
}

// NewBuilder returns a Builder over g bounding each region to at most
// maxBlocks member blocks, using augmentation level lvl.
func NewBuilder(g *cfg.Graph, maxBlocks int, lvl AugmentationLevel) *Builder {
	return &Builder{Graph: g, MaxBlocks: maxBlocks, Level: lvl}
}

// Regions returns every region formed so far.
func (bld *Builder) Regions() []*Region { return bld.regions }

// CanAdmit reports whether every instruction currently recorded in b
// can be translated ahead of time, decoding each raw word with
// pkg/isa and consulting Instruction.CanTranslate.
func CanAdmit(b *cfg.Block) bool {
	for _, ins := range b.Insns {
		decoded, err := isa.Decode(ins.Word, ins.Addr)
		if err != nil {
			return false
		}
		if !decoded.CanTranslate() {
			return false
		}
	}
	return true
}

// BuildFrom attempts to form a region rooted at head: a toposorted DFS
// over CanAdmit-passing successors, stopped once MaxBlocks member
// blocks have been collected. It fails with ErrNotAdmissible if the
// head block itself is not admissible — a region with no admissible
// blocks at all is not a region.
func (bld *Builder) BuildFrom(head cfg.BlockID) (*Region, error) {
	headBlock := bld.Graph.Block(head)
	if !CanAdmit(headBlock) {
		return nil, fmt.Errorf("%w: entry=%#08x", ErrNotAdmissible, headBlock.EntryAddr)
	}

	count := 0
	valid := func(id cfg.BlockID) bool {
		if count >= bld.MaxBlocks {
			return false
		}
		ok := CanAdmit(bld.Graph.Block(id))
		if ok {
			count++
		}
		return ok
	}
	order := bld.Graph.Toposort(head, valid)
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: entry=%#08x", ErrNotAdmissible, headBlock.EntryAddr)
	}

	r := &Region{id: ID(len(bld.regions)), Head: head, Blocks: order}
	bld.regions = append(bld.regions, r)

	for _, id := range order {
		b := bld.Graph.Block(id)
		b.HasRegion = true
		b.RegionIDs = append(b.RegionIDs, int(r.id))
	}
	return r, nil
}

// Invalidate drops region rid's membership bookkeeping from every
// block it touched (e.g. because one of its blocks was later split),
// matching the back-reference cleanup basicBlock's cfgInRegions set
// exists to make possible.
func (bld *Builder) Invalidate(rid ID) {
	if int(rid) >= len(bld.regions) || bld.regions[rid] == nil {
		return
	}
	r := bld.regions[rid]
	for _, id := range r.Blocks {
		b := bld.Graph.Block(id)
		kept := b.RegionIDs[:0]
		for _, other := range b.RegionIDs {
			if other != int(rid) {
				kept = append(kept, other)
			}
		}
		if len(kept) == 0 {
			bld.Graph.DropCompiledCode(b)
		} else {
			b.RegionIDs = kept
		}
	}
	bld.regions[rid] = nil
}

// ShouldAttempt reports whether head has crossed the edge-count
// threshold this project uses in place of globals::enoughRegions: the
// sum of every predecessor edge landing on head's entry must reach
// thresholdEdges before a region attempt is worthwhile.
func ShouldAttempt(g *cfg.Graph, head cfg.BlockID, thresholdEdges uint64) bool {
	b := g.Block(head)
	var total uint64
	for _, p := range b.Preds {
		pred := g.Block(p)
		total += pred.EdgeCnts[b.EntryAddr]
	}
	return total >= thresholdEdges
}
