// Package cfg discovers and maintains the control-flow graph the
// interpreter builds up as it executes: one basic block per contiguous
// run of instructions between a control-flow entry point and its
// terminating branch or jump. It is grounded on dsheffie/mips32-bt's
// basicBlock.hh, redesigned around an integer-handle arena instead of
// basicBlock's raw new/delete pointer graph so the whole CFG can be
// owned by a single Graph value with no manual memory management.
package cfg

// Ins is one decoded-word record kept inside a block, in program order.
type Ins struct {
	Addr uint32
	Word uint32
}

// BlockID is an opaque handle into a Graph's block arena: the block's
// index, starting at 0, with -1 (invalidBlockID) meaning no block.
// Graph.FindOrCreate and Graph.Split are the only ways to obtain one.
type BlockID int

const invalidBlockID BlockID = -1

// Block is one basic block: a straight-line instruction run plus the
// CFG edges it participates in. Fields are exported for the region
// builder and function-discovery passes, which read them directly
// rather than through a narrower accessor surface — matching
// basicBlock.hh's own public-field style.
type Block struct {
	id        BlockID
	EntryAddr uint32
	TermAddr  uint32 // 0 until first set; monotone thereafter

	Preds []BlockID
	Succs []BlockID

	// ReadOnly is set once control leaves this block for the first
	// time (getNextBlock's "mark old block read-only" step); after
	// that AddIns must never be called on it again.
	ReadOnly bool

	BranchLikely bool
	HasJR        bool
	HasJALR      bool
	HasJAL       bool
	HasMonitor   bool
	HasTermBranchOrJump bool

	Insns []Ins

	// EdgeCnts tallies how many times control transferred to each
	// successor PC; TotalEdges is their sum. EdgeWeight divides the two.
	EdgeCnts   map[uint32]uint64
	TotalEdges uint64

	// IsCompiled / HasRegion mark whether this block has been folded
	// into a translated region; RegionIDs back-references let the
	// region package invalidate regions when a block they contain is
	// split or dropped.
	IsCompiled bool
	HasRegion  bool
	RegionIDs  []int
}

// ID returns this block's handle within its owning Graph.
func (b *Block) ID() BlockID { return b.id }

// NumIns returns the number of instructions appended to this block so far.
func (b *Block) NumIns() int { return len(b.Insns) }

// LastAddr returns the address of the last instruction appended, or
// EntryAddr if the block is still empty.
func (b *Block) LastAddr() uint32 {
	if len(b.Insns) == 0 {
		return b.EntryAddr
	}
	return b.Insns[len(b.Insns)-1].Addr
}

// EdgeWeight reports the fraction of this block's outgoing transfers
// that went to target, matching basicBlock::edgeWeight's
// edgeCnts[pc]/totalEdges (with a guard against a zero denominator).
func (b *Block) EdgeWeight(target uint32) float64 {
	if b.TotalEdges == 0 {
		return 0
	}
	return float64(b.EdgeCnts[target]) / float64(b.TotalEdges)
}
