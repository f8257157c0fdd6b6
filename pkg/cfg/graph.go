package cfg

import "fmt"

// Graph owns every Block discovered during a run, keyed by entry
// address and by the address of every instruction any block contains.
// It replaces basicBlock.hh's static bbMap/insMap/insInBBCnt maps (and
// its raw `new`'d pointer graph) with a single arena value a Graph
// caller can reset between runs without leaking blocks.
type Graph struct {
	blocks  []*Block
	byEntry map[uint32]BlockID
	insOwner map[uint32]BlockID

	numStaticInsns int
}

// New returns an empty Graph ready to discover blocks starting from
// whatever entry address the interpreter first reaches.
func New() *Graph {
	return &Graph{
		byEntry:  make(map[uint32]BlockID),
		insOwner: make(map[uint32]BlockID),
	}
}

// NumBlocks is the live block count (DropAllBlocks resets this to zero).
func (g *Graph) NumBlocks() int { return len(g.blocks) }

// NumStaticInsns is the total number of decoded instructions recorded
// across every block currently in the graph.
func (g *Graph) NumStaticInsns() int { return g.numStaticInsns }

// Block returns the block behind id. It panics only when id is outside
// the current arena; an id kept from before DropAllBlocks is not
// detected and, once the arena has grown again, names whichever new
// block now occupies that index.
func (g *Graph) Block(id BlockID) *Block {
	return g.blocks[id]
}

func (g *Graph) newBlock(entryAddr uint32) *Block {
	id := BlockID(len(g.blocks))
	b := &Block{id: id, EntryAddr: entryAddr, EdgeCnts: make(map[uint32]uint64)}
	g.blocks = append(g.blocks, b)
	g.byEntry[entryAddr] = id
	return b
}

// GlobalFind looks up the block whose EntryAddr exactly equals addr,
// matching basicBlock::globalFindBlock.
func (g *Graph) GlobalFind(addr uint32) (BlockID, bool) {
	id, ok := g.byEntry[addr]
	return id, ok
}

// LocalFind looks up the block that currently contains addr as one of
// its instructions (whether or not addr is that block's entry),
// matching basicBlock::localFindBlock. A hit here where addr is not
// the block's EntryAddr is exactly the case FindOrCreate splits on.
func (g *Graph) LocalFind(addr uint32) (BlockID, bool) {
	id, ok := g.insOwner[addr]
	return id, ok
}

// FindOrCreate returns the block that should become current once
// control reaches addr: an exact entry match if one exists, a split of
// whatever block currently owns addr mid-body, or a freshly allocated
// block if addr has never been seen. This is getNextBlock's
// find-or-create half.
func (g *Graph) FindOrCreate(addr uint32) (*Block, bool) {
	if id, ok := g.GlobalFind(addr); ok {
		return g.blocks[id], false
	}
	if ownerID, ok := g.LocalFind(addr); ok {
		newB := g.Split(ownerID, addr)
		return newB, false
	}
	return g.newBlock(addr), true
}

// AddIns appends a decoded (addr, word) pair to b, provided b has not
// already been marked ReadOnly. It is the caller's responsibility
// (pkg/interp) to only call this on the current block.
func (g *Graph) AddIns(b *Block, addr, word uint32) error {
	if b.ReadOnly {
		return fmt.Errorf("cfg: cannot append to read-only block entry=%#08x", b.EntryAddr)
	}
	b.Insns = append(b.Insns, Ins{Addr: addr, Word: word})
	g.insOwner[addr] = b.id
	g.numStaticInsns++
	return nil
}

// SetTermAddr records b's terminating instruction address. It is
// monotone-once: basicBlock::setTermAddr only ever writes the first
// value it is given, so that re-entering an already-terminated block
// (e.g. via a later backward branch into its tail) never overwrites the
// original terminator.
func (b *Block) SetTermAddr(addr uint32) {
	if b.TermAddr == 0 {
		b.TermAddr = addr
	}
}

// SetReadOnly marks b as no longer appendable. getNextBlock calls this
// on the outgoing block the instant control leaves it, before advancing
// to whatever block comes next.
func (g *Graph) SetReadOnly(b *Block) {
	b.ReadOnly = true
}

// AddSuccessor records a control-flow edge from -> to, targeting
// targetPC, updating both blocks' Preds/Succs lists (each only once)
// and bumping from's edge-count tally for targetPC.
func (g *Graph) AddSuccessor(from *Block, to *Block, targetPC uint32) {
	if !containsID(from.Succs, to.id) {
		from.Succs = append(from.Succs, to.id)
	}
	if !containsID(to.Preds, from.id) {
		to.Preds = append(to.Preds, from.id)
	}
	from.EdgeCnts[targetPC]++
	from.TotalEdges++
}

func containsID(ids []BlockID, target BlockID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// Split breaks the block behind ownerID into two at splitAddr: a head
// block that keeps everything up to (not including) splitAddr, and a
// new tail block starting at splitAddr that inherits the head's
// outgoing edges. Every other block whose recorded edge target is
// splitAddr is repointed from the head to the new tail (basicBlock's
// repairBrokenEdges), since any such edge was always logically aimed at
// splitAddr — it just used to resolve to the block that happened to
// contain it.
func (g *Graph) Split(ownerID BlockID, splitAddr uint32) *Block {
	head := g.blocks[ownerID]

	splitIdx := -1
	for i, ins := range head.Insns {
		if ins.Addr == splitAddr {
			splitIdx = i
			break
		}
	}
	if splitIdx <= 0 {
		// splitAddr is the entry itself, or not actually contained;
		// nothing to split.
		return head
	}

	tail := g.newBlock(splitAddr)
	tail.Insns = append(tail.Insns, head.Insns[splitIdx:]...)
	for _, ins := range tail.Insns {
		g.insOwner[ins.Addr] = tail.id
	}
	head.Insns = head.Insns[:splitIdx]

	tail.TermAddr = head.TermAddr
	tail.HasTermBranchOrJump = head.HasTermBranchOrJump
	tail.BranchLikely = head.BranchLikely
	tail.HasJR, tail.HasJALR, tail.HasJAL, tail.HasMonitor = head.HasJR, head.HasJALR, head.HasJAL, head.HasMonitor
	tail.Succs = head.Succs
	tail.ReadOnly = head.ReadOnly
	tail.EdgeCnts = head.EdgeCnts
	tail.TotalEdges = head.TotalEdges

	head.TermAddr = 0
	head.HasTermBranchOrJump = false
	head.BranchLikely, head.HasJR, head.HasJALR, head.HasJAL, head.HasMonitor = false, false, false, false, false
	head.Succs = []BlockID{tail.id}
	head.EdgeCnts = map[uint32]uint64{splitAddr: 1}
	head.TotalEdges = 1
	head.ReadOnly = true

	g.repointSuccessors(ownerID, tail.id, splitAddr)

	for i, s := range tail.Succs {
		succ := g.blocks[s]
		for j, p := range succ.Preds {
			if p == ownerID {
				succ.Preds[j] = tail.id
			}
		}
		_ = i
	}
	if !containsID(tail.Preds, head.id) {
		tail.Preds = append(tail.Preds, head.id)
	}

	return tail
}

// repointSuccessors rewrites every block's Succs list so that edges
// previously landing on oldOwner but targeting targetPC now land on
// newOwner instead, matching repairBrokenEdges's job after a split.
func (g *Graph) repointSuccessors(oldOwner, newOwner BlockID, targetPC uint32) {
	for _, b := range g.blocks {
		if b.id == oldOwner || b.id == newOwner {
			continue
		}
		if _, hasEdge := b.EdgeCnts[targetPC]; !hasEdge {
			continue
		}
		for i, s := range b.Succs {
			if s == oldOwner {
				b.Succs[i] = newOwner
			}
		}
	}
}

// DropAllBlocks discards the entire graph, matching
// basicBlock::dropAllBBs; the caller must treat every previously held
// BlockID as invalid afterwards.
func (g *Graph) DropAllBlocks() {
	g.blocks = nil
	g.byEntry = make(map[uint32]BlockID)
	g.insOwner = make(map[uint32]BlockID)
	g.numStaticInsns = 0
}

// DropCompiledCode clears b's IsCompiled/HasRegion bookkeeping without
// removing it from the graph, used when a region containing b is
// invalidated but the block's discovered instructions are still good.
func (g *Graph) DropCompiledCode(b *Block) {
	b.IsCompiled = false
	b.HasRegion = false
	b.RegionIDs = nil
}

// SanityCheck verifies the Preds/Succs symmetry invariant every block
// must hold: for every edge a->b, b.Preds contains a and a.Succs
// contains b. It mirrors basicBlock::sanityCheck and is meant for use
// in tests and debug builds, not the hot interpreter path.
func (g *Graph) SanityCheck() error {
	for _, b := range g.blocks {
		for _, s := range b.Succs {
			succ := g.blocks[s]
			if !containsID(succ.Preds, b.id) {
				return fmt.Errorf("cfg: block entry=%#08x has succ entry=%#08x missing reverse pred edge", b.EntryAddr, succ.EntryAddr)
			}
		}
		for _, p := range b.Preds {
			pred := g.blocks[p]
			if !containsID(pred.Succs, b.id) {
				return fmt.Errorf("cfg: block entry=%#08x has pred entry=%#08x missing reverse succ edge", b.EntryAddr, pred.EntryAddr)
			}
		}
	}
	return nil
}
