package region

import "github.com/bassosimone/mips32sim/pkg/cfg"

// SimPointSampler buckets executed-block counts into fixed-length
// instruction intervals, the supplemented counterpart to globals.hh's
// simPoints/simPointsSlice: a lightweight basic-block-distribution
// histogram usable for phase analysis without pulling in a full
// SimPoint toolchain. Off by default; a caller opts in by constructing
// one and calling Observe for each block it wants counted.
type SimPointSampler struct {
	IntervalInsns uint64
	intervalCount uint64
	current       map[uint32]uint64
	Intervals     []map[uint32]uint64
}

// NewSimPointSampler returns a sampler bucketing every intervalInsns
// instructions into one histogram.
func NewSimPointSampler(intervalInsns uint64) *SimPointSampler {
	return &SimPointSampler{IntervalInsns: intervalInsns, current: make(map[uint32]uint64)}
}

// Observe adds numIns instructions to block b's count in the current
// histogram, rolling over to a fresh histogram bucket whenever the
// running count crosses an interval boundary.
func (sp *SimPointSampler) Observe(b *cfg.Block, numIns uint64) {
	sp.current[b.EntryAddr] += numIns
	sp.intervalCount += numIns
	for sp.intervalCount >= sp.IntervalInsns {
		sp.Intervals = append(sp.Intervals, sp.current)
		sp.current = make(map[uint32]uint64)
		sp.intervalCount -= sp.IntervalInsns
	}
}
