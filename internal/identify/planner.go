package identify

import "math"

// Tier orders checkpoints: primary offsets are always consumed before any
// fallback offset.
type Tier string

const (
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
)

// Fractional runtime offsets sampled per tier. Primary spreads three samples
// across the episode; fallback fills the gaps when primaries yield no signal.
var (
	primaryFractions  = []float64{0.15, 0.50, 0.85}
	fallbackFractions = []float64{0.25, 0.35, 0.65, 0.75}
)

// Checkpoint is one planned audio sample: a window of the file's runtime at
// a fractional offset.
type Checkpoint struct {
	Fraction float64
	Offset   float64
	Window   float64
	Tier     Tier
}

// Plan is a lazy, finite, restartable sequence of checkpoints over one
// file's runtime. The fallback tier is withheld until EnableFallback is
// called; a global sampled-seconds budget ends the sequence early regardless
// of tier.
type Plan struct {
	checkpoints     []Checkpoint
	next            int
	fallbackEnabled bool
	budget          float64
	sampled         float64
}

// NewPlan builds a checkpoint plan for a file of the given duration. The
// window shrinks to the duration for very short files and offsets are clamped
// so a window never runs past the end of the file. Duplicate offsets produced
// by clamping are dropped.
func NewPlan(duration, windowSeconds, budgetSeconds float64) *Plan {
	if duration < 0 {
		duration = 0
	}
	window := windowSeconds
	if window <= 0 {
		window = 30
	}
	if window > duration {
		window = duration
	}

	plan := &Plan{budget: budgetSeconds}
	seen := make(map[float64]bool)
	appendTier := func(fractions []float64, tier Tier) {
		for _, fraction := range fractions {
			offset := fraction * duration
			if maxOffset := duration - window; offset > maxOffset {
				offset = maxOffset
			}
			if offset < 0 {
				offset = 0
			}
			offset = math.Round(offset)
			if window <= 0 || seen[offset] {
				continue
			}
			seen[offset] = true
			plan.checkpoints = append(plan.checkpoints, Checkpoint{
				Fraction: fraction,
				Offset:   offset,
				Window:   window,
				Tier:     tier,
			})
		}
	}
	appendTier(primaryFractions, TierPrimary)
	appendTier(fallbackFractions, TierFallback)
	return plan
}

// Next returns the next checkpoint, or ok=false when the enabled tiers or
// the sampling budget are exhausted.
func (p *Plan) Next() (Checkpoint, bool) {
	if p.next >= len(p.checkpoints) {
		return Checkpoint{}, false
	}
	checkpoint := p.checkpoints[p.next]
	if checkpoint.Tier == TierFallback && !p.fallbackEnabled {
		return Checkpoint{}, false
	}
	if p.budget > 0 && p.sampled+checkpoint.Window > p.budget {
		return Checkpoint{}, false
	}
	p.next++
	return checkpoint, true
}

// EnableFallback unlocks the fallback tier. It reports whether any fallback
// checkpoints remain to consume.
func (p *Plan) EnableFallback() bool {
	p.fallbackEnabled = true
	return p.next < len(p.checkpoints)
}

// NoteSampled charges seconds of sampled audio against the budget. Errored
// checkpoints are charged like successful ones.
func (p *Plan) NoteSampled(seconds float64) {
	if seconds > 0 {
		p.sampled += seconds
	}
}

// SampledSeconds returns the audio time charged so far.
func (p *Plan) SampledSeconds() float64 {
	return p.sampled
}

// Reset rewinds the sequence to the beginning, clearing the budget charge
// and re-locking the fallback tier.
func (p *Plan) Reset() {
	p.next = 0
	p.sampled = 0
	p.fallbackEnabled = false
}

// Remaining returns how many checkpoints the enabled tiers still hold,
// ignoring the budget.
func (p *Plan) Remaining() int {
	count := 0
	for _, checkpoint := range p.checkpoints[p.next:] {
		if checkpoint.Tier == TierFallback && !p.fallbackEnabled {
			break
		}
		count++
	}
	return count
}
