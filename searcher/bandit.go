package searcher

import "math"

// BanditKind selects the in-tree selection policy.
type BanditKind int

const (
	// EnhancedUCB1 is UCB1 with a depth-decayed exploration constant.
	EnhancedUCB1 BanditKind = iota
	// UCBV uses the empirical reward variance (Audibert et al.).
	UCBV
	// UCB1Tuned caps the variance term with the 1/4 confidence bound.
	UCB1Tuned
)

func (k BanditKind) String() string {
	switch k {
	case EnhancedUCB1:
		return "EnhancedUCB1"
	case UCBV:
		return "UCB-V"
	case UCB1Tuned:
		return "UCB1-Tuned"
	}
	return "Unknown"
}

// Bandit scores children during selection. Every variant ranks unvisited
// children first by returning +Inf for them.
type Bandit struct {
	Kind        BanditKind
	Exploration float64

	// DepthDecay shrinks the exploration constant with node depth for
	// EnhancedUCB1.
	DepthDecay float64

	// Zeta and C parameterize the UCB-V exploration and correction terms.
	Zeta float64
	C    float64
}

// NewBandit returns a bandit of the given kind with standard parameters.
func NewBandit(kind BanditKind, exploration float64) *Bandit {
	return &Bandit{
		Kind:        kind,
		Exploration: exploration,
		DepthDecay:  0.5,
		Zeta:        1.0,
		C:           1.0,
	}
}

// Score ranks a child for selection from its parent.
func (b *Bandit) Score(child, parent *Node) float64 {
	visits := child.Visits()
	if visits == 0 {
		return math.Inf(1)
	}

	switch b.Kind {
	case UCBV:
		return b.ucbV(child, parent, visits)
	case UCB1Tuned:
		return child.UCB1Tuned(b.Exploration)
	default:
		effective := b.Exploration / (1.0 + float64(child.Depth())*b.DepthDecay)
		return child.UCB1(effective)
	}
}

// ucbV = mean + Exploration*sqrt(2*zeta*variance*lnN/n) +
// 3*C*zeta*RewardScale*lnN/n, with the variance measured on the normalized
// reward scale and the correction term scaled to the reward range.
func (b *Bandit) ucbV(child, parent *Node, visits int64) float64 {
	parentVisits := parent.Visits()
	if parentVisits < 1 {
		parentVisits = 1
	}
	logParent := math.Log(float64(parentVisits))
	nf := float64(visits)

	variance := child.RewardVariance()
	exploration := math.Sqrt(2 * b.Zeta * variance * logParent / nf)
	correction := 3 * b.C * b.Zeta * RewardScale * logParent / nf

	return child.AverageReward() + b.Exploration*exploration + correction
}
