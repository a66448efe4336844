package searcher

import (
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"zooscape/game"
)

// Node is one tree position. It owns its game state and its children;
// the parent pointer is a non-owning back reference used during backup.
// Visit and reward counters are atomic so workers update them lock-free;
// the node lock guards only the child and untried-action lists.
type Node struct {
	state    *game.GameState
	parent   *Node
	action   game.Action
	playerID string

	mu       sync.Mutex
	children []*Node
	untried  []game.Action

	visits       atomic.Int64
	totalReward  atomicFloat64
	totalSquared atomicFloat64

	terminal      bool
	fullyExpanded atomic.Bool

	raveMu sync.Mutex
	rave   [6]raveStat
}

type raveStat struct {
	reward float64
	visits int64
}

// NewNode wraps a state the node takes ownership of. Terminal states are
// born fully expanded.
func NewNode(state *game.GameState, parent *Node, action game.Action, playerID string) *Node {
	n := &Node{
		state:    state,
		parent:   parent,
		action:   action,
		playerID: playerID,
		terminal: state.IsTerminal(),
	}
	if n.terminal {
		n.fullyExpanded.Store(true)
	} else {
		n.untried = state.LegalActions(playerID)
	}
	return n
}

func (n *Node) State() *game.GameState { return n.state }
func (n *Node) Parent() *Node          { return n.parent }
func (n *Node) Action() game.Action    { return n.action }
func (n *Node) IsTerminalNode() bool   { return n.terminal }
func (n *Node) IsFullyExpanded() bool  { return n.fullyExpanded.Load() }

// Children returns a snapshot of the child slice.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Expand grows the node by one untried action picked uniformly at random
// and returns the new child. A node with nothing left to try returns
// itself. Concurrent expanders serialize on the node lock.
func (n *Node) Expand(rng *rand.Rand) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.terminal || len(n.untried) == 0 {
		n.fullyExpanded.Store(true)
		return n
	}

	i := rng.Intn(len(n.untried))
	action := n.untried[i]
	n.untried[i] = n.untried[len(n.untried)-1]
	n.untried = n.untried[:len(n.untried)-1]

	childState := n.state.Clone()
	childState.ApplyAction(n.playerID, action)
	child := NewNode(childState, n, action, n.playerID)
	n.children = append(n.children, child)

	if len(n.untried) == 0 {
		n.fullyExpanded.Store(true)
	}
	return child
}

// expandAction expands one specific untried action, or returns nil when the
// action is not pending. Used to seed the root in move order.
func (n *Node) expandAction(action game.Action) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, untried := range n.untried {
		if untried != action {
			continue
		}
		n.untried[i] = n.untried[len(n.untried)-1]
		n.untried = n.untried[:len(n.untried)-1]

		childState := n.state.Clone()
		childState.ApplyAction(n.playerID, action)
		child := NewNode(childState, n, action, n.playerID)
		n.children = append(n.children, child)

		if len(n.untried) == 0 {
			n.fullyExpanded.Store(true)
		}
		return child
	}
	return nil
}

// adoptStats seeds a fresh node from an equivalent one found in the
// transposition table, merging by count.
func (n *Node) adoptStats(other *Node) {
	visits := other.visits.Load()
	if visits == 0 {
		return
	}
	n.visits.Add(visits)
	n.totalReward.Add(other.totalReward.Load())
	n.totalSquared.Add(other.totalSquared.Load())
}

// Update records one simulation outcome.
func (n *Node) Update(reward float64) {
	n.visits.Add(1)
	n.totalReward.Add(reward)
	n.totalSquared.Add(reward * reward)
}

func (n *Node) Visits() int64 { return n.visits.Load() }

func (n *Node) AverageReward() float64 {
	visits := n.visits.Load()
	if visits == 0 {
		return 0
	}
	return n.totalReward.Load() / float64(visits)
}

// RewardVariance derives the population variance (divided by the visit
// count) from the running sums.
func (n *Node) RewardVariance() float64 {
	visits := n.visits.Load()
	if visits <= 1 {
		return 0
	}
	mean := n.totalReward.Load() / float64(visits)
	variance := n.totalSquared.Load()/float64(visits) - mean*mean
	if variance < 0 {
		return 0
	}
	return variance
}

// UCB1 is the classic bound; unvisited nodes rank first.
func (n *Node) UCB1(c float64) float64 {
	visits := n.visits.Load()
	if visits == 0 {
		return math.Inf(1)
	}
	if n.parent == nil {
		return n.AverageReward()
	}
	parentVisits := n.parent.visits.Load()
	if parentVisits < 1 {
		parentVisits = 1
	}
	return n.AverageReward() + c*math.Sqrt(math.Log(float64(parentVisits))/float64(visits))
}

// UCB1Tuned sharpens the bound with the observed reward variance.
func (n *Node) UCB1Tuned(c float64) float64 {
	visits := n.visits.Load()
	if visits == 0 {
		return math.Inf(1)
	}
	if n.parent == nil {
		return n.AverageReward()
	}
	parentVisits := n.parent.visits.Load()
	if parentVisits < 1 {
		parentVisits = 1
	}
	logParent := math.Log(float64(parentVisits))
	nf := float64(visits)
	varianceBound := n.RewardVariance()/(RewardScale*RewardScale) + math.Sqrt(2*logParent/nf)
	confidence := math.Min(0.25, varianceBound)
	return n.AverageReward() + c*RewardScale*math.Sqrt(logParent/nf*confidence)
}

// MostVisitedChild is the robust final choice; ties break toward the
// higher average reward.
func (n *Node) MostVisitedChild() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	var best *Node
	for _, child := range n.children {
		if best == nil {
			best = child
			continue
		}
		cv, bv := child.visits.Load(), best.visits.Load()
		if cv > bv || (cv == bv && child.AverageReward() > best.AverageReward()) {
			best = child
		}
	}
	return best
}

// BestChild picks by UCB1, or by pure average reward when c is zero.
func (n *Node) BestChild(c float64) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	var best *Node
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		score := child.AverageReward()
		if c != 0 {
			score = child.UCB1(c)
		}
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// UpdateRAVE folds a rollout outcome into the per-action slot.
func (n *Node) UpdateRAVE(action game.Action, reward float64) {
	if action < 0 || int(action) >= len(n.rave) {
		return
	}
	n.raveMu.Lock()
	n.rave[action].reward += reward
	n.rave[action].visits++
	n.raveMu.Unlock()
}

// RAVEValue returns the mean all-moves-as-first reward for an action.
func (n *Node) RAVEValue(action game.Action) float64 {
	if action < 0 || int(action) >= len(n.rave) {
		return 0
	}
	n.raveMu.Lock()
	defer n.raveMu.Unlock()
	stat := n.rave[action]
	if stat.visits == 0 {
		return 0
	}
	return stat.reward / float64(stat.visits)
}

func (n *Node) RAVEVisits(action game.Action) int64 {
	if action < 0 || int(action) >= len(n.rave) {
		return 0
	}
	n.raveMu.Lock()
	defer n.raveMu.Unlock()
	return n.rave[action].visits
}

// Depth counts parent hops to the root.
func (n *Node) Depth() int {
	depth := 0
	for current := n.parent; current != nil; current = current.parent {
		depth++
	}
	return depth
}

// TreeSize counts the nodes below and including this one.
func (n *Node) TreeSize() int {
	size := 1
	for _, child := range n.Children() {
		size += child.TreeSize()
	}
	return size
}
