package searcher

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"zooscape/game"
	"zooscape/heuristics"
)

// Engine defaults.
const (
	DefaultExploration   = math.Sqrt2
	DefaultMaxIterations = 10000
	DefaultMaxDepth      = 150
	DefaultTimeBudget    = 950 * time.Millisecond

	// budgetReserve is the slice of the time budget kept for assembling the
	// result after the workers stop.
	budgetReserve = 0.05

	// tieEpsilon groups selection scores considered equal; ties break
	// uniformly at random.
	tieEpsilon = 1e-9

	// biasWeight scales the progressive-bias term.
	biasWeight = 5.0

	// amafNodeWeight blends the bandit score with the AMAF combined value.
	amafNodeWeight = 0.7

	// raveMaxDepth caps how many rollout moves feed per-node RAVE slots.
	raveMaxDepth = 10

	virtualLossPenalty = 5.0
)

type Option func(*Engine)

// Engine runs parallel MCTS over a shared tree. One Engine serves one bot;
// BestAction may be called once per tick.
type Engine struct {
	exploration   float64
	maxIterations int64
	maxDepth      int
	timeBudget    time.Duration
	workers       int

	bandit             *Bandit
	heuristics         *heuristics.Engine
	useProgressiveBias bool
	useAMAF            bool
	useTransposition   bool

	amaf  *AMAF
	vloss *VirtualLoss
	table *TranspositionTable

	stop    atomic.Bool
	metrics Collector

	totalSimulations atomic.Int64
	totalExpansions  atomic.Int64
}

func WithExploration(c float64) Option {
	return func(e *Engine) {
		if c > 0 {
			e.exploration = c
		}
	}
}

func WithMaxIterations(iterations int) Option {
	return func(e *Engine) {
		if iterations > 0 {
			e.maxIterations = int64(iterations)
		}
	}
}

func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

func WithTimeBudget(budget time.Duration) Option {
	return func(e *Engine) {
		if budget > 0 {
			e.timeBudget = budget
		}
	}
}

func WithWorkers(workers int) Option {
	return func(e *Engine) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

func WithBandit(kind BanditKind) Option {
	return func(e *Engine) {
		e.bandit = NewBandit(kind, e.exploration)
	}
}

func WithHeuristics(h *heuristics.Engine) Option {
	return func(e *Engine) {
		if h != nil {
			e.heuristics = h
		}
	}
}

func WithProgressiveBias(enabled bool) Option {
	return func(e *Engine) { e.useProgressiveBias = enabled }
}

func WithAMAF(enabled bool) Option {
	return func(e *Engine) { e.useAMAF = enabled }
}

func WithTransposition(enabled bool) Option {
	return func(e *Engine) { e.useTransposition = enabled }
}

func WithMetrics(collector Collector) Option {
	return func(e *Engine) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// NewEngine builds an engine with the balanced heuristic preset, the UCB-V
// bandit, and every enhancement switched on.
func NewEngine(options ...Option) *Engine {
	h := heuristics.NewEngine()
	h.LoadBalancedPreset()

	e := &Engine{
		exploration:        DefaultExploration,
		maxIterations:      DefaultMaxIterations,
		maxDepth:           DefaultMaxDepth,
		timeBudget:         DefaultTimeBudget,
		workers:            runtime.NumCPU(),
		heuristics:         h,
		useProgressiveBias: true,
		useAMAF:            true,
		useTransposition:   true,
		amaf:               NewAMAF(0.5),
		vloss:              NewVirtualLoss(virtualLossPenalty),
		table:              NewTranspositionTable(defaultTableSize, defaultEntryTTL),
		metrics:            NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	if e.bandit == nil {
		e.bandit = NewBandit(UCBV, e.exploration)
	}
	return e
}

// SetBandit installs a different selection policy between searches.
func (e *Engine) SetBandit(kind BanditKind) {
	e.bandit = NewBandit(kind, e.exploration)
}

// Heuristics exposes the engine's heuristic set for tuning.
func (e *Engine) Heuristics() *heuristics.Engine { return e.heuristics }

// Stop asks running workers to finish their current iteration and return.
func (e *Engine) Stop() { e.stop.Store(true) }

// TotalSimulations reports the rollouts completed in the last search.
func (e *Engine) TotalSimulations() int64 { return e.totalSimulations.Load() }

// TotalExpansions reports the nodes created in the last search.
func (e *Engine) TotalExpansions() int64 { return e.totalExpansions.Load() }

// BestAction searches from state for the given animal and returns the
// most-visited root action with per-action statistics. Malformed states
// return an error and the neutral action; an absent animal returns the
// neutral action without error.
func (e *Engine) BestAction(state *game.GameState, playerID string) (Result, error) {
	if err := state.Validate(); err != nil {
		return Result{BestAction: game.None}, err
	}

	e.stop.Store(false)
	e.totalSimulations.Store(0)
	e.totalExpansions.Store(0)
	e.vloss.Reset()
	if e.useAMAF {
		e.amaf.Reset()
	}
	if e.useTransposition {
		e.table.Reset()
	}
	e.metrics.Start(e.workers)

	if playerID == "" || state.Animal(playerID) == nil {
		return Result{BestAction: game.None, Metric: e.metrics.Complete()}, nil
	}

	root := NewNode(state.Clone(), nil, game.Up, playerID)

	// Expanding every root action up front gives each one at least one
	// rollout before the bandit starts discriminating, in pellet-direction
	// order.
	rootRNG := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	for _, action := range e.orderedRootActions(root) {
		if child := root.expandAction(action); child != nil {
			e.totalExpansions.Add(1)
			e.metrics.AddExpansion()
		}
	}

	deadline := time.Now().Add(e.timeBudget - time.Duration(float64(e.timeBudget)*budgetReserve))
	var iterations atomic.Int64

	if e.workers <= 1 {
		e.runWorker(root, playerID, 0, deadline, &iterations, rootRNG)
	} else {
		timer := time.AfterFunc(time.Until(deadline), func() { e.stop.Store(true) })
		var wg sync.WaitGroup
		for i := 0; i < e.workers; i++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano()) + uint64(worker)))
				e.runWorker(root, playerID, worker, deadline, &iterations, rng)
			}(i)
		}
		wg.Wait()
		timer.Stop()
	}

	result := Result{BestAction: game.None}
	if best := root.MostVisitedChild(); best != nil {
		result.BestAction = best.Action()
		for _, child := range root.Children() {
			result.Stats = append(result.Stats, ActionStat{
				Action:    child.Action(),
				Visits:    child.Visits(),
				AvgReward: child.AverageReward(),
			})
		}
	} else if legal := state.LegalActions(playerID); len(legal) > 0 {
		result.BestAction = legal[0]
	}

	e.metrics.SetTreeSize(root.TreeSize())
	result.Metric = e.metrics.Complete()

	log.Debug().
		Int("tick", state.Tick).
		Int64("iterations", iterations.Load()).
		Int64("expansions", e.totalExpansions.Load()).
		Stringer("action", result.BestAction).
		Msg("search complete")

	return result, nil
}

// runWorker performs iterations until the deadline, the iteration cap, or
// the stop flag ends the search.
func (e *Engine) runWorker(root *Node, playerID string, worker int, deadline time.Time, iterations *atomic.Int64, rng *rand.Rand) {
	for !e.stop.Load() {
		if !time.Now().Before(deadline) {
			return
		}
		if iterations.Add(1) > e.maxIterations {
			iterations.Add(-1)
			return
		}
		e.iterate(root, playerID, rng)
		e.metrics.AddIteration()
	}
}

// iterate runs one full selection, expansion, simulation, and
// backpropagation pass.
func (e *Engine) iterate(root *Node, playerID string, rng *rand.Rand) {
	node := e.selectNode(root, rng)

	child := node
	if !node.IsTerminalNode() && !node.IsFullyExpanded() {
		child = e.expand(node, rng)
		if child != node {
			e.totalExpansions.Add(1)
			e.metrics.AddExpansion()
		}
	}

	reward, moves := e.rollout(child.State(), playerID, rng)
	e.totalSimulations.Add(1)

	e.backpropagate(child, reward, moves)
}

// selectNode descends from the root through fully expanded nodes, picking
// the child with the best selection score and breaking near-ties at random.
// In multi-worker searches a virtual loss marks the chosen path.
func (e *Engine) selectNode(root *Node, rng *rand.Rand) *Node {
	node := root
	for !node.IsTerminalNode() && node.IsFullyExpanded() {
		children := node.Children()
		if len(children) == 0 {
			break
		}

		bestScore := math.Inf(-1)
		var best []*Node
		for _, child := range children {
			score := e.selectionScore(child, node)
			switch {
			case score > bestScore+tieEpsilon:
				bestScore = score
				best = best[:0]
				best = append(best, child)
			case score == bestScore || math.Abs(score-bestScore) <= tieEpsilon:
				best = append(best, child)
			}
		}
		if len(best) == 0 {
			break
		}

		node = best[rng.Intn(len(best))]
		if e.workers > 1 {
			e.vloss.Add(node)
		}
	}
	return node
}

func (e *Engine) selectionScore(child, parent *Node) float64 {
	score := e.bandit.Score(child, parent)
	if !math.IsInf(score, 1) {
		if e.useProgressiveBias {
			score += e.progressiveBias(child)
		}
		if e.useAMAF {
			combined := e.amaf.Combined(child.AverageReward(), child.Action(), child.Visits())
			score = amafNodeWeight*score + (1-amafNodeWeight)*combined
		}
	}
	if e.workers > 1 {
		score -= e.vloss.Score(child)
	}
	return score
}

// progressiveBias rewards children close to pellets, children whose move
// just collected, and collections that rescued a dying streak. The term
// decays with sqrt of the visit count.
func (e *Engine) progressiveBias(child *Node) float64 {
	animal := child.State().MyAnimal()
	if animal == nil {
		animal = child.State().Animal(child.playerID)
	}
	if animal == nil {
		return 0
	}

	bias := 0.0
	if d := child.State().DistanceToNearestPellet(animal.Position); d >= 0 {
		bias += 1.0 / float64(1+d)
	}
	if parent := child.Parent(); parent != nil {
		if before := parent.State().Animal(child.playerID); before != nil {
			delta := animal.Score - before.Score
			if delta > 0 {
				bias += 8.0
				if delta >= 5 {
					// Power pellets and scavenger sweeps.
					bias += 12.0
				}
				if before.TicksSinceLastPellet >= 2 {
					bias += 4.0
				}
			}
		}
	}

	return biasWeight * bias / (1.0 + math.Sqrt(float64(child.Visits())))
}

// expand grows the selected node by one child, consulting the transposition
// table so equivalent positions share statistics.
func (e *Engine) expand(node *Node, rng *rand.Rand) *Node {
	child := node.Expand(rng)
	if child == node || !e.useTransposition {
		return child
	}

	hash := child.State().Hash()
	if existing := e.table.Lookup(hash); existing != nil && existing != child {
		child.adoptStats(existing)
	} else {
		e.table.Store(hash, child)
	}
	return child
}

// backpropagate walks parent pointers to the root, updating every node and
// releasing virtual losses; the rollout's move sequence feeds the AMAF
// table and the per-node RAVE slots.
func (e *Engine) backpropagate(node *Node, reward float64, moves []game.Action) {
	raveMoves := moves
	if len(raveMoves) > raveMaxDepth {
		raveMoves = raveMoves[:raveMaxDepth]
	}

	for current := node; current != nil; current = current.Parent() {
		current.Update(reward)
		if e.workers > 1 {
			e.vloss.Remove(current)
		}
		if e.useAMAF {
			for _, move := range raveMoves {
				current.UpdateRAVE(move, reward)
			}
		}
	}

	if e.useAMAF {
		for _, move := range moves {
			e.amaf.Update(move, reward)
		}
	}
}

// orderedRootActions sorts the root's legal actions by how close each one
// lands to the nearest pellet, cheapest first. UseItem keeps the animal in
// place and sorts by the current position.
func (e *Engine) orderedRootActions(root *Node) []game.Action {
	state := root.State()
	animal := state.Animal(root.playerID)
	if animal == nil {
		return nil
	}

	actions := state.LegalActions(root.playerID)
	distance := func(a game.Action) int {
		pos := animal.Position
		if a.IsMove() {
			pos = pos.Step(a)
		}
		d := state.DistanceToNearestPellet(pos)
		if d < 0 {
			d = state.Width + state.Height
		}
		return d
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return distance(actions[i]) < distance(actions[j])
	})
	return actions
}
