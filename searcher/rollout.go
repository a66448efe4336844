package searcher

import (
	"golang.org/x/exp/rand"

	"zooscape/game"
)

const (
	rolloutGamma      = 0.95
	explorationReward = 20.0
	revisitPenalty    = 10.0
	cyclePenalty      = 100.0
	capturePenalty    = 500.0
	cycleStopLimit    = 3
	cycleFinalPenalty = 1000.0
)

// rollout plays the simulation phase from a freshly expanded node's state:
// a greedy heuristic policy walks the simulator forward, immediate rewards
// decay geometrically, cycles and captures are punished, and the terminal
// evaluation closes the trajectory. The return value is normalized into
// [0, RewardScale]; the action sequence feeds the AMAF table.
//
// Any panic inside the simulation is trapped and the reward accumulated so
// far stands.
func (e *Engine) rollout(state *game.GameState, playerID string, rng *rand.Rand) (reward float64, moves []game.Action) {
	sim := state.Clone()
	raw := 0.0
	cycles := 0
	decay := 1.0
	seen := map[game.StateHash]struct{}{sim.Hash(): {}}

	defer func() {
		if recover() != nil {
			reward = normalizeReward(raw)
		}
	}()

	for depth := 0; depth < e.maxDepth; depth++ {
		if sim.IsTerminal() {
			break
		}
		actions := sim.LegalActions(playerID)
		if len(actions) == 0 {
			break
		}

		action := e.rolloutAction(sim, playerID, actions, rng)
		moves = append(moves, action)

		animal := sim.Animal(playerID)
		scoreBefore := animal.Score
		target := animal.Position.Step(action)
		_, revisit := sim.VisitedCells[target]

		sim.ApplyAction(playerID, action)

		animal = sim.Animal(playerID)
		if delta := animal.Score - scoreBefore; delta > 0 {
			streak := animal.ScoreStreak
			if streak < 1 {
				streak = 1
			}
			raw += decay * float64(delta) * 100.0 * float64(streak)
		}
		if action.IsMove() {
			if revisit {
				raw -= decay * revisitPenalty
			} else {
				raw += decay * explorationReward
			}
		}

		if sim.PlayerCaught(playerID) {
			raw -= decay * capturePenalty
			break
		}

		hash := sim.Hash()
		if _, repeated := seen[hash]; repeated {
			raw -= decay * cyclePenalty
			cycles++
			if cycles > cycleStopLimit {
				break
			}
		} else {
			seen[hash] = struct{}{}
		}

		decay *= rolloutGamma
	}

	if sim.IsTerminal() {
		e.metrics.AddFullRollout()
	}
	raw += decay * e.evaluateTerminalState(sim, playerID)
	raw -= cycleFinalPenalty * float64(cycles)

	return normalizeReward(raw), moves
}

// Simulation-policy scoring constants. Pellets dominate, kind and streak
// scale the pull, threat pushes back, and a little noise keeps rollouts
// from collapsing onto one line.
const (
	simPelletBase      = 100.0
	simPowerPelletBase = 150.0
	simScavengerBonus  = 80.0
	simMultiplierBonus = 60.0
	simCloakBonus      = 50.0
	simDistanceBonus   = 50.0
	simThreatPenalty   = 20.0
	simNoise           = 10.0
)

// rolloutAction is the fast greedy simulation policy. A held scavenger is
// always used; otherwise each legal action is scored and the max wins.
func (e *Engine) rolloutAction(sim *game.GameState, playerID string, actions []game.Action, rng *rand.Rand) game.Action {
	animal := sim.Animal(playerID)
	if animal != nil && animal.HeldPowerUp == game.Scavenger {
		for _, a := range actions {
			if a == game.UseItem {
				return a
			}
		}
	}

	best := actions[0]
	bestScore := -1e18
	for _, action := range actions {
		score := e.scoreRolloutAction(sim, animal, action)
		score += rng.Float64() * simNoise
		if score > bestScore {
			bestScore = score
			best = action
		}
	}
	return best
}

func (e *Engine) scoreRolloutAction(sim *game.GameState, animal *game.Animal, action game.Action) float64 {
	if animal == nil {
		return 0
	}
	if action == game.UseItem {
		switch animal.HeldPowerUp {
		case game.Cloak:
			return sim.ZookeeperThreat(animal.Position) * 10.0
		case game.MultiplierJuice:
			return float64(sim.CountPelletsInArea(animal.Position, 3)) * 8.0
		}
		return 0
	}

	next := animal.Position.Step(action)
	score := 0.0

	streak := float64(animal.ScoreStreak)
	switch sim.CellAt(next.X, next.Y) {
	case game.Pellet:
		score += simPelletBase * streak
	case game.PowerPellet:
		score += simPowerPelletBase * streak
	case game.ScavengerCell:
		score += simScavengerBonus
	case game.MultiplierCell:
		score += simMultiplierBonus
	case game.CloakCell:
		score += simCloakBonus
	}

	if d := sim.DistanceToNearestPellet(next); d >= 0 {
		score += simDistanceBonus / float64(1+d)
	}
	score -= simThreatPenalty * sim.ZookeeperThreat(next)

	return score
}
