package searcher

import "zooscape/game"

// Terminal evaluation weights. The result is an unbounded raw score; the
// rollout squashes it together with the trajectory rewards.
const (
	caughtPenalty = 5000.0

	pelletWeight       = 1.0
	distanceWeight     = 30.0
	streakBonusWeight  = 15.0
	collectBonus       = 50.0
	streakRiskPenalty  = 100.0
	threatWeight       = 25.0
	extremeThreat      = 8.0
	extremeThreatCost  = 2000.0
	scavengerHeldValue = 300.0
	multiplierHeld     = 200.0
	cloakHeldBase      = 50.0
	cloakThreatScale   = 10.0
	powerUpProximity   = 10.0
	explorationWeight  = 200.0
	coverageFloor      = 0.05
	coverageTarget     = 0.20
	lowCoveragePenalty = 100.0
)

// evaluateTerminalState scores the end of a rollout trajectory from the
// player's perspective. A capture short-circuits to a large fixed penalty.
func (e *Engine) evaluateTerminalState(sim *game.GameState, playerID string) float64 {
	animal := sim.Animal(playerID)
	if animal == nil {
		return 0
	}
	if animal.IsCaught {
		return -caughtPenalty
	}

	score := pelletWeight * float64(animal.Score)

	// Closing distance to the next pellet is worth chasing even when the
	// trajectory did not reach it.
	if d := sim.DistanceToNearestPellet(animal.Position); d >= 0 {
		maxDistance := sim.Width + sim.Height
		if maxDistance < 1 {
			maxDistance = 1
		}
		score += distanceWeight * float64(maxDistance-d) / float64(maxDistance)
	}

	// Streak: quadratic bonus, immediate-collection bonus, and a penalty
	// when the streak is about to reset.
	streak := float64(animal.ScoreStreak)
	score += streakBonusWeight * streak * streak
	if animal.TicksSinceLastPellet == 0 {
		score += collectBonus
	} else if animal.TicksSinceLastPellet >= 2 {
		score -= streakRiskPenalty * float64(animal.TicksSinceLastPellet)
	}

	// Threat, with a hard penalty once a zookeeper is nearly on top of us.
	threat := sim.ZookeeperThreat(animal.Position)
	score -= threatWeight * threat
	if threat >= extremeThreat {
		score -= extremeThreatCost
	}

	// Held power-ups keep option value; cloak only matters under pressure.
	switch animal.HeldPowerUp {
	case game.Scavenger:
		score += scavengerHeldValue
	case game.MultiplierJuice:
		score += multiplierHeld
	case game.Cloak:
		score += cloakHeldBase + cloakThreatScale*threat
	}

	// Being near an uncollected power-up is almost as good as holding one.
	if powerUps := sim.NearbyPowerUps(animal.Position, 5); len(powerUps) > 0 {
		minDistance := -1
		for _, p := range powerUps {
			if d := animal.Position.ManhattanDistance(p); minDistance < 0 || d < minDistance {
				minDistance = d
			}
		}
		score += float64(5-minDistance) * powerUpProximity
	}

	// Coverage of the grid: reward real exploration, penalize stalling.
	totalCells := sim.Width * sim.Height
	if totalCells > 0 {
		ratio := float64(len(sim.VisitedCells)) / float64(totalCells)
		if ratio >= coverageFloor {
			score += explorationWeight * ratio
		}
		if ratio < coverageTarget {
			score -= lowCoveragePenalty * (coverageTarget - ratio)
		}
	}

	return score
}
