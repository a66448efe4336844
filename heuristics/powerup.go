package heuristics

import "zooscape/game"

// powerUpCollection rewards stepping onto power-ups, scavengers most, and
// gives a smaller pull toward ones nearby.
func (h *Heuristic) powerUpCollection(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil || !action.IsMove() {
		return 0
	}
	pos := animal.Position.Step(action)
	if !gs.IsValidPosition(pos.X, pos.Y) {
		return invalidPenalty
	}

	value := 0.0
	switch gs.CellAt(pos.X, pos.Y) {
	case game.CloakCell:
		value = 40.0
	case game.ScavengerCell:
		value = 60.0
	case game.MultiplierCell:
		value = 50.0
	default:
		nearby := gs.NearbyPowerUps(pos, 5)
		if len(nearby) > 0 {
			minDistance := -1
			for _, p := range nearby {
				if d := pos.ManhattanDistance(p); minDistance < 0 || d < minDistance {
					minDistance = d
				}
			}
			value = (5.0 - float64(minDistance)) * 5.0
		}
	}
	return h.Weight * value
}

// powerUpUsage rewards UseItem when the held item would pay off right now.
func (h *Heuristic) powerUpUsage(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil || action != game.UseItem {
		return 0
	}

	value := 0.0
	switch animal.HeldPowerUp {
	case game.Cloak:
		value = gs.ZookeeperThreat(animal.Position) * 30.0
	case game.Scavenger:
		value = float64(gs.CountPelletsInArea(animal.Position, 5)) * 15.0
	case game.MultiplierJuice:
		pellets := gs.CountPelletsInArea(animal.Position, 3)
		value = float64(pellets) * float64(animal.ScoreStreak) * 8.0
	}
	return h.Weight * value
}
