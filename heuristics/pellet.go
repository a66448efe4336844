package heuristics

import "zooscape/game"

// pelletDistance rewards closing in on the nearest pellet within radius 10.
func (h *Heuristic) pelletDistance(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil {
		return 0
	}
	pos, moved, valid := project(gs, animal, action)
	if !moved {
		return 0
	}
	if !valid {
		return invalidPenalty
	}

	minDistance := -1
	for _, pellet := range gs.NearbyPellets(pos, 10) {
		d := pos.ManhattanDistance(pellet)
		if minDistance < 0 || d < minDistance {
			minDistance = d
		}
	}
	if minDistance < 0 {
		return 0
	}
	return h.Weight * (20.0 - float64(minDistance)) / 20.0
}

// pelletDensity rewards moving into pellet-rich areas.
func (h *Heuristic) pelletDensity(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil {
		return 0
	}
	pos, moved, valid := project(gs, animal, action)
	if !moved {
		return 0
	}
	if !valid {
		return invalidPenalty
	}
	return h.Weight * gs.PelletDensity(pos, h.SearchRadius) * 100.0
}

// scoreStreak rewards pellet collection, urgently so when the streak is
// about to reset.
func (h *Heuristic) scoreStreak(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil {
		return 0
	}
	if action == game.UseItem {
		if animal.HeldPowerUp == game.Scavenger {
			return h.Weight * 50.0
		}
		return h.Weight * 10.0
	}
	pos, moved, valid := project(gs, animal, action)
	if !moved {
		return 0
	}
	if !valid {
		return invalidPenalty
	}

	if gs.CellAt(pos.X, pos.Y).IsPellet() {
		bonus := float64(animal.ScoreStreak) * 10.0
		if animal.TicksSinceLastPellet >= 2 {
			bonus += 30.0
		}
		return h.Weight * bonus
	}
	if animal.TicksSinceLastPellet >= 2 {
		return h.Weight * -20.0
	}
	return 0
}

// consecutivePellet counts pellets lined up in the movement direction.
func (h *Heuristic) consecutivePellet(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil || !action.IsMove() {
		return 0
	}
	pos := animal.Position.Step(action)
	if !gs.IsTraversable(pos.X, pos.Y) {
		return 0
	}

	dx, dy := action.Delta()
	consecutive := 0
	current := pos
	for step := 0; step < h.MaxLookahead; step++ {
		if !gs.IsTraversable(current.X, current.Y) {
			break
		}
		if !gs.CellAt(current.X, current.Y).IsPellet() {
			break
		}
		consecutive++
		current.X += dx
		current.Y += dy
	}
	return h.Weight * float64(consecutive)
}

// endgame concentrates on the last remaining pellets once the board runs dry.
func (h *Heuristic) endgame(gs *game.GameState, animalID string, action game.Action) float64 {
	totalPellets := gs.PelletBoard.PopCount()
	maxPellets := gs.Width * gs.Height
	if maxPellets == 0 || float64(totalPellets)/float64(maxPellets) > h.EndgameThreshold {
		return 0
	}

	animal := gs.Animal(animalID)
	if animal == nil {
		return 0
	}
	pos, moved, valid := project(gs, animal, action)
	if !moved {
		return 0
	}
	if !valid {
		return invalidPenalty
	}

	if gs.CellAt(pos.X, pos.Y).IsPellet() {
		return h.Weight * 100.0
	}
	minDistance := -1
	for _, pellet := range gs.NearbyPellets(pos, 10) {
		d := pos.ManhattanDistance(pellet)
		if minDistance < 0 || d < minDistance {
			minDistance = d
		}
	}
	if minDistance < 0 {
		return 0
	}
	return h.Weight * (10.0 - float64(minDistance)) * 5.0
}
