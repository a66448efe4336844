package heuristics

import "zooscape/game"

// centerControl prefers a moderate distance from the grid center.
func (h *Heuristic) centerControl(gs *game.GameState, animalID string, action game.Action) float64 {
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

	center := game.Position{X: gs.Width / 2, Y: gs.Height / 2}
	distance := float64(pos.ManhattanDistance(center))
	maxDistance := float64(gs.Width + gs.Height)
	if maxDistance == 0 {
		return 0
	}
	optimal := maxDistance * 0.3
	deviation := distance - optimal
	if deviation < 0 {
		deviation = -deviation
	}
	return h.Weight * (maxDistance - deviation) / maxDistance * 10.0
}

// wallAvoidance prefers cells with more escape routes.
func (h *Heuristic) wallAvoidance(gs *game.GameState, animalID string, action game.Action) float64 {
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

	open := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if gs.IsTraversable(pos.X+dx, pos.Y+dy) {
				open++
			}
		}
	}
	return h.Weight * float64(open) * 2.0
}

// movementConsistency rewards continuing straight and penalizes immediate
// reversals. It keeps per-animal memory across calls, so it is only useful
// at the root where the call order reflects real decisions.
func (h *Heuristic) movementConsistency(gs *game.GameState, animalID string, action game.Action) float64 {
	h.mu.Lock()
	last, seen := h.lastActions[animalID]
	h.lastActions[animalID] = action
	h.mu.Unlock()
	if !seen {
		return 0
	}

	if action == last && action != game.UseItem {
		return h.Weight * 5.0
	}
	reversed := (action == game.Up && last == game.Down) ||
		(action == game.Down && last == game.Up) ||
		(action == game.Left && last == game.Right) ||
		(action == game.Right && last == game.Left)
	if reversed {
		return h.Weight * -10.0
	}
	return 0
}

// territoryControl values cells commanding pellet-rich reachable area.
func (h *Heuristic) territoryControl(gs *game.GameState, animalID string, action game.Action) float64 {
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

	control := 0.0
	radius := h.ControlRadius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := pos.X+dx, pos.Y+dy
			if !gs.IsTraversable(x, y) {
				continue
			}
			if gs.PelletBoard.Get(x, y) {
				control += 10.0
			} else {
				control += 1.0
			}
			d := pos.ManhattanDistance(game.Position{X: x, Y: y})
			control += float64(radius-d) / float64(radius) * 5.0
		}
	}
	return h.Weight * control
}

// opponentBlocking rewards positions that out-race opponents to their
// nearby pellets.
func (h *Heuristic) opponentBlocking(gs *game.GameState, animalID string, action game.Action) float64 {
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

	blocking := 0.0
	for i := range gs.Animals {
		opponent := &gs.Animals[i]
		if opponent.ID == animalID {
			continue
		}
		for _, pellet := range gs.NearbyPellets(opponent.Position, 5) {
			theirs := opponent.Position.ManhattanDistance(pellet)
			mine := pos.ManhattanDistance(pellet)
			if mine < theirs {
				blocking += float64(theirs-mine) * 2.0
			}
		}
	}
	return h.Weight * blocking
}
