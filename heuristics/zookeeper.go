package heuristics

import "zooscape/game"

// zookeeperAvoidance penalizes closing in on zookeepers inside the danger
// radius and rewards cloaking when threatened.
func (h *Heuristic) zookeeperAvoidance(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil {
		return 0
	}
	if action == game.UseItem {
		if animal.HeldPowerUp == game.Cloak {
			return h.Weight * gs.ZookeeperThreat(animal.Position) * 20.0
		}
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
	for i := range gs.Zookeepers {
		d := pos.ManhattanDistance(gs.Zookeepers[i].Position)
		if minDistance < 0 || d < minDistance {
			minDistance = d
		}
	}
	if minDistance < 0 {
		return 0
	}
	if minDistance < h.DangerRadius {
		penalty := float64(h.DangerRadius-minDistance) * 20.0
		return h.Weight * -penalty
	}
	safe := float64(minDistance)
	if safe > 10 {
		safe = 10
	}
	return h.Weight * safe
}

// zookeeperPrediction penalizes cells the pursuers are projected to pass
// through over the next few ticks.
func (h *Heuristic) zookeeperPrediction(gs *game.GameState, animalID string, action game.Action) float64 {
	animal := gs.Animal(animalID)
	if animal == nil || !action.IsMove() {
		return 0
	}
	pos := animal.Position.Step(action)
	if !gs.IsValidPosition(pos.X, pos.Y) {
		return invalidPenalty
	}

	totalThreat := 0.0
	for i := range gs.Zookeepers {
		zk := &gs.Zookeepers[i]
		for step := 1; step <= h.PredictionSteps; step++ {
			predicted := gs.PredictZookeeperPosition(zk, step)
			if d := pos.ManhattanDistance(predicted); d < 3 {
				totalThreat += (3.0 - float64(d)) * float64(h.PredictionSteps-step+1) * 10.0
			}
		}
	}
	return h.Weight * -totalThreat
}
