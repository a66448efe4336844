package game

// Spatial queries shared by the heuristics and the rollout policy.

// DistanceToNearestPellet returns the Manhattan distance from pos to the
// closest pellet or power pellet, or -1 when none remain.
func (gs *GameState) DistanceToNearestPellet(pos Position) int {
	best := -1
	for y := 0; y < gs.Height; y++ {
		for x := 0; x < gs.Width; x++ {
			if !gs.PelletBoard.Get(x, y) {
				continue
			}
			d := pos.ManhattanDistance(Position{X: x, Y: y})
			if best < 0 || d < best {
				best = d
			}
		}
	}
	return best
}

// ZookeeperThreat returns max(0, 10 - distance to the nearest zookeeper);
// zero means no zookeeper is within threatening range.
func (gs *GameState) ZookeeperThreat(pos Position) float64 {
	threat := 0.0
	for i := range gs.Zookeepers {
		d := pos.ManhattanDistance(gs.Zookeepers[i].Position)
		if t := 10.0 - float64(d); t > threat {
			threat = t
		}
	}
	return threat
}

// PredictZookeeperPosition iterates the greedy pursuit rule ticksAhead steps
// against the target's current position.
func (gs *GameState) PredictZookeeperPosition(zk *Zookeeper, ticksAhead int) Position {
	predicted := zk.Position
	if zk.TargetAnimalID == "" {
		return predicted
	}
	target := gs.Animal(zk.TargetAnimalID)
	if target == nil {
		return predicted
	}
	for i := 0; i < ticksAhead; i++ {
		predicted = gs.greedyStep(predicted, target.Position)
	}
	return predicted
}

// NearbyPellets lists pellet and power-pellet positions within a square of
// the given radius around pos.
func (gs *GameState) NearbyPellets(pos Position, radius int) []Position {
	var pellets []Position
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := pos.X+dx, pos.Y+dy
			if gs.IsValidPosition(x, y) && gs.PelletBoard.Get(x, y) {
				pellets = append(pellets, Position{X: x, Y: y})
			}
		}
	}
	return pellets
}

// NearbyPowerUps lists power-up positions within a square of the given
// radius around pos.
func (gs *GameState) NearbyPowerUps(pos Position, radius int) []Position {
	var powerUps []Position
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := pos.X+dx, pos.Y+dy
			if gs.IsValidPosition(x, y) && gs.PowerUpBoard.Get(x, y) {
				powerUps = append(powerUps, Position{X: x, Y: y})
			}
		}
	}
	return powerUps
}

// PelletDensity returns the fraction of in-bounds cells around center that
// hold a pellet.
func (gs *GameState) PelletDensity(center Position, radius int) float64 {
	pellets, total := 0, 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := center.X+dx, center.Y+dy
			if !gs.IsValidPosition(x, y) {
				continue
			}
			total++
			if gs.PelletBoard.Get(x, y) {
				pellets++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(pellets) / float64(total)
}

// CountPelletsInArea counts pellet cells within a square of the given radius
// around center.
func (gs *GameState) CountPelletsInArea(center Position, radius int) int {
	count := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := center.X+dx, center.Y+dy
			if gs.IsValidPosition(x, y) && gs.PelletBoard.Get(x, y) {
				count++
			}
		}
	}
	return count
}
