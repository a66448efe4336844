package engine

import (
	"golang.org/x/exp/rand"

	"zooscape/game"
)

// GenerateArena builds a self-play map: perimeter walls, a few interior
// wall segments, a pellet field, a handful of power-ups, the bot, and one
// zookeeper in the opposite corner.
func GenerateArena(width, height int, seed uint64, botID string) *game.GameState {
	rng := rand.New(rand.NewSource(seed))
	gs := game.NewGameState(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				gs.SetCell(x, y, game.Wall)
			}
		}
	}

	// Short interior wall segments, sparse enough to keep the map connected
	// in practice.
	segments := (width * height) / 60
	for i := 0; i < segments; i++ {
		x := 2 + rng.Intn(width-4)
		y := 2 + rng.Intn(height-4)
		length := 2 + rng.Intn(3)
		for j := 0; j < length; j++ {
			if rng.Intn(2) == 0 {
				gs.SetCell(x+j, y, game.Wall)
			} else {
				gs.SetCell(x, y+j, game.Wall)
			}
		}
	}

	spawn := game.Position{X: 1, Y: 1}
	gs.SetCell(spawn.X, spawn.Y, game.Empty)

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			pos := game.Position{X: x, Y: y}
			if pos == spawn || gs.CellAt(x, y) == game.Wall {
				continue
			}
			switch {
			case rng.Float64() < 0.35:
				gs.SetCell(x, y, game.Pellet)
			case rng.Float64() < 0.01:
				gs.SetCell(x, y, game.PowerPellet)
			}
		}
	}

	powerUps := []game.CellContent{game.CloakCell, game.ScavengerCell, game.MultiplierCell}
	for _, content := range powerUps {
		for attempts := 0; attempts < 50; attempts++ {
			x := 1 + rng.Intn(width-2)
			y := 1 + rng.Intn(height-2)
			if gs.IsTraversable(x, y) && (game.Position{X: x, Y: y}) != spawn {
				gs.SetCell(x, y, content)
				break
			}
		}
	}

	gs.Animals = append(gs.Animals, game.Animal{
		ID:            botID,
		Nickname:      botID,
		Position:      spawn,
		SpawnPosition: spawn,
		IsViable:      true,
		ScoreStreak:   1,
	})
	gs.MyAnimalID = botID

	zkSpawn := game.Position{X: width - 2, Y: height - 2}
	gs.SetCell(zkSpawn.X, zkSpawn.Y, game.Empty)
	gs.Zookeepers = append(gs.Zookeepers, game.Zookeeper{
		ID:             "zookeeper-1",
		Position:       zkSpawn,
		SpawnPosition:  zkSpawn,
		TargetAnimalID: botID,
	})

	return gs
}
