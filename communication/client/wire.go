package client

import (
	"fmt"

	"zooscape/game"
)

// Wire DTOs mirroring the runner's hub payloads.

type wireCell struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Content int `json:"content"`
}

type wireAnimal struct {
	ID                   string `json:"id"`
	Nickname             string `json:"nickname"`
	X                    int    `json:"x"`
	Y                    int    `json:"y"`
	SpawnX               int    `json:"spawnX"`
	SpawnY               int    `json:"spawnY"`
	Score                int    `json:"score"`
	CapturedCounter      int    `json:"capturedCounter"`
	DistanceCovered      int    `json:"distanceCovered"`
	IsViable             bool   `json:"isViable"`
	HeldPowerUp          int    `json:"heldPowerUp"`
	PowerUpDuration      int    `json:"powerUpDuration"`
	ScoreStreak          int    `json:"scoreStreak"`
	TicksSinceLastPellet int    `json:"ticksSinceLastPellet"`
}

type wireZookeeper struct {
	ID                     string `json:"id"`
	Nickname               string `json:"nickname"`
	X                      int    `json:"x"`
	Y                      int    `json:"y"`
	SpawnX                 int    `json:"spawnX"`
	SpawnY                 int    `json:"spawnY"`
	TargetAnimalID         string `json:"targetAnimalId"`
	TicksSinceTargetUpdate int    `json:"ticksSinceTargetUpdate"`
}

type wireState struct {
	Tick           int             `json:"tick"`
	RemainingTicks int             `json:"remainingTicks"`
	GameMode       string          `json:"gameMode"`
	Cells          []wireCell      `json:"cells"`
	Animals        []wireAnimal    `json:"animals"`
	Zookeepers     []wireZookeeper `json:"zookeepers"`
}

// toGameState turns a wire payload into a simulator state. Grid dimensions
// come from the cell list; an empty or inconsistent payload is malformed.
func (w *wireState) toGameState() (*game.GameState, error) {
	if len(w.Cells) == 0 {
		return nil, fmt.Errorf("decoding state at tick %d: no cells: %w", w.Tick, game.ErrMalformedState)
	}

	width, height := 0, 0
	for _, cell := range w.Cells {
		if cell.X < 0 || cell.Y < 0 {
			return nil, fmt.Errorf("decoding state at tick %d: cell at %d,%d: %w",
				w.Tick, cell.X, cell.Y, game.ErrMalformedState)
		}
		if cell.X+1 > width {
			width = cell.X + 1
		}
		if cell.Y+1 > height {
			height = cell.Y + 1
		}
	}

	gs := game.NewGameState(width, height)
	gs.Tick = w.Tick
	gs.RemainingTicks = w.RemainingTicks
	gs.GameMode = w.GameMode

	for _, cell := range w.Cells {
		content := game.CellContent(cell.Content)
		// Animal and zookeeper markers are transient; the lists below carry
		// the real entities.
		if content == game.AnimalMarker || content == game.ZookeeperMarker {
			content = game.Empty
		}
		gs.SetCell(cell.X, cell.Y, content)
	}

	for _, a := range w.Animals {
		if a.ID == "" {
			continue
		}
		streak := a.ScoreStreak
		if streak < 1 {
			streak = 1
		}
		gs.Animals = append(gs.Animals, game.Animal{
			ID:                   a.ID,
			Nickname:             a.Nickname,
			Position:             game.Position{X: a.X, Y: a.Y},
			SpawnPosition:        game.Position{X: a.SpawnX, Y: a.SpawnY},
			Score:                a.Score,
			CapturedCounter:      a.CapturedCounter,
			DistanceCovered:      a.DistanceCovered,
			IsViable:             a.IsViable,
			HeldPowerUp:          game.PowerUpType(a.HeldPowerUp),
			PowerUpDuration:      a.PowerUpDuration,
			ScoreStreak:          streak,
			TicksSinceLastPellet: a.TicksSinceLastPellet,
		})
	}

	for _, zk := range w.Zookeepers {
		if zk.ID == "" {
			continue
		}
		gs.Zookeepers = append(gs.Zookeepers, game.Zookeeper{
			ID:                     zk.ID,
			Nickname:               zk.Nickname,
			Position:               game.Position{X: zk.X, Y: zk.Y},
			SpawnPosition:          game.Position{X: zk.SpawnX, Y: zk.SpawnY},
			TargetAnimalID:         zk.TargetAnimalID,
			TicksSinceTargetUpdate: zk.TicksSinceTargetUpdate,
		})
	}

	if err := gs.Validate(); err != nil {
		return nil, fmt.Errorf("decoding state at tick %d: %w", w.Tick, err)
	}
	return gs, nil
}
