package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// newArena builds a state of the given size with solid perimeter walls.
func newArena(width, height int) *GameState {
	gs := NewGameState(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				gs.SetCell(x, y, Wall)
			}
		}
	}
	return gs
}

func addAnimal(gs *GameState, id string, pos Position) *Animal {
	gs.Animals = append(gs.Animals, Animal{
		ID:            id,
		Nickname:      id,
		Position:      pos,
		SpawnPosition: pos,
		IsViable:      true,
		ScoreStreak:   1,
	})
	return &gs.Animals[len(gs.Animals)-1]
}

func addZookeeper(gs *GameState, id string, pos Position, target string) *Zookeeper {
	gs.Zookeepers = append(gs.Zookeepers, Zookeeper{
		ID:             id,
		Position:       pos,
		SpawnPosition:  pos,
		TargetAnimalID: target,
	})
	return &gs.Zookeepers[len(gs.Zookeepers)-1]
}

func TestLegalActions(t *testing.T) {
	t.Run("open cell offers all four moves", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 3, Y: 3})

		actions := gs.LegalActions("me")

		require.ElementsMatch(t, []Action{Up, Down, Left, Right}, actions)
	})

	t.Run("walls remove blocked directions", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 1, Y: 1})

		actions := gs.LegalActions("me")

		require.ElementsMatch(t, []Action{Down, Right}, actions,
			"corner cell should only offer the two open directions")
	})

	t.Run("held power-up adds UseItem", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		animal.HeldPowerUp = Cloak

		require.Contains(t, gs.LegalActions("me"), UseItem)
	})

	t.Run("absent animal yields no actions", func(t *testing.T) {
		gs := newArena(7, 7)

		require.Empty(t, gs.LegalActions("ghost"))
	})
}

func TestApplyActionMovement(t *testing.T) {
	t.Run("move into open cell", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 3, Y: 3})

		gs.ApplyAction("me", Right)

		animal := gs.Animal("me")
		require.Equal(t, Position{X: 4, Y: 3}, animal.Position)
		require.Equal(t, 1, animal.DistanceCovered)
		require.Equal(t, 1, gs.Tick)
		require.Contains(t, gs.VisitedCells, Position{X: 4, Y: 3})
	})

	t.Run("move into wall consumes the tick without moving", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 1, Y: 1})

		gs.ApplyAction("me", Up)

		animal := gs.Animal("me")
		require.Equal(t, Position{X: 1, Y: 1}, animal.Position)
		require.Equal(t, 0, animal.DistanceCovered)
		require.Equal(t, 1, gs.Tick)
	})

	t.Run("unknown animal is a no-op that consumes the tick", func(t *testing.T) {
		gs := newArena(7, 7)

		gs.ApplyAction("ghost", Up)

		require.Equal(t, 1, gs.Tick)
	})
}

func TestPelletCapture(t *testing.T) {
	t.Run("pellet pays the streak and grows it", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		animal.ScoreStreak = 2
		gs.SetCell(4, 3, Pellet)
		before := gs.PelletBoard.PopCount()

		gs.ApplyAction("me", Right)

		animal = gs.Animal("me")
		require.Equal(t, 2, animal.Score)
		require.Equal(t, 3, animal.ScoreStreak)
		require.Equal(t, 0, animal.TicksSinceLastPellet)
		require.Equal(t, before-1, gs.PelletBoard.PopCount(),
			"pellet board should lose exactly one bit")
		require.Equal(t, Empty, gs.CellAt(4, 3))
	})

	t.Run("streak clamps at four", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		animal.ScoreStreak = 4
		gs.SetCell(4, 3, Pellet)

		gs.ApplyAction("me", Right)

		require.Equal(t, 4, gs.Animal("me").ScoreStreak)
	})

	t.Run("power pellet pays ten times the streak", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		animal.ScoreStreak = 3
		gs.SetCell(4, 3, PowerPellet)

		gs.ApplyAction("me", Right)

		require.Equal(t, 30, gs.Animal("me").Score)
	})

	t.Run("multiplier juice triples pellet value while active", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		animal.ActivePowerUp = MultiplierJuice
		animal.PowerUpDuration = 3
		gs.SetCell(4, 3, Pellet)

		gs.ApplyAction("me", Right)

		require.Equal(t, 3, gs.Animal("me").Score)
	})
}

func TestStreakDecay(t *testing.T) {
	gs := newArena(9, 9)
	animal := addAnimal(gs, "me", Position{X: 4, Y: 4})
	animal.ScoreStreak = 4

	gs.ApplyAction("me", Right)
	require.Equal(t, 4, gs.Animal("me").ScoreStreak, "one idle tick keeps the streak")

	gs.ApplyAction("me", Right)
	require.Equal(t, 4, gs.Animal("me").ScoreStreak, "two idle ticks keep the streak")

	gs.ApplyAction("me", Left)
	require.Equal(t, 1, gs.Animal("me").ScoreStreak, "third idle tick resets the streak")
}

func TestPowerUpPickupAndUse(t *testing.T) {
	t.Run("stepping onto a power-up stores it", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 3, Y: 3})
		gs.SetCell(4, 3, ScavengerCell)

		gs.ApplyAction("me", Right)

		animal := gs.Animal("me")
		require.Equal(t, Scavenger, animal.HeldPowerUp)
		require.Equal(t, Empty, gs.CellAt(4, 3))
		require.Equal(t, 0, gs.PowerUpBoard.PopCount())
	})

	t.Run("cloak activates for twenty ticks", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		animal.HeldPowerUp = Cloak

		gs.ApplyAction("me", UseItem)

		animal = gs.Animal("me")
		require.Equal(t, NoPowerUp, animal.HeldPowerUp)
		require.Equal(t, Cloak, animal.ActivePowerUp)
		require.Equal(t, 19, animal.PowerUpDuration, "duration ticks down on the activation tick")
	})

	t.Run("scavenger sweeps the surrounding square", func(t *testing.T) {
		gs := newArena(15, 15)
		animal := addAnimal(gs, "me", Position{X: 7, Y: 7})
		animal.HeldPowerUp = Scavenger
		animal.ScoreStreak = 2

		// Eight pellets inside the 11x11 square, one outside it.
		inside := []Position{
			{X: 3, Y: 3}, {X: 7, Y: 2}, {X: 12, Y: 7}, {X: 7, Y: 12},
			{X: 5, Y: 9}, {X: 9, Y: 5}, {X: 2, Y: 7}, {X: 8, Y: 8},
		}
		for _, p := range inside {
			gs.SetCell(p.X, p.Y, Pellet)
		}
		gs.SetCell(13, 13, Pellet)

		gs.ApplyAction("me", UseItem)

		animal = gs.Animal("me")
		require.Equal(t, 16, animal.Score, "each swept pellet should pay the streak")
		require.Equal(t, 0, animal.TicksSinceLastPellet)
		require.Equal(t, 1, gs.PelletBoard.PopCount(), "only the far pellet should survive")
	})
}

func TestCaptureResolution(t *testing.T) {
	t.Run("zookeeper on the target cell captures", func(t *testing.T) {
		gs := newArena(9, 9)
		animal := addAnimal(gs, "me", Position{X: 5, Y: 5})
		animal.SpawnPosition = Position{X: 1, Y: 1}
		animal.Score = 100
		animal.ScoreStreak = 4
		addZookeeper(gs, "zk", Position{X: 5, Y: 5}, "me")

		gs.ApplyAction("me", None)

		animal = gs.Animal("me")
		require.True(t, animal.IsCaught)
		require.Equal(t, Position{X: 1, Y: 1}, animal.Position, "caught animal teleports to spawn")
		require.Equal(t, 80, animal.Score, "capture keeps 80 percent of the score")
		require.Equal(t, 1, animal.ScoreStreak)
		require.Equal(t, 1, animal.CapturedCounter)
	})

	t.Run("active power-up prevents the capture", func(t *testing.T) {
		gs := newArena(9, 9)
		animal := addAnimal(gs, "me", Position{X: 5, Y: 5})
		animal.SpawnPosition = Position{X: 1, Y: 1}
		animal.ActivePowerUp = Cloak
		animal.PowerUpDuration = 5
		addZookeeper(gs, "zk", Position{X: 5, Y: 5}, "me")

		gs.ApplyAction("me", None)

		require.False(t, gs.Animal("me").IsCaught)
	})
}

func TestZookeeperStepping(t *testing.T) {
	t.Run("prefers the x axis", func(t *testing.T) {
		gs := newArena(9, 9)
		addAnimal(gs, "me", Position{X: 6, Y: 6})
		addZookeeper(gs, "zk", Position{X: 2, Y: 2}, "me")

		gs.ApplyAction("me", None)

		require.Equal(t, Position{X: 3, Y: 2}, gs.Zookeepers[0].Position)
	})

	t.Run("falls through to y when x is blocked", func(t *testing.T) {
		gs := newArena(9, 9)
		addAnimal(gs, "me", Position{X: 6, Y: 6})
		gs.SetCell(3, 2, Wall)
		addZookeeper(gs, "zk", Position{X: 2, Y: 2}, "me")

		gs.ApplyAction("me", None)

		require.Equal(t, Position{X: 2, Y: 3}, gs.Zookeepers[0].Position)
	})

	t.Run("retargets the nearest viable animal every twenty ticks", func(t *testing.T) {
		gs := newArena(20, 9)
		near := addAnimal(gs, "near", Position{X: 5, Y: 4})
		near.SpawnPosition = Position{X: 1, Y: 1}
		far := addAnimal(gs, "far", Position{X: 18, Y: 7})
		far.SpawnPosition = Position{X: 18, Y: 1}
		zk := addZookeeper(gs, "zk", Position{X: 4, Y: 4}, "")
		zk.TicksSinceTargetUpdate = RetargetInterval - 1

		gs.ApplyAction("near", None)

		require.Equal(t, "near", gs.Zookeepers[0].TargetAnimalID)
		require.Equal(t, 0, gs.Zookeepers[0].TicksSinceTargetUpdate)
	})

	t.Run("ignores animals on their spawn", func(t *testing.T) {
		gs := newArena(20, 9)
		addAnimal(gs, "camping", Position{X: 5, Y: 4})
		roaming := addAnimal(gs, "roaming", Position{X: 18, Y: 7})
		roaming.SpawnPosition = Position{X: 18, Y: 1}
		zk := addZookeeper(gs, "zk", Position{X: 4, Y: 4}, "")
		zk.TicksSinceTargetUpdate = RetargetInterval - 1

		gs.ApplyAction("camping", None)

		require.Equal(t, "roaming", gs.Zookeepers[0].TargetAnimalID,
			"animals sitting on spawn should not be targeted")
	})
}

func TestPredictZookeeperPosition(t *testing.T) {
	gs := newArena(9, 9)
	addAnimal(gs, "me", Position{X: 6, Y: 4})
	zk := addZookeeper(gs, "zk", Position{X: 2, Y: 4}, "me")

	predicted := gs.PredictZookeeperPosition(zk, 3)

	require.Equal(t, Position{X: 5, Y: 4}, predicted)
	require.Equal(t, Position{X: 2, Y: 4}, zk.Position, "prediction should not move the zookeeper")
}

func TestIsTerminal(t *testing.T) {
	t.Run("no pellets left", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 3, Y: 3})
		gs.MyAnimalID = "me"

		require.True(t, gs.IsTerminal())

		gs.SetCell(5, 5, Pellet)
		require.False(t, gs.IsTerminal())
	})

	t.Run("own animal caught", func(t *testing.T) {
		gs := newArena(7, 7)
		animal := addAnimal(gs, "me", Position{X: 3, Y: 3})
		gs.MyAnimalID = "me"
		gs.SetCell(5, 5, Pellet)
		animal.IsCaught = true

		require.True(t, gs.IsTerminal())
	})

	t.Run("tick limit", func(t *testing.T) {
		gs := newArena(7, 7)
		addAnimal(gs, "me", Position{X: 3, Y: 3})
		gs.MyAnimalID = "me"
		gs.SetCell(5, 5, Pellet)
		gs.Tick = MaxTicks

		require.True(t, gs.IsTerminal())
	})
}

func TestCloneIndependence(t *testing.T) {
	gs := newArena(9, 9)
	addAnimal(gs, "me", Position{X: 4, Y: 4})
	gs.MyAnimalID = "me"
	gs.SetCell(5, 4, Pellet)
	addZookeeper(gs, "zk", Position{X: 1, Y: 1}, "me")

	clone := gs.Clone()
	clone.ApplyAction("me", Right)

	require.Equal(t, Position{X: 4, Y: 4}, gs.Animal("me").Position,
		"mutating the clone should not touch the original")
	require.Equal(t, 1, gs.PelletBoard.PopCount())
	require.Equal(t, 0, clone.PelletBoard.PopCount())

	// Applying the same action to the original must match the clone.
	gs.ApplyAction("me", Right)
	require.Equal(t, clone.Animal("me").Score, gs.Animal("me").Score)
	require.Equal(t, clone.Hash(), gs.Hash(), "identical histories should hash alike")
}

func TestHashSensitivity(t *testing.T) {
	gs := newArena(9, 9)
	addAnimal(gs, "me", Position{X: 4, Y: 4})
	gs.MyAnimalID = "me"
	gs.SetCell(6, 4, Pellet)

	base := gs.Hash()

	moved := gs.Clone()
	moved.ApplyAction("me", Right)
	require.NotEqual(t, base, moved.Hash(), "position and tick changes should change the hash")
}

func TestValidate(t *testing.T) {
	require.NoError(t, newArena(7, 7).Validate())

	bad := newArena(7, 7)
	bad.Width = 0
	require.ErrorIs(t, bad.Validate(), ErrMalformedState)

	mismatch := newArena(7, 7)
	mismatch.Cells = mismatch.Cells[:10]
	require.ErrorIs(t, mismatch.Validate(), ErrMalformedState)

	boards := newArena(7, 7)
	boards.WallBoard = NewBitBoard(3, 3)
	require.ErrorIs(t, boards.Validate(), ErrMalformedState)
}

// Random walks must never leave the grid or stand inside a wall, and the
// streak stays clamped the whole time.
func TestSimulationInvariants(t *testing.T) {
	gs := newArena(12, 12)
	addAnimal(gs, "me", Position{X: 5, Y: 5})
	gs.MyAnimalID = "me"
	for _, p := range []Position{{X: 2, Y: 2}, {X: 9, Y: 3}, {X: 4, Y: 8}, {X: 10, Y: 10}} {
		gs.SetCell(p.X, p.Y, Pellet)
	}
	addZookeeper(gs, "zk", Position{X: 10, Y: 1}, "me")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		actions := gs.LegalActions("me")
		if len(actions) == 0 {
			break
		}
		gs.ApplyAction("me", actions[rng.Intn(len(actions))])

		animal := gs.Animal("me")
		require.True(t, gs.IsValidPosition(animal.Position.X, animal.Position.Y))
		require.False(t, gs.WallBoard.Get(animal.Position.X, animal.Position.Y))
		require.GreaterOrEqual(t, animal.ScoreStreak, 1)
		require.LessOrEqual(t, animal.ScoreStreak, MaxScoreStreak)
		require.GreaterOrEqual(t, animal.Score, 0)
		if animal.IsCaught {
			require.Equal(t, animal.SpawnPosition, animal.Position)
			break
		}
	}
}
