package game

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
)

const (
	// MaxTicks bounds a game; reaching it ends the run.
	MaxTicks = 1000

	// StreakResetTicks is how many pellet-less ticks a streak survives.
	StreakResetTicks = 3

	// MaxScoreStreak caps the per-pellet streak multiplier.
	MaxScoreStreak = 4

	// RetargetInterval is how often a zookeeper re-picks its target.
	RetargetInterval = 20

	// ScavengerRadius is the half-width of the scavenger sweep square.
	ScavengerRadius = 5

	cloakDuration      = 20
	scavengerDuration  = 5
	multiplierDuration = 5
	multiplierFactor   = 3
	powerPelletFactor  = 10
)

// ErrMalformedState marks a state whose dimensions or boards are
// inconsistent; the simulator refuses to operate on such states.
var ErrMalformedState = errors.New("malformed game state")

// GameState is the compact forward model used for search rollouts. It is
// mutated in place by ApplyAction; independent copies come from Clone.
type GameState struct {
	Width          int
	Height         int
	Tick           int
	RemainingTicks int
	GameMode       string

	// Cells is the row-major grid; the bitboards below are kept in sync
	// with it through SetCell.
	Cells        []CellContent
	PelletBoard  BitBoard
	PowerUpBoard BitBoard
	WallBoard    BitBoard

	Animals    []Animal
	Zookeepers []Zookeeper
	MyAnimalID string

	// VisitedCells records every cell reached during a rollout, feeding the
	// exploration terms of the evaluation.
	VisitedCells map[Position]struct{}
}

// NewGameState returns an empty state of the given dimensions.
func NewGameState(width, height int) *GameState {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &GameState{
		Width:        width,
		Height:       height,
		Cells:        make([]CellContent, width*height),
		PelletBoard:  NewBitBoard(width, height),
		PowerUpBoard: NewBitBoard(width, height),
		WallBoard:    NewBitBoard(width, height),
		VisitedCells: make(map[Position]struct{}),
	}
}

// Validate reports ErrMalformedState when dimensions are non-positive or the
// boards disagree with the grid size.
func (gs *GameState) Validate() error {
	if gs.Width <= 0 || gs.Height <= 0 {
		return ErrMalformedState
	}
	if len(gs.Cells) != gs.Width*gs.Height {
		return ErrMalformedState
	}
	for _, b := range []BitBoard{gs.PelletBoard, gs.PowerUpBoard, gs.WallBoard} {
		if b.Width() != gs.Width || b.Height() != gs.Height {
			return ErrMalformedState
		}
	}
	return nil
}

// IsValidPosition reports whether (x, y) lies inside the grid.
func (gs *GameState) IsValidPosition(x, y int) bool {
	return x >= 0 && x < gs.Width && y >= 0 && y < gs.Height
}

// IsTraversable reports whether an animal may stand on (x, y).
func (gs *GameState) IsTraversable(x, y int) bool {
	return gs.IsValidPosition(x, y) && !gs.WallBoard.Get(x, y)
}

// CellAt returns the content at (x, y). Out-of-range reads as Wall so that
// callers treat the border as solid.
func (gs *GameState) CellAt(x, y int) CellContent {
	if !gs.IsValidPosition(x, y) {
		return Wall
	}
	return gs.Cells[y*gs.Width+x]
}

// SetCell writes the content at (x, y) and keeps the bitboards in sync.
// Out-of-range writes are ignored.
func (gs *GameState) SetCell(x, y int, content CellContent) {
	if !gs.IsValidPosition(x, y) {
		return
	}
	gs.Cells[y*gs.Width+x] = content
	gs.PelletBoard.Set(x, y, content.IsPellet())
	gs.PowerUpBoard.Set(x, y, content.IsPowerUp())
	gs.WallBoard.Set(x, y, content == Wall)
}

// Animal returns a pointer into the animal slice, or nil when the id is
// unknown. The pointer is invalidated by Clone.
func (gs *GameState) Animal(id string) *Animal {
	for i := range gs.Animals {
		if gs.Animals[i].ID == id {
			return &gs.Animals[i]
		}
	}
	return nil
}

// MyAnimal returns the own animal, or nil.
func (gs *GameState) MyAnimal() *Animal {
	return gs.Animal(gs.MyAnimalID)
}

// PlayerCaught reports whether the animal was captured during simulation.
func (gs *GameState) PlayerCaught(id string) bool {
	animal := gs.Animal(id)
	return animal != nil && animal.IsCaught
}

// LegalActions enumerates the actions available to an animal: one move per
// adjacent traversable cell plus UseItem while holding a power-up. An absent
// animal yields no actions.
func (gs *GameState) LegalActions(animalID string) []Action {
	animal := gs.Animal(animalID)
	if animal == nil {
		return nil
	}
	actions := make([]Action, 0, 5)
	for _, move := range MoveActions {
		next := animal.Position.Step(move)
		if gs.IsTraversable(next.X, next.Y) {
			actions = append(actions, move)
		}
	}
	if animal.HeldPowerUp != NoPowerUp {
		actions = append(actions, UseItem)
	}
	return actions
}

// ApplyAction advances the state by one tick: the animal acts, streak and
// power-up clocks tick, every zookeeper takes one greedy step, and captures
// resolve. Unknown animals and blocked moves are no-ops that still consume
// the tick.
func (gs *GameState) ApplyAction(animalID string, action Action) {
	gs.Tick++
	if gs.RemainingTicks > 0 {
		gs.RemainingTicks--
	}

	animal := gs.Animal(animalID)
	if animal == nil {
		return
	}

	collected := false
	switch {
	case action == UseItem:
		collected = gs.useHeldItem(animal)
	case action.IsMove():
		next := animal.Position.Step(action)
		if gs.IsTraversable(next.X, next.Y) {
			animal.Position = next
			gs.VisitedCells[next] = struct{}{}
			animal.DistanceCovered++
			collected = gs.enterCell(animal, next)
		}
	}

	if collected {
		animal.TicksSinceLastPellet = 0
	} else {
		animal.TicksSinceLastPellet++
		if animal.TicksSinceLastPellet >= StreakResetTicks {
			animal.ScoreStreak = 1
		}
	}
	if animal.PowerUpDuration > 0 {
		animal.PowerUpDuration--
		if animal.PowerUpDuration == 0 {
			animal.ActivePowerUp = NoPowerUp
		}
	}

	gs.stepZookeepers()
}

// useHeldItem activates the held power-up and reports whether the activation
// collected any pellets.
func (gs *GameState) useHeldItem(animal *Animal) bool {
	collected := false
	switch animal.HeldPowerUp {
	case Cloak:
		animal.ActivePowerUp = Cloak
		animal.PowerUpDuration = cloakDuration
	case Scavenger:
		animal.ActivePowerUp = Scavenger
		animal.PowerUpDuration = scavengerDuration
		for dy := -ScavengerRadius; dy <= ScavengerRadius; dy++ {
			for dx := -ScavengerRadius; dx <= ScavengerRadius; dx++ {
				x, y := animal.Position.X+dx, animal.Position.Y+dy
				if gs.CellAt(x, y) == Pellet {
					gs.SetCell(x, y, Empty)
					animal.Score += animal.ScoreStreak
					collected = true
				}
			}
		}
	case MultiplierJuice:
		animal.ActivePowerUp = MultiplierJuice
		animal.PowerUpDuration = multiplierDuration
	default:
		return false
	}
	animal.HeldPowerUp = NoPowerUp
	return collected
}

// enterCell resolves the content of a freshly entered cell and reports
// whether a pellet was collected.
func (gs *GameState) enterCell(animal *Animal, pos Position) bool {
	content := gs.CellAt(pos.X, pos.Y)
	switch {
	case content == Pellet:
		gs.collectPellet(animal, 1)
		gs.SetCell(pos.X, pos.Y, Empty)
		return true
	case content == PowerPellet:
		gs.collectPellet(animal, powerPelletFactor)
		gs.SetCell(pos.X, pos.Y, Empty)
		return true
	case content.IsPowerUp():
		animal.HeldPowerUp = content.PowerUp()
		gs.SetCell(pos.X, pos.Y, Empty)
	}
	return false
}

func (gs *GameState) collectPellet(animal *Animal, base int) {
	value := base * animal.ScoreStreak
	if animal.PowerUpDuration > 0 && animal.ActivePowerUp == MultiplierJuice {
		value *= multiplierFactor
	}
	animal.Score += value
	if animal.ScoreStreak < MaxScoreStreak {
		animal.ScoreStreak++
	}
}

// stepZookeepers moves every zookeeper one greedy step toward its target,
// resolves captures, and periodically retargets.
func (gs *GameState) stepZookeepers() {
	for i := range gs.Zookeepers {
		zk := &gs.Zookeepers[i]
		if zk.TargetAnimalID != "" {
			if target := gs.Animal(zk.TargetAnimalID); target != nil {
				zk.Position = gs.greedyStep(zk.Position, target.Position)
				if zk.Position == target.Position && target.PowerUpDuration == 0 {
					captureAnimal(target)
				}
			}
		}
		zk.TicksSinceTargetUpdate++
		if zk.TicksSinceTargetUpdate >= RetargetInterval {
			zk.TicksSinceTargetUpdate = 0
			zk.TargetAnimalID = gs.nearestViableAnimalID(zk.Position)
		}
	}
}

// greedyStep moves one Manhattan step from a position toward a target,
// trying the x axis first and falling through to y when blocked.
func (gs *GameState) greedyStep(from, target Position) Position {
	switch {
	case target.X > from.X && gs.IsTraversable(from.X+1, from.Y):
		from.X++
	case target.X < from.X && gs.IsTraversable(from.X-1, from.Y):
		from.X--
	case target.Y > from.Y && gs.IsTraversable(from.X, from.Y+1):
		from.Y++
	case target.Y < from.Y && gs.IsTraversable(from.X, from.Y-1):
		from.Y--
	}
	return from
}

func captureAnimal(animal *Animal) {
	animal.Position = animal.SpawnPosition
	animal.CapturedCounter++
	animal.Score = animal.Score * 4 / 5
	animal.ScoreStreak = 1
	animal.TicksSinceLastPellet = 0
	animal.IsCaught = true
}

// nearestViableAnimalID picks the closest viable animal that is not sitting
// on its spawn, or "" when none qualifies.
func (gs *GameState) nearestViableAnimalID(from Position) string {
	best := ""
	bestDistance := int(^uint(0) >> 1)
	for i := range gs.Animals {
		a := &gs.Animals[i]
		if !a.IsViable || a.OnSpawn() {
			continue
		}
		if d := from.ManhattanDistance(a.Position); d < bestDistance {
			bestDistance = d
			best = a.ID
		}
	}
	return best
}

// IsTerminal reports whether the game is over for search purposes: the own
// animal is caught, the board is out of pellets, or the tick limit passed.
func (gs *GameState) IsTerminal() bool {
	if my := gs.MyAnimal(); my != nil && my.IsCaught {
		return true
	}
	return gs.PelletBoard.PopCount() == 0 || gs.Tick >= MaxTicks
}

// Clone produces a deep, independent copy.
func (gs *GameState) Clone() *GameState {
	clone := &GameState{
		Width:          gs.Width,
		Height:         gs.Height,
		Tick:           gs.Tick,
		RemainingTicks: gs.RemainingTicks,
		GameMode:       gs.GameMode,
		Cells:          make([]CellContent, len(gs.Cells)),
		PelletBoard:    gs.PelletBoard.Clone(),
		PowerUpBoard:   gs.PowerUpBoard.Clone(),
		WallBoard:      gs.WallBoard.Clone(),
		Animals:        make([]Animal, len(gs.Animals)),
		Zookeepers:     make([]Zookeeper, len(gs.Zookeepers)),
		MyAnimalID:     gs.MyAnimalID,
		VisitedCells:   make(map[Position]struct{}, len(gs.VisitedCells)),
	}
	copy(clone.Cells, gs.Cells)
	copy(clone.Animals, gs.Animals)
	copy(clone.Zookeepers, gs.Zookeepers)
	for pos := range gs.VisitedCells {
		clone.VisitedCells[pos] = struct{}{}
	}
	return clone
}

// Hash digests the tick, animal positions and scores, and zookeeper
// positions. It detects cycles during rollouts and keys the transposition
// table; it makes no cryptographic claims.
func (gs *GameState) Hash() StateHash {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(uint64(gs.Tick))
	for i := range gs.Animals {
		a := &gs.Animals[i]
		write(uint64(uint32(a.Position.X))<<32 | uint64(uint32(a.Position.Y)))
		write(uint64(a.Score))
	}
	for i := range gs.Zookeepers {
		zk := &gs.Zookeepers[i]
		write(uint64(uint32(zk.Position.X))<<32 | uint64(uint32(zk.Position.Y)))
	}
	return StateHash(h.Sum64())
}
