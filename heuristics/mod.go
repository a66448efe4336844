// Package heuristics scores (state, action) pairs. Each heuristic is a
// weighted evaluator; the engine sums the active set. The search engine
// holds a heuristics engine, but its rollout policy, move ordering and
// progressive bias use their own scoring and do not call this package.
package heuristics

import (
	"sync"

	"zooscape/game"
)

// invalidPenalty is returned for actions that would leave the grid.
const invalidPenalty = -1000.0

// Kind enumerates the heuristic variants.
type Kind int

const (
	PelletDistance Kind = iota
	PelletDensity
	ScoreStreak
	ConsecutivePellet
	ZookeeperAvoidance
	ZookeeperPrediction
	PowerUpCollection
	PowerUpUsage
	CenterControl
	WallAvoidance
	MovementConsistency
	TerritoryControl
	OpponentBlocking
	Endgame
)

var kindNames = map[Kind]string{
	PelletDistance:      "PelletDistance",
	PelletDensity:       "PelletDensity",
	ScoreStreak:         "ScoreStreak",
	ConsecutivePellet:   "ConsecutivePellet",
	ZookeeperAvoidance:  "ZookeeperAvoidance",
	ZookeeperPrediction: "ZookeeperPrediction",
	PowerUpCollection:   "PowerUpCollection",
	PowerUpUsage:        "PowerUpUsage",
	CenterControl:       "CenterControl",
	WallAvoidance:       "WallAvoidance",
	MovementConsistency: "MovementConsistency",
	TerritoryControl:    "TerritoryControl",
	OpponentBlocking:    "OpponentBlocking",
	Endgame:             "Endgame",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Heuristic is one weighted evaluator. The parameter fields apply only to
// the kinds that read them; New fills sensible defaults.
type Heuristic struct {
	Kind   Kind
	Weight float64

	SearchRadius     int     // PelletDensity
	DangerRadius     int     // ZookeeperAvoidance
	PredictionSteps  int     // ZookeeperPrediction
	MaxLookahead     int     // ConsecutivePellet
	ControlRadius    int     // TerritoryControl
	EndgameThreshold float64 // Endgame

	mu          sync.Mutex
	lastActions map[string]game.Action // MovementConsistency memory
}

// New returns a heuristic of the given kind with its default weight and
// parameters.
func New(kind Kind) *Heuristic {
	h := &Heuristic{
		Kind:             kind,
		Weight:           1.0,
		SearchRadius:     5,
		DangerRadius:     8,
		PredictionSteps:  5,
		MaxLookahead:     5,
		ControlRadius:    6,
		EndgameThreshold: 0.3,
		lastActions:      make(map[string]game.Action),
	}
	switch kind {
	case PelletDistance:
		h.Weight = 2.0
	case PelletDensity:
		h.Weight = 1.5
	case ScoreStreak:
		h.Weight = 1.8
	case ZookeeperAvoidance:
		h.Weight = 5.0
	case ZookeeperPrediction:
		h.Weight = 3.5
	case PowerUpCollection:
		h.Weight = 2.5
	case PowerUpUsage:
		h.Weight = 3.0
	case CenterControl:
		h.Weight = 0.8
	case WallAvoidance:
		h.Weight = 1.2
	case MovementConsistency:
		h.Weight = 0.6
	case TerritoryControl:
		h.Weight = 1.4
	case OpponentBlocking:
		h.Weight = 1.0
	case Endgame:
		h.Weight = 2.0
	}
	return h
}

// Evaluate scores an action for an animal. Most kinds return a large negative
// sentinel for moves that would leave the grid; ConsecutivePellet,
// PowerUpUsage and MovementConsistency do not, and Endgame does so only once
// the board is in its endgame phase. Every result is finite.
func (h *Heuristic) Evaluate(gs *game.GameState, animalID string, action game.Action) float64 {
	switch h.Kind {
	case PelletDistance:
		return h.pelletDistance(gs, animalID, action)
	case PelletDensity:
		return h.pelletDensity(gs, animalID, action)
	case ScoreStreak:
		return h.scoreStreak(gs, animalID, action)
	case ConsecutivePellet:
		return h.consecutivePellet(gs, animalID, action)
	case ZookeeperAvoidance:
		return h.zookeeperAvoidance(gs, animalID, action)
	case ZookeeperPrediction:
		return h.zookeeperPrediction(gs, animalID, action)
	case PowerUpCollection:
		return h.powerUpCollection(gs, animalID, action)
	case PowerUpUsage:
		return h.powerUpUsage(gs, animalID, action)
	case CenterControl:
		return h.centerControl(gs, animalID, action)
	case WallAvoidance:
		return h.wallAvoidance(gs, animalID, action)
	case MovementConsistency:
		return h.movementConsistency(gs, animalID, action)
	case TerritoryControl:
		return h.territoryControl(gs, animalID, action)
	case OpponentBlocking:
		return h.opponentBlocking(gs, animalID, action)
	case Endgame:
		return h.endgame(gs, animalID, action)
	}
	return 0
}

// project returns the animal's position after a movement action. The second
// return is false for UseItem and None, the third for off-grid targets.
func project(gs *game.GameState, animal *game.Animal, action game.Action) (game.Position, bool, bool) {
	if !action.IsMove() {
		return animal.Position, false, true
	}
	next := animal.Position.Step(action)
	return next, true, gs.IsValidPosition(next.X, next.Y)
}
