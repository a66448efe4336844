package heuristics

import "zooscape/game"

// Engine holds an ordered collection of heuristics and evaluates their
// weighted sum.
type Engine struct {
	heuristics []*Heuristic
}

// Contribution is one heuristic's share of an action score.
type Contribution struct {
	Kind  Kind
	Score float64
}

// NewEngine returns an engine with the full default heuristic set.
func NewEngine() *Engine {
	kinds := []Kind{
		PelletDistance,
		PelletDensity,
		ScoreStreak,
		ConsecutivePellet,
		ZookeeperAvoidance,
		ZookeeperPrediction,
		PowerUpCollection,
		PowerUpUsage,
		CenterControl,
		WallAvoidance,
		MovementConsistency,
		TerritoryControl,
		OpponentBlocking,
		Endgame,
	}
	e := &Engine{}
	for _, kind := range kinds {
		e.Add(New(kind))
	}
	return e
}

// Add appends a heuristic to the collection.
func (e *Engine) Add(h *Heuristic) {
	e.heuristics = append(e.heuristics, h)
}

// Remove drops every heuristic of the given kind.
func (e *Engine) Remove(kind Kind) {
	kept := e.heuristics[:0]
	for _, h := range e.heuristics {
		if h.Kind != kind {
			kept = append(kept, h)
		}
	}
	e.heuristics = kept
}

// SetWeight updates the weight of every heuristic of the given kind.
func (e *Engine) SetWeight(kind Kind, weight float64) {
	for _, h := range e.heuristics {
		if h.Kind == kind {
			h.Weight = weight
		}
	}
}

// Weight returns the weight of the first heuristic of the given kind, or 0.
func (e *Engine) Weight(kind Kind) float64 {
	for _, h := range e.heuristics {
		if h.Kind == kind {
			return h.Weight
		}
	}
	return 0
}

// EvaluateAction returns the weighted sum over all heuristics.
func (e *Engine) EvaluateAction(gs *game.GameState, animalID string, action game.Action) float64 {
	total := 0.0
	for _, h := range e.heuristics {
		total += h.Evaluate(gs, animalID, action)
	}
	return total
}

// EvaluateAllActions scores every legal action for the animal.
func (e *Engine) EvaluateAllActions(gs *game.GameState, animalID string) map[game.Action]float64 {
	scores := make(map[game.Action]float64)
	for _, action := range gs.LegalActions(animalID) {
		scores[action] = e.EvaluateAction(gs, animalID, action)
	}
	return scores
}

// Contributions breaks an action score down per heuristic, for debugging.
func (e *Engine) Contributions(gs *game.GameState, animalID string, action game.Action) []Contribution {
	contributions := make([]Contribution, 0, len(e.heuristics))
	for _, h := range e.heuristics {
		contributions = append(contributions, Contribution{
			Kind:  h.Kind,
			Score: h.Evaluate(gs, animalID, action),
		})
	}
	return contributions
}

// LoadBalancedPreset installs the tuned all-round weight set.
func (e *Engine) LoadBalancedPreset() {
	e.SetWeight(PelletDistance, 2.0)
	e.SetWeight(PelletDensity, 1.5)
	e.SetWeight(ScoreStreak, 1.8)
	e.SetWeight(ZookeeperAvoidance, 5.0)
	e.SetWeight(ZookeeperPrediction, 3.5)
	e.SetWeight(PowerUpCollection, 2.5)
	e.SetWeight(PowerUpUsage, 3.0)
	e.SetWeight(CenterControl, 0.8)
	e.SetWeight(WallAvoidance, 1.2)
	e.SetWeight(MovementConsistency, 0.6)
	e.SetWeight(TerritoryControl, 1.4)
	e.SetWeight(OpponentBlocking, 1.0)
	e.SetWeight(Endgame, 2.0)
}
