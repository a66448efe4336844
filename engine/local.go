// Package engine runs offline games against the simulator, for evaluating
// search settings without a runner.
package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"zooscape/bot"
	"zooscape/experiments/metrics"
	"zooscape/game"
)

// LocalEngine drives one bot through a simulated game.
type LocalEngine struct {
	service  *bot.Service
	state    *game.GameState
	maxTicks int
}

// NewLocalEngine wires a decision service to a starting state. The service
// must already carry the bot id present in the state.
func NewLocalEngine(service *bot.Service, state *game.GameState, maxTicks int) *LocalEngine {
	if maxTicks <= 0 || maxTicks > game.MaxTicks {
		maxTicks = game.MaxTicks
	}
	return &LocalEngine{
		service:  service,
		state:    state,
		maxTicks: maxTicks,
	}
}

// Run executes the game loop until the state is terminal or the tick limit
// is reached, returning the game summary and one record per move.
func (e *LocalEngine) Run() (metrics.GameRecord, []metrics.MoveRecord, error) {
	start := time.Now()
	var moves []metrics.MoveRecord

	log.Info().Int("maxTicks", e.maxTicks).Msg("local game starting")

	for tick := 0; tick < e.maxTicks && !e.state.IsTerminal(); tick++ {
		result, err := e.service.BestAction(e.state)
		if err != nil {
			return metrics.GameRecord{}, moves, err
		}

		e.state.ApplyAction(e.service.ID(), result.BestAction)

		animal := e.state.Animal(e.service.ID())
		score := 0
		if animal != nil {
			score = animal.Score
		}
		moves = append(moves, metrics.MoveRecord{
			Tick:       e.state.Tick,
			Action:     result.BestAction,
			Score:      score,
			Iterations: result.Metric.Iterations,
			Expansions: result.Metric.Expansions,
			TreeSize:   result.Metric.TreeSize,
			Duration:   result.Metric.Duration,
		})

		if e.state.Tick%100 == 0 {
			log.Info().
				Int("tick", e.state.Tick).
				Int("score", score).
				Int("pellets", e.state.PelletBoard.PopCount()).
				Msg("local game progress")
		}
	}

	record := metrics.GameRecord{
		Ticks:       e.state.Tick,
		PelletsLeft: e.state.PelletBoard.PopCount(),
		Duration:    time.Since(start),
	}
	if animal := e.state.Animal(e.service.ID()); animal != nil {
		record.FinalScore = animal.Score
		record.CapturedCount = animal.CapturedCounter
	}

	log.Info().
		Int("ticks", record.Ticks).
		Int("score", record.FinalScore).
		Int("captured", record.CapturedCount).
		Msg("local game finished")

	return record, moves, nil
}
