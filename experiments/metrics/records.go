// Package metrics defines the records written by offline evaluation runs.
package metrics

import (
	"time"

	"zooscape/game"
)

// MoveRecord captures one search decision during a local game.
type MoveRecord struct {
	Tick       int
	Action     game.Action
	Score      int
	Iterations int64
	Expansions int64
	TreeSize   int
	Duration   time.Duration
}

// GameRecord summarizes one finished local game.
type GameRecord struct {
	Ticks         int
	FinalScore    int
	CapturedCount int
	PelletsLeft   int
	Duration      time.Duration
}
