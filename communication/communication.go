// Package communication defines the contract between the bot loop and the
// transport that talks to the game runner.
package communication

import "zooscape/game"

// Communicator delivers runner events to the bot and carries commands back.
// Both channels close when the connection ends.
type Communicator interface {
	// Registered yields the bot id assigned by the runner.
	Registered() <-chan string

	// States yields one decoded game state per tick.
	States() <-chan *game.GameState

	// SendCommand replies to the current tick with one action.
	SendCommand(action game.Action) error

	// Close tears the connection down; safe to call more than once.
	Close() error
}
