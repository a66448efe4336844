package bot

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"zooscape/communication"
	"zooscape/game"
)

// Runner consumes runner events and answers every tick with one action.
// It owns neither the connection nor the engine; cancellation comes from
// the caller's context.
type Runner struct {
	service *Service
	comm    communication.Communicator
}

// NewRunner wires a decision service to a communicator.
func NewRunner(service *Service, comm communication.Communicator) *Runner {
	return &Runner{service: service, comm: comm}
}

// Run loops until the connection closes or the context is canceled. Every
// delivered state gets exactly one command back, the neutral action when no
// decision could be formed.
func (r *Runner) Run(ctx context.Context) error {
	// The registered channel delivers at most one id; a nil channel blocks
	// forever, so it drops out of the select once consumed or closed.
	registered := r.comm.Registered()
	for {
		select {
		case <-ctx.Done():
			r.service.Stop()
			return ctx.Err()

		case id, ok := <-registered:
			if !ok {
				if r.service.ID() == "" {
					return errors.New("connection closed before registration")
				}
				registered = nil
				continue
			}
			r.service.SetID(id)
			registered = nil

		case state, ok := <-r.comm.States():
			if !ok {
				log.Info().Msg("state stream closed, shutting down")
				return nil
			}
			action := r.decide(state)
			if err := r.comm.SendCommand(action); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) decide(state *game.GameState) game.Action {
	result, err := r.service.BestAction(state)
	if err != nil {
		log.Error().Err(err).Int("tick", state.Tick).Msg("search failed, sending neutral action")
		return game.None
	}
	log.Info().
		Int("tick", state.Tick).
		Stringer("action", result.BestAction).
		Int64("iterations", result.Metric.Iterations).
		Dur("duration", result.Metric.Duration).
		Msg("tick decided")
	return result.BestAction
}
