// Command zooscape runs the MCTS bot, either against a live runner over the
// hub connection ("play", the default) or in an offline self-play game
// ("local") for evaluating search settings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"zooscape/bot"
	"zooscape/communication/client"
	"zooscape/config"
	"zooscape/engine"
	"zooscape/experiments/metrics"
	"zooscape/searcher"
)

const (
	// maxConnectAttempts bounds consecutive failed dials before giving up.
	maxConnectAttempts = 5
	reconnectBackoff   = 2 * time.Second
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cmd := &cli.Command{
		Name:  "zooscape",
		Usage: "Monte-Carlo tree search bot for the Zooscape arena",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			playCommand(),
			localCommand(),
		},
		DefaultCommand: "play",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("bot exited with error")
		os.Exit(1)
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "connect to a runner and play",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			service := bot.NewService(newEngine(cfg))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			for attempt := 0; ; {
				hub, err := client.Dial(ctx, cfg.HubURL(), cfg.BotToken, cfg.BotNickname)
				if err != nil {
					if ctx.Err() != nil {
						log.Info().Msg("clean shutdown")
						return nil
					}
					attempt++
					if attempt >= maxConnectAttempts {
						return fmt.Errorf("connecting to runner: %w", err)
					}
					log.Warn().Err(err).Int("attempt", attempt).Msg("connection failed, retrying")
					select {
					case <-ctx.Done():
						log.Info().Msg("clean shutdown")
						return nil
					case <-time.After(time.Duration(attempt) * reconnectBackoff):
					}
					continue
				}
				attempt = 0

				runErr := bot.NewRunner(service, hub).Run(ctx)
				hub.Close()
				switch {
				case ctx.Err() != nil:
					log.Info().Msg("clean shutdown")
					return nil
				case runErr != nil:
					log.Warn().Err(runErr).Msg("connection lost, reconnecting")
				default:
					// The runner ended the game and closed the stream.
					log.Info().Msg("clean shutdown")
					return nil
				}
			}
		},
	}
}

func localCommand() *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "play one offline game against the simulator",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: 30, Usage: "arena width"},
			&cli.IntFlag{Name: "height", Value: 30, Usage: "arena height"},
			&cli.IntFlag{Name: "ticks", Value: 500, Usage: "tick limit"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "arena generator seed"},
			&cli.StringFlag{Name: "out", Value: "", Usage: "directory for CSV records (none when empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			service := bot.NewService(newEngine(cfg))
			service.SetID("local-bot")

			state := engine.GenerateArena(
				int(cmd.Int("width")), int(cmd.Int("height")),
				uint64(cmd.Int("seed")), service.ID(),
			)

			local := engine.NewLocalEngine(service, state, int(cmd.Int("ticks")))
			record, moves, err := local.Run()
			if err != nil {
				return fmt.Errorf("local game: %w", err)
			}

			if out := cmd.String("out"); out != "" {
				writer, err := metrics.NewWriter(out)
				if err != nil {
					return err
				}
				if err := writer.WriteMoves(moves); err != nil {
					return err
				}
				if err := writer.WriteGame(record); err != nil {
					return err
				}
				log.Info().Str("dir", writer.Dir()).Msg("records written")
			}
			return nil
		},
	}
}

func newEngine(cfg config.Config) *searcher.Engine {
	options := []searcher.Option{
		searcher.WithMetrics(searcher.NewCollector()),
	}
	if cfg.TimeLimit > 0 {
		options = append(options, searcher.WithTimeBudget(cfg.TimeLimit))
	}
	if cfg.MaxIterations > 0 {
		options = append(options, searcher.WithMaxIterations(cfg.MaxIterations))
	}
	if cfg.Workers > 0 {
		options = append(options, searcher.WithWorkers(cfg.Workers))
	}
	return searcher.NewEngine(options...)
}
