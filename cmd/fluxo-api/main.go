package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/fluxohq/fluxo/pkg/cmd"
	"github.com/fluxohq/fluxo/pkg/log"
	persistencepkg "github.com/fluxohq/fluxo/pkg/persistence"
)

const defaultPort = 9091

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "fluxo-api",
		Usage:                 "Serve the workflow execution HTTP API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres://, file://, memory://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "submissions-redis-url",
				Usage:   "Redis URL for the submission idempotency store (empty uses the main database)",
				Sources: cli.EnvVars("SUBMISSIONS_REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.IntFlag{
				Name:    "store-capacity",
				Usage:   "Per-run output store capacity",
				Value:   0,
				Sources: cli.EnvVars("STORE_CAPACITY"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Fluxo API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "fluxo-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var submissions persistencepkg.SubmissionRepository

			redisSubmissions, err := cmd.NewSubmissionRepository(logger, command.String("submissions-redis-url"))
			if err != nil {
				return err
			}

			if redisSubmissions != nil {
				defer func() {
					if err := redisSubmissions.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close submission repository", "error", err)
					}
				}()

				submissions = redisSubmissions
			}

			registry := cmd.NewRegistry(logger)

			api, err := NewAPI(ctx, logger, persistence, submissions, registry, eventBus, apiConfig{
				storeCapacity: int(command.Int("store-capacity")),
				tracing:       command.Bool("tracing"),
			})
			if err != nil {
				return err
			}

			return api.Start(int(command.Int("port")))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("fluxo-api exited with error", "error", err)
		os.Exit(1)
	}
}
