// fluxo-run executes one workflow from the command line: load the graph
// from persistence, run it to a terminal state or pause point, and print
// the result as JSON.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/fluxohq/fluxo/pkg/cmd"
	"github.com/fluxohq/fluxo/pkg/log"
)

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("run")

	command := &cli.Command{
		Name:                  "fluxo-run",
		Usage:                 "Execute a single workflow run",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres://, file://, memory://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "workflow-id",
				Aliases:  []string{"w"},
				Usage:    "Workflow to execute",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "execution-id",
				Aliases: []string{"e"},
				Usage:   "Waiting execution to resume",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Trigger input (or resume payload) as a JSON object",
				Value:   "{}",
			},
			&cli.IntFlag{
				Name:    "store-capacity",
				Usage:   "Per-run output store capacity",
				Value:   0,
				Sources: cli.EnvVars("STORE_CAPACITY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("fluxo-run exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("run")

	var input map[string]any
	if err := json.Unmarshal([]byte(command.String("input")), &input); err != nil {
		return fmt.Errorf("failed to parse --input as a JSON object: %w", err)
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	executor := cmd.NewExecutor(persistence, logger, int(command.Int("store-capacity")))

	result, err := executor.Execute(ctx, command.String("workflow-id"), command.String("execution-id"), input)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	return nil
}
