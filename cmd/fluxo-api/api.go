// Package main provides the Fluxo API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/fluxohq/fluxo/pkg/eventbus"
	"github.com/fluxohq/fluxo/pkg/otelhelper"
	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/registry"
	"github.com/fluxohq/fluxo/pkg/services"
	"github.com/fluxohq/fluxo/pkg/web"
	"github.com/fluxohq/fluxo/pkg/workflow"
)

type apiConfig struct {
	storeCapacity int
	tracing       bool
}

type API struct {
	logger   *slog.Logger
	handlers *web.APIHandlers
}

func NewAPI(
	ctx context.Context,
	logger *slog.Logger,
	p persistence.Persistence,
	submissionStore persistence.SubmissionRepository,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	config apiConfig,
) (*API, error) {
	opts := []workflow.Option{
		workflow.WithEventBus(eventBus),
	}

	if config.storeCapacity > 0 {
		opts = append(opts, workflow.WithStoreCapacity(config.storeCapacity))
	}

	if config.tracing {
		tracer, err := otelhelper.NewTracer(ctx, "fluxo-api")
		if err != nil {
			return nil, err
		}

		opts = append(opts, workflow.WithTracer(tracer))
	}

	executor := workflow.NewExecutor(p, reg, logger, opts...)
	submissions := services.NewSubmissionService(p, submissionStore, executor, logger)
	handlers := web.NewAPIHandlers(p, executor, submissions, reg)

	return &API{logger: logger, handlers: handlers}, nil
}

func (a *API) App() *fiber.App {
	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Fluxo API")
	})

	a.handlers.RegisterRoutes(app)

	return app
}

func (a *API) Start(port int) error {
	a.logger.Info("Starting API server", "port", port)

	return a.App().Listen(":" + strconv.Itoa(port))
}
