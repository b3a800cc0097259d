package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/persistence/file"
	"github.com/fluxohq/fluxo/pkg/persistence/memory"
	"github.com/fluxohq/fluxo/pkg/persistence/postgresql"
)

// NewPersistence selects a backend from the database URL scheme:
// postgres://... for PostgreSQL, memory:// for the in-memory store, and
// anything else is treated as a file-backed root directory.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgresql persistence: %w", err)
		}

		return p, nil
	case databaseURL == "memory://" || databaseURL == "memory":
		return memory.NewPersistence(), nil
	default:
		root := strings.TrimPrefix(databaseURL, "file://")

		return file.NewPersistence(root), nil
	}
}
