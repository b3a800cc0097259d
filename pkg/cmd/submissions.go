package cmd

import (
	"log/slog"

	"github.com/fluxohq/fluxo/pkg/persistence/redis"
)

// NewSubmissionRepository builds the optional Redis-backed submission store
// used for idempotency-key deduplication. An empty URL returns nil:
// submissions then ride on the main persistence backend.
func NewSubmissionRepository(logger *slog.Logger, redisURL string) (*redis.SubmissionRepository, error) {
	if redisURL == "" {
		return nil, nil
	}

	repo, err := redis.NewSubmissionRepository(redisURL, 0)
	if err != nil {
		return nil, err
	}

	logger.Info("Using Redis submission repository")

	return repo, nil
}
