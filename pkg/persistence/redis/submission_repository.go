// Package redis provides a Redis-backed submission repository for
// deployments where the idempotency window should expire on its own
// instead of accumulating rows.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
)

// DefaultTTL bounds how long a submission blocks duplicates.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "fluxo:submission:"

// SubmissionRepository implements persistence.SubmissionRepository on
// Redis. SET NX makes the first submission win atomically.
type SubmissionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSubmissionRepository creates a repository from a Redis URL
// (redis://host:port/db). A non-positive ttl falls back to DefaultTTL.
func NewSubmissionRepository(url string, ttl time.Duration) (*SubmissionRepository, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &SubmissionRepository{
		client: goredis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

// SubmissionByKey returns the submission stored under the idempotency key.
func (r *SubmissionRepository) SubmissionByKey(ctx context.Context, idempotencyKey string) (*models.Submission, error) {
	raw, err := r.client.Get(ctx, keyPrefix+idempotencyKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.ErrSubmissionNotFound
		}

		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	var submission models.Submission
	if err := json.Unmarshal(raw, &submission); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}

	return &submission, nil
}

// SaveSubmission stores the submission unless the key already exists.
func (r *SubmissionRepository) SaveSubmission(ctx context.Context, submission *models.Submission) error {
	encoded, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	if err := r.client.SetNX(ctx, keyPrefix+submission.IdempotencyKey, encoded, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

// HealthCheck pings the Redis server.
func (r *SubmissionRepository) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close releases the client's connections.
func (r *SubmissionRepository) Close() error {
	return r.client.Close()
}
