// Package jobstore provides the shared report job status store behind the
// ticket polling contract.
package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

// RedisJobStore keeps job states in Redis so every backend instance sees the
// same tickets. Expiry is Redis TTL; there is no explicit cleanup.
type RedisJobStore struct {
	client *redis.Client
}

// NewRedisJobStore creates a Redis-backed job store.
func NewRedisJobStore(client *redis.Client) *RedisJobStore {
	return &RedisJobStore{client: client}
}

var _ portsrepo.ReportJobStore = (*RedisJobStore)(nil)

// Put seeds the job under its typed key with the given TTL.
func (s *RedisJobStore) Put(ctx context.Context, job domain.ReportJob, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.Ticket, err)
	}
	key := portsrepo.JobKey(job.ReportType, job.Ticket)
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", key, err)
	}
	return nil
}

// Get returns the job or apperrors.ErrNotFound when the key is unknown or
// has expired.
func (s *RedisJobStore) Get(ctx context.Context, reportType domain.ReportType, ticket string) (*domain.ReportJob, error) {
	key := portsrepo.JobKey(reportType, ticket)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch job %s: %w", key, err)
	}
	var job domain.ReportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", key, err)
	}
	return &job, nil
}

// Update overwrites the job state keeping the remaining TTL, so a finished
// job never outlives the ticket the client was handed.
func (s *RedisJobStore) Update(ctx context.Context, job domain.ReportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.Ticket, err)
	}
	key := portsrepo.JobKey(job.ReportType, job.Ticket)
	set, err := s.client.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update job %s: %w", key, err)
	}
	if set == "" {
		return apperrors.ErrNotFound
	}
	return nil
}
