package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

type memoryEntry struct {
	job       domain.ReportJob
	expiresAt time.Time
}

// MemoryJobStore is an in-process job store for tests and single-instance
// deployments without Redis. Expired entries are dropped lazily on access.
type MemoryJobStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryJobStore creates an in-memory job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ portsrepo.ReportJobStore = (*MemoryJobStore)(nil)

// SetClock overrides the time source. Test hook.
func (s *MemoryJobStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put seeds the job with the given TTL.
func (s *MemoryJobStore) Put(_ context.Context, job domain.ReportJob, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := portsrepo.JobKey(job.ReportType, job.Ticket)
	s.entries[key] = memoryEntry{job: job, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the job or apperrors.ErrNotFound when unknown or expired.
func (s *MemoryJobStore) Get(_ context.Context, reportType domain.ReportType, ticket string) (*domain.ReportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := portsrepo.JobKey(reportType, ticket)
	entry, ok := s.entries[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, apperrors.ErrNotFound
	}
	job := entry.job
	return &job, nil
}

// Update overwrites the job state preserving the original expiry.
func (s *MemoryJobStore) Update(_ context.Context, job domain.ReportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := portsrepo.JobKey(job.ReportType, job.Ticket)
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return apperrors.ErrNotFound
	}
	entry.job = job
	s.entries[key] = entry
	return nil
}
