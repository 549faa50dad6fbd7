package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
)

// JobKey builds the typed namespaced key for a ticket. Keeping the report
// type in the key prevents cross-report-type collisions even if ticket
// generation ever stopped being UUID-based.
func JobKey(reportType domain.ReportType, ticket string) string {
	return fmt.Sprintf("report:%s:%s", reportType, ticket)
}

// ReportJobStore is the shared, externally visible key-value store behind the
// ticket polling contract. One builder writes a given ticket, many pollers
// read it; expiry via TTL is the only reclamation mechanism.
type ReportJobStore interface {
	// Put seeds a new job under its key with the given TTL.
	Put(ctx context.Context, job domain.ReportJob, ttl time.Duration) error
	// Get returns the job or apperrors.ErrNotFound when unknown or expired.
	Get(ctx context.Context, reportType domain.ReportType, ticket string) (*domain.ReportJob, error)
	// Update overwrites the job state, preserving the remaining TTL.
	Update(ctx context.Context, job domain.ReportJob) error
}

// ArtifactStore persists the rendered report files. Paths are relative and
// ticket-scoped so concurrent tickets never collide.
type ArtifactStore interface {
	Save(ctx context.Context, relPath string, data []byte) error
	// Open returns apperrors.ErrGone when the artifact has been evicted.
	Open(ctx context.Context, relPath string) ([]byte, error)
	Remove(ctx context.Context, relPath string) error
}
