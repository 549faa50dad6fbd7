package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
)

func testJob(ticket string) domain.ReportJob {
	return domain.ReportJob{
		Ticket:     ticket,
		ReportType: domain.GeneralLedgerReport,
		CompanyID:  "company-1",
		Status:     domain.JobQueued,
		Format:     domain.FormatPDF,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestMemoryJobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	require.NoError(t, store.Put(ctx, testJob("t1"), time.Hour))

	job, err := store.Get(ctx, domain.GeneralLedgerReport, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", job.Ticket)
	assert.Equal(t, domain.JobQueued, job.Status)

	// Tickets are namespaced by report type.
	_, err = store.Get(ctx, domain.TrialBalanceReport, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryJobStoreUpdatePreservesExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	base := time.Now().UTC()
	now := base
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, testJob("t2"), time.Hour))

	now = base.Add(50 * time.Minute)
	job, err := store.Get(ctx, domain.GeneralLedgerReport, "t2")
	require.NoError(t, err)
	job.Status = domain.JobRunning
	require.NoError(t, store.Update(ctx, *job))

	// The update did not extend the original one-hour window.
	now = base.Add(61 * time.Minute)
	_, err = store.Get(ctx, domain.GeneralLedgerReport, "t2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryJobStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	base := time.Now().UTC()
	now := base
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, testJob("t3"), time.Minute))

	now = base.Add(2 * time.Minute)
	_, err := store.Get(ctx, domain.GeneralLedgerReport, "t3")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = store.Update(ctx, testJob("t3"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "an expired ticket cannot be revived by an update")
}

func TestMemoryJobStoreUpdateUnknownTicket(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	err := store.Update(ctx, testJob("never-seeded"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
