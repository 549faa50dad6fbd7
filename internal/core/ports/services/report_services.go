package services

import (
	"context"

	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/agridane/erp_backend/internal/dto"
)

// ReportSvcFacade is the ticket-based report pipeline: scheduling, polling
// and artifact delivery.
type ReportSvcFacade interface {
	// StartReport validates the request, seeds the job store and hands off
	// the build. It returns the ticket without waiting for the build.
	StartReport(ctx context.Context, reportType domain.ReportType, req dto.StartReportRequest) (string, error)
	// Status returns the job state, enforcing the company scope on the read.
	Status(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*domain.ReportJob, error)
	// Download returns the finished artifact: ErrConflict until done, ErrGone
	// when the file was evicted after the job state expired.
	Download(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*dto.ReportArtifact, error)
	// View is Download restricted to the PDF family (ErrUnsupportedMedia otherwise).
	View(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*dto.ReportArtifact, error)
}

// ReportBuilderSvc produces the artifact for a seeded job and drives its
// state machine to a terminal status. Implementations must never return with
// the job still queued or running.
type ReportBuilderSvc interface {
	Build(ctx context.Context, job domain.ReportJob)
}
