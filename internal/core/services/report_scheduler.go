package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/dto"
)

var (
	ErrDateRangeOrder = errors.New("startDate must not be after endDate")
	ErrReportNotReady = errors.New("report is not ready yet")
	ErrInlineViewPDF  = errors.New("inline viewing is only available for PDF reports")
)

// ReportSchedulerConfig tunes the ticket pipeline.
type ReportSchedulerConfig struct {
	// JobTTL is the job-state lifetime in the status store. Artifacts on disk
	// follow the same clock; an expired ticket means the file may be gone too.
	JobTTL time.Duration
	// InlineBuilds runs the build before StartReport returns instead of in a
	// detached goroutine. Meant for tests and single-shot tooling.
	InlineBuilds bool
}

// reportService implements the ticket API: seed a job, detach the build,
// answer polls and serve artifacts.
type reportService struct {
	BaseService
	jobs      portsrepo.ReportJobStore
	artifacts portsrepo.ArtifactStore
	builder   portssvc.ReportBuilderSvc
	cfg       ReportSchedulerConfig
}

// NewReportService creates the report scheduling service.
func NewReportService(jobs portsrepo.ReportJobStore, artifacts portsrepo.ArtifactStore, builder portssvc.ReportBuilderSvc, cfg ReportSchedulerConfig) portssvc.ReportSvcFacade {
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 6 * time.Hour
	}
	return &reportService{jobs: jobs, artifacts: artifacts, builder: builder, cfg: cfg}
}

var _ portssvc.ReportSvcFacade = (*reportService)(nil)

// StartReport seeds a queued job and hands it to the builder. The ticket is
// returned immediately; failures after this point surface only through the
// job state.
func (s *reportService) StartReport(ctx context.Context, reportType domain.ReportType, req dto.StartReportRequest) (string, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return "", fmt.Errorf("%w: invalid startDate %q", apperrors.ErrValidation, req.StartDate)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endDate %q", apperrors.ErrValidation, req.EndDate)
	}
	if startDate.After(endDate) {
		return "", fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrDateRangeOrder)
	}
	format, err := domain.NormalizeFormat(req.Format)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	job := domain.ReportJob{
		Ticket:     uuid.NewString(),
		ReportType: reportType,
		CompanyID:  req.CompanyID,
		Status:     domain.JobQueued,
		Progress:   0,
		Format:     format,
		Params: domain.ReportParams{
			StartDate: startDate,
			EndDate:   endDate,
			AcctFrom:  req.AcctFrom,
			AcctTo:    req.AcctTo,
			Query:     req.Query,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.jobs.Put(ctx, job, s.cfg.JobTTL); err != nil {
		s.LogError(ctx, err, "Failed to seed report job", slog.String("report_type", string(reportType)))
		return "", fmt.Errorf("failed to seed report job: %w", err)
	}

	s.LogInfo(ctx, "Report job queued",
		slog.String("report_type", string(reportType)),
		slog.String("ticket", job.Ticket),
		slog.String("format", string(format)))

	if s.cfg.InlineBuilds {
		s.builder.Build(ctx, job)
	} else {
		// The build must outlive the HTTP request that scheduled it.
		go s.builder.Build(context.WithoutCancel(ctx), job)
	}
	return job.Ticket, nil
}

// Status answers a poll for the job state.
func (s *reportService) Status(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*domain.ReportJob, error) {
	return s.loadScoped(ctx, reportType, ticket, companyID)
}

// Download returns the finished artifact bytes for the ticket.
func (s *reportService) Download(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*dto.ReportArtifact, error) {
	job, err := s.loadScoped(ctx, reportType, ticket, companyID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobDone || job.File == nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrReportNotReady)
	}

	data, err := s.artifacts.Open(ctx, *job.File)
	if err != nil {
		if errors.Is(err, apperrors.ErrGone) {
			s.LogWarn(ctx, "Report artifact evicted before download",
				slog.String("ticket", ticket),
				slog.String("file", *job.File))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to open report artifact", slog.String("ticket", ticket))
		return nil, fmt.Errorf("failed to open report artifact: %w", err)
	}

	return &dto.ReportArtifact{
		FileName: job.FileName,
		MIMEType: job.Format.MIMEType(),
		Format:   job.Format,
		Data:     data,
	}, nil
}

// View serves the artifact for inline display. Only the PDF family renders
// inline; spreadsheets are download-only.
func (s *reportService) View(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*dto.ReportArtifact, error) {
	job, err := s.loadScoped(ctx, reportType, ticket, companyID)
	if err != nil {
		return nil, err
	}
	if job.Format != domain.FormatPDF {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnsupportedMedia, ErrInlineViewPDF)
	}
	return s.Download(ctx, reportType, ticket, companyID)
}

// loadScoped fetches the job and enforces the company scope. A mismatched
// company is a hard 403, not an obscured 404: the ticket namespace is shared
// and leaking nothing beyond existence is acceptable here.
func (s *reportService) loadScoped(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*domain.ReportJob, error) {
	job, err := s.jobs.Get(ctx, reportType, ticket)
	if err != nil {
		return nil, err
	}
	if job.CompanyID != companyID {
		s.LogWarn(ctx, "Cross-company ticket access rejected",
			slog.String("ticket", ticket),
			slog.String("company_id", companyID))
		return nil, fmt.Errorf("%w: ticket belongs to another company", apperrors.ErrForbidden)
	}
	return job, nil
}
