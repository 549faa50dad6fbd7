package dto

import (
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
)

// StartReportRequest is the uniform body of POST /{report-type}/report.
type StartReportRequest struct {
	StartDate string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"required,datetime=2006-01-02"`
	AcctFrom  string `json:"acctFrom"`
	AcctTo    string `json:"acctTo"`
	Format    string `json:"format" binding:"required,reportformat"`
	CompanyID string `json:"companyID" binding:"required"`
	Query     string `json:"query"`
}

// StartReportResponse returns the ticket to poll.
type StartReportResponse struct {
	Ticket string `json:"ticket"`
}

// JobStatusResponse is the JobState JSON the pollers read.
type JobStatusResponse struct {
	Ticket     string              `json:"ticket"`
	ReportType string              `json:"reportType"`
	Status     string              `json:"status"`
	Progress   int                 `json:"progress"`
	Format     string              `json:"format"`
	Params     domain.ReportParams `json:"params"`
	File       *string             `json:"file"`
	FileName   string              `json:"fileName,omitempty"`
	Error      *string             `json:"error"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ToJobStatusResponse converts a job to its polling DTO.
func ToJobStatusResponse(job *domain.ReportJob) JobStatusResponse {
	return JobStatusResponse{
		Ticket:     job.Ticket,
		ReportType: string(job.ReportType),
		Status:     string(job.Status),
		Progress:   job.Progress,
		Format:     string(job.Format),
		Params:     job.Params,
		File:       job.File,
		FileName:   job.FileName,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
	}
}

// ReportArtifact carries the rendered bytes plus the delivery metadata the
// download/view handlers need.
type ReportArtifact struct {
	FileName string
	MIMEType string
	Format   domain.ReportFormat
	Data     []byte
}
