package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportType identifies one of the generated financial reports. The value is
// also the URL segment of the ticket API and the key prefix in the job store.
type ReportType string

const (
	GeneralLedgerReport        ReportType = "general-ledger"
	TrialBalanceReport         ReportType = "trial-balance"
	CheckRegisterReport        ReportType = "check-register"
	CashReceiptBookReport      ReportType = "cash-receipt-book"
	CashDisbursementBookReport ReportType = "cash-disbursement-book"
	GeneralJournalBookReport   ReportType = "general-journal-book"
	APJournalReport            ReportType = "ap-journal"
	ARJournalReport            ReportType = "ar-journal"
)

// ReportTypes lists every supported report type.
var ReportTypes = []ReportType{
	GeneralLedgerReport,
	TrialBalanceReport,
	CheckRegisterReport,
	CashReceiptBookReport,
	CashDisbursementBookReport,
	GeneralJournalBookReport,
	APJournalReport,
	ARJournalReport,
}

// ParseReportType validates a report-type URL segment.
func ParseReportType(s string) (ReportType, error) {
	for _, rt := range ReportTypes {
		if ReportType(s) == rt {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// JobStatus is the lifecycle state of a report job. Transitions are strictly
// queued -> running -> done|error, never back out of a terminal state.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobError   JobStatus = "error"
)

// Terminal reports whether the status is done or error.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobError
}

// ReportFormat is the canonical output format of a report artifact.
type ReportFormat string

const (
	FormatPDF ReportFormat = "pdf"
	FormatXLS ReportFormat = "xls"
)

// NormalizeFormat canonicalizes the format aliases the clients send. The
// spreadsheet family collapses to "xls"; the same canonical value drives both
// the stored job format and the artifact extension.
func NormalizeFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "xls", "xlsx", "excel":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Extension returns the artifact file extension for the format.
func (f ReportFormat) Extension() string {
	if f == FormatPDF {
		return ".pdf"
	}
	return ".xlsx"
}

// MIMEType returns the download content type for the format.
func (f ReportFormat) MIMEType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ReportParams echoes the request filters into the job state so pollers can
// see what the ticket covers.
type ReportParams struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	AcctFrom  string    `json:"acctFrom,omitempty"`
	AcctTo    string    `json:"acctTo,omitempty"`
	Query     string    `json:"query,omitempty"`
}

// ReportJob is the shared job state for one ticket. It lives only in the job
// status store under a multi-hour TTL; it is never written to durable storage.
type ReportJob struct {
	Ticket     string       `json:"ticket"`
	ReportType ReportType   `json:"reportType"`
	CompanyID  string       `json:"companyID"`
	Status     JobStatus    `json:"status"`
	Progress   int          `json:"progress"`
	Format     ReportFormat `json:"format"`
	Params     ReportParams `json:"params"`
	File       *string      `json:"file,omitempty"`     // relative artifact path, set on done
	FileName   string       `json:"fileName,omitempty"` // human-friendly download name
	Error      *string      `json:"error,omitempty"`    // non-empty iff status == error
	CreatedAt  time.Time    `json:"createdAt"`
}
