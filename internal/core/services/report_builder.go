package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/reports"
	"github.com/agridane/erp_backend/internal/utils/accounting"
)

// reportTitles maps report types to their document titles and download names.
var reportTitles = map[domain.ReportType]string{
	domain.GeneralLedgerReport:        "General Ledger",
	domain.TrialBalanceReport:         "Trial Balance",
	domain.CheckRegisterReport:        "Check Register",
	domain.CashReceiptBookReport:      "Cash Receipt Book",
	domain.CashDisbursementBookReport: "Cash Disbursement Book",
	domain.GeneralJournalBookReport:   "General Journal Book",
	domain.APJournalReport:            "Accounts Payable Journal",
	domain.ARJournalReport:            "Accounts Receivable Journal",
}

// journalBookModules maps the book-style reports to their source module.
var journalBookModules = map[domain.ReportType]domain.ModuleType{
	domain.CashReceiptBookReport:      domain.CashReceipt,
	domain.CashDisbursementBookReport: domain.CashDisbursement,
	domain.GeneralJournalBookReport:   domain.GeneralAccounting,
	domain.APJournalReport:            domain.CashPurchase,
	domain.ARJournalReport:            domain.CashSales,
}

// reportBuilder assembles report documents from the ledger reads and drives
// each job to a terminal state.
type reportBuilder struct {
	BaseService
	jobs      portsrepo.ReportJobStore
	artifacts portsrepo.ArtifactStore
	reporting portsrepo.ReportingRepository
	renderers map[domain.ReportFormat]reports.Renderer
}

// NewReportBuilder creates the report builder with both renderers wired.
func NewReportBuilder(jobs portsrepo.ReportJobStore, artifacts portsrepo.ArtifactStore, reporting portsrepo.ReportingRepository) portssvc.ReportBuilderSvc {
	return &reportBuilder{
		jobs:      jobs,
		artifacts: artifacts,
		reporting: reporting,
		renderers: map[domain.ReportFormat]reports.Renderer{
			domain.FormatPDF: reports.NewPDFRenderer(),
			domain.FormatXLS: reports.NewExcelRenderer(),
		},
	}
}

var _ portssvc.ReportBuilderSvc = (*reportBuilder)(nil)

// Build produces the artifact for a seeded job. It always leaves the job in a
// terminal state: any panic or error along the way becomes status=error with
// a message, never a ticket stuck on running.
func (b *reportBuilder) Build(ctx context.Context, job domain.ReportJob) {
	defer func() {
		if r := recover(); r != nil {
			b.LogError(ctx, fmt.Errorf("panic: %v", r), "Report build panicked", slog.String("ticket", job.Ticket))
			b.fail(ctx, job, "internal error while generating the report")
		}
	}()

	job.Status = domain.JobRunning
	job.Progress = 10
	if err := b.jobs.Update(ctx, job); err != nil {
		// The seed write succeeded moments ago; treat this as fatal.
		b.LogError(ctx, err, "Failed to mark report job running", slog.String("ticket", job.Ticket))
		b.fail(ctx, job, "failed to update job state")
		return
	}

	doc, err := b.assemble(ctx, job)
	if err != nil {
		b.LogError(ctx, err, "Failed to assemble report",
			slog.String("ticket", job.Ticket),
			slog.String("report_type", string(job.ReportType)))
		b.fail(ctx, job, err.Error())
		return
	}
	job.Progress = 60
	_ = b.jobs.Update(ctx, job)

	renderer, ok := b.renderers[job.Format]
	if !ok {
		b.fail(ctx, job, fmt.Sprintf("no renderer for format %s", job.Format))
		return
	}
	data, err := renderer.Render(doc)
	if err != nil {
		b.LogError(ctx, err, "Failed to render report", slog.String("ticket", job.Ticket))
		b.fail(ctx, job, "failed to render the report")
		return
	}
	job.Progress = 90
	_ = b.jobs.Update(ctx, job)

	relPath := fmt.Sprintf("%s/%s%s", job.ReportType, job.Ticket, job.Format.Extension())
	if err := b.artifacts.Save(ctx, relPath, data); err != nil {
		b.LogError(ctx, err, "Failed to store report artifact", slog.String("ticket", job.Ticket))
		b.fail(ctx, job, "failed to store the report artifact")
		return
	}

	job.Status = domain.JobDone
	job.Progress = 100
	job.File = &relPath
	job.FileName = fmt.Sprintf("%s %s to %s%s",
		reportTitles[job.ReportType],
		job.Params.StartDate.Format("2006-01-02"),
		job.Params.EndDate.Format("2006-01-02"),
		job.Format.Extension())
	if err := b.jobs.Update(ctx, job); err != nil {
		b.LogError(ctx, err, "Failed to mark report job done", slog.String("ticket", job.Ticket))
		_ = b.artifacts.Remove(ctx, relPath)
		b.fail(ctx, job, "failed to update job state")
		return
	}

	b.LogInfo(ctx, "Report built",
		slog.String("ticket", job.Ticket),
		slog.String("report_type", string(job.ReportType)),
		slog.String("file", relPath))
}

// fail drives the job to the error terminal state. A partial artifact, if
// any, is removed best effort.
func (b *reportBuilder) fail(ctx context.Context, job domain.ReportJob, msg string) {
	if job.File != nil {
		_ = b.artifacts.Remove(ctx, *job.File)
	}
	job.Status = domain.JobError
	job.File = nil
	job.FileName = ""
	job.Error = &msg
	if err := b.jobs.Update(ctx, job); err != nil {
		b.LogError(ctx, err, "Failed to mark report job failed", slog.String("ticket", job.Ticket))
	}
}

// assemble dispatches to the per-report document builders.
func (b *reportBuilder) assemble(ctx context.Context, job domain.ReportJob) (*reports.Document, error) {
	switch job.ReportType {
	case domain.GeneralLedgerReport:
		return b.buildGeneralLedger(ctx, job)
	case domain.TrialBalanceReport:
		return b.buildTrialBalance(ctx, job)
	case domain.CheckRegisterReport:
		return b.buildCheckRegister(ctx, job)
	default:
		if module, ok := journalBookModules[job.ReportType]; ok {
			return b.buildJournalBook(ctx, job, module)
		}
		return nil, fmt.Errorf("unknown report type %s", job.ReportType)
	}
}

// ledgerQuery translates the job parameters to the repository filter.
func ledgerQuery(job domain.ReportJob, modules ...domain.ModuleType) portsrepo.LedgerQuery {
	return portsrepo.LedgerQuery{
		CompanyID: job.CompanyID,
		StartDate: job.Params.StartDate,
		EndDate:   job.Params.EndDate,
		Modules:   modules,
		AcctFrom:  job.Params.AcctFrom,
		AcctTo:    job.Params.AcctTo,
		Query:     job.Params.Query,
	}
}

// requireBalanced refuses to render a statement from an out-of-balance
// ledger. Financial statements over unbalanced books are worse than no
// statement at all.
func requireBalanced(debit, credit decimal.Decimal) error {
	if !accounting.IsBalanced(debit, credit) {
		return fmt.Errorf("ledger is out of balance for the period (debit %s, credit %s); report refused",
			money(debit), money(credit))
	}
	return nil
}

func (b *reportBuilder) buildGeneralLedger(ctx context.Context, job domain.ReportJob) (*reports.Document, error) {
	lines, err := b.reporting.GetLedgerLines(ctx, ledgerQuery(job))
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger lines: %w", err)
	}

	totalDebit, totalCredit := sumLines(lines)
	if err := requireBalanced(totalDebit, totalCredit); err != nil {
		return nil, err
	}

	doc := newDocument(job, []reports.Column{
		{Title: "Date", Width: 2, Align: reports.AlignLeft},
		{Title: "Module", Width: 1, Align: reports.AlignLeft},
		{Title: "Doc No", Width: 1.5, Align: reports.AlignRight},
		{Title: "Explanation", Width: 5, Align: reports.AlignLeft},
		{Title: "Debit", Width: 2, Align: reports.AlignRight},
		{Title: "Credit", Width: 2, Align: reports.AlignRight},
		{Title: "Balance", Width: 2, Align: reports.AlignRight},
	})

	// Lines arrive ordered by account then date then doc no; each account
	// becomes one section with a running balance.
	var section *reports.Section
	var acctDebit, acctCredit, balance decimal.Decimal
	var category domain.AccountCategory
	flush := func() {
		if section == nil {
			return
		}
		section.TotalRow = []string{"", "", "", "Account total", money(acctDebit), money(acctCredit), money(balance)}
		doc.Sections = append(doc.Sections, *section)
	}
	for _, line := range lines {
		title := fmt.Sprintf("%s  %s", line.AcctCode, line.AcctDescription)
		if section == nil || section.Title != title {
			flush()
			section = &reports.Section{Title: title}
			acctDebit, acctCredit, balance = decimal.Zero, decimal.Zero, decimal.Zero
			category = line.Category
		}
		acctDebit = acctDebit.Add(line.Debit)
		acctCredit = acctCredit.Add(line.Credit)
		balance = balance.Add(normalBalanceDelta(category, line.Debit, line.Credit))
		section.Rows = append(section.Rows, []string{
			line.Date.Format("2006-01-02"),
			string(line.Module),
			fmt.Sprintf("%d", line.DocNo),
			line.Explanation,
			money(line.Debit),
			money(line.Credit),
			money(balance),
		})
	}
	flush()

	doc.GrandTotal = []string{"", "", "", "Grand total", money(totalDebit), money(totalCredit), ""}
	return doc, nil
}

func (b *reportBuilder) buildTrialBalance(ctx context.Context, job domain.ReportJob) (*reports.Document, error) {
	rows, err := b.reporting.GetTrialBalanceRows(ctx, ledgerQuery(job))
	if err != nil {
		return nil, fmt.Errorf("failed to read trial balance rows: %w", err)
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	if err := requireBalanced(totalDebit, totalCredit); err != nil {
		return nil, err
	}

	doc := newDocument(job, []reports.Column{
		{Title: "Account", Width: 2, Align: reports.AlignLeft},
		{Title: "Description", Width: 5, Align: reports.AlignLeft},
		{Title: "Category", Width: 2, Align: reports.AlignLeft},
		{Title: "Debit", Width: 2, Align: reports.AlignRight},
		{Title: "Credit", Width: 2, Align: reports.AlignRight},
	})

	section := reports.Section{}
	for _, row := range rows {
		// The trial balance nets each account to its normal-balance side.
		net := row.Debit.Sub(row.Credit)
		debit, credit := decimal.Zero, decimal.Zero
		if net.IsPositive() {
			debit = net
		} else {
			credit = net.Neg()
		}
		section.Rows = append(section.Rows, []string{
			row.AcctCode,
			row.AcctDescription,
			string(row.Category),
			money(debit),
			money(credit),
		})
	}
	doc.Sections = []reports.Section{section}
	doc.GrandTotal = []string{"", "", "Total", money(totalDebit), money(totalCredit)}
	return doc, nil
}

// buildCheckRegister lists disbursements chronologically, one row per check.
// The detail lines of a transaction, minus the bank offset row, fold into a
// single register row so the total equals what actually left the bank. It is
// a listing, not a statement, so it renders even when the period is out of
// balance.
func (b *reportBuilder) buildCheckRegister(ctx context.Context, job domain.ReportJob) (*reports.Document, error) {
	lines, err := b.reporting.GetLedgerLines(ctx, ledgerQuery(job, domain.CashDisbursement))
	if err != nil {
		return nil, fmt.Errorf("failed to read disbursement lines: %w", err)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		return lines[i].DocNo < lines[j].DocNo
	})

	doc := newDocument(job, []reports.Column{
		{Title: "Date", Width: 2, Align: reports.AlignLeft},
		{Title: "Check No", Width: 1.5, Align: reports.AlignRight},
		{Title: "Payee", Width: 3, Align: reports.AlignLeft},
		{Title: "Explanation", Width: 4, Align: reports.AlignLeft},
		{Title: "Accounts", Width: 2, Align: reports.AlignLeft},
		{Title: "Amount", Width: 2, Align: reports.AlignRight},
	})

	type check struct {
		first  domain.LedgerLine
		accts  []string
		amount decimal.Decimal
	}
	var order []string
	checks := make(map[string]*check)
	for _, line := range lines {
		if line.BankRow {
			continue
		}
		entry, ok := checks[line.TransactionID]
		if !ok {
			entry = &check{first: line, amount: decimal.Zero}
			checks[line.TransactionID] = entry
			order = append(order, line.TransactionID)
		}
		entry.accts = append(entry.accts, line.AcctCode)
		entry.amount = entry.amount.Add(line.Debit.Sub(line.Credit))
	}

	total := decimal.Zero
	section := reports.Section{}
	for _, txnID := range order {
		entry := checks[txnID]
		total = total.Add(entry.amount)
		section.Rows = append(section.Rows, []string{
			entry.first.Date.Format("2006-01-02"),
			fmt.Sprintf("%d", entry.first.DocNo),
			entry.first.CounterpartyName,
			entry.first.Explanation,
			strings.Join(entry.accts, ", "),
			money(entry.amount),
		})
	}
	doc.Sections = []reports.Section{section}
	doc.GrandTotal = []string{"", "", "", "", "Total", money(total)}
	return doc, nil
}

// buildJournalBook renders one module's entries grouped per transaction.
func (b *reportBuilder) buildJournalBook(ctx context.Context, job domain.ReportJob, module domain.ModuleType) (*reports.Document, error) {
	lines, err := b.reporting.GetLedgerLines(ctx, ledgerQuery(job, module))
	if err != nil {
		return nil, fmt.Errorf("failed to read journal lines: %w", err)
	}

	totalDebit, totalCredit := sumLines(lines)
	if err := requireBalanced(totalDebit, totalCredit); err != nil {
		return nil, err
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		if lines[i].DocNo != lines[j].DocNo {
			return lines[i].DocNo < lines[j].DocNo
		}
		return lines[i].AcctCode < lines[j].AcctCode
	})

	doc := newDocument(job, []reports.Column{
		{Title: "Account", Width: 2, Align: reports.AlignLeft},
		{Title: "Description", Width: 4, Align: reports.AlignLeft},
		{Title: "Debit", Width: 2, Align: reports.AlignRight},
		{Title: "Credit", Width: 2, Align: reports.AlignRight},
	})

	var section *reports.Section
	var txnKey string
	var txnDebit, txnCredit decimal.Decimal
	flush := func() {
		if section == nil {
			return
		}
		section.TotalRow = []string{"", "Entry total", money(txnDebit), money(txnCredit)}
		doc.Sections = append(doc.Sections, *section)
	}
	for _, line := range lines {
		if line.TransactionID != txnKey {
			flush()
			title := fmt.Sprintf("%s  No %d  %s", line.Date.Format("2006-01-02"), line.DocNo, line.Explanation)
			if line.CounterpartyName != "" {
				title = fmt.Sprintf("%s  (%s)", title, line.CounterpartyName)
			}
			section = &reports.Section{Title: title}
			txnKey = line.TransactionID
			txnDebit, txnCredit = decimal.Zero, decimal.Zero
		}
		txnDebit = txnDebit.Add(line.Debit)
		txnCredit = txnCredit.Add(line.Credit)
		section.Rows = append(section.Rows, []string{
			line.AcctCode,
			line.AcctDescription,
			money(line.Debit),
			money(line.Credit),
		})
	}
	flush()

	doc.GrandTotal = []string{"", "Grand total", money(totalDebit), money(totalCredit)}
	return doc, nil
}

func newDocument(job domain.ReportJob, columns []reports.Column) *reports.Document {
	return &reports.Document{
		Title:   reportTitles[job.ReportType],
		Company: fmt.Sprintf("Company %s", job.CompanyID),
		Period: fmt.Sprintf("%s to %s",
			job.Params.StartDate.Format("2006-01-02"),
			job.Params.EndDate.Format("2006-01-02")),
		Columns: columns,
	}
}

func sumLines(lines []domain.LedgerLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return accounting.Round2(debit), accounting.Round2(credit)
}

// normalBalanceDelta signs a posting for the running balance of an account:
// debit-normal categories grow with debits, credit-normal ones with credits.
func normalBalanceDelta(category domain.AccountCategory, debit, credit decimal.Decimal) decimal.Decimal {
	switch category {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit)
	default:
		return credit.Sub(debit)
	}
}

// money formats an amount for report cells. Zero renders blank so the
// debit/credit columns stay readable.
func money(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return formatThousands(d.StringFixed(2))
}

// formatThousands inserts comma separators into a fixed-point decimal string.
func formatThousands(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, fracPart := s, ""
	for i := range s {
		if s[i] == '.' {
			intPart, fracPart = s[:i], s[i:]
			break
		}
	}
	if len(intPart) > 3 {
		var out []byte
		lead := len(intPart) % 3
		if lead > 0 {
			out = append(out, intPart[:lead]...)
		}
		for i := lead; i < len(intPart); i += 3 {
			if len(out) > 0 {
				out = append(out, ',')
			}
			out = append(out, intPart[i:i+3]...)
		}
		intPart = string(out)
	}
	if neg {
		return "-" + intPart + fracPart
	}
	return intPart + fracPart
}
