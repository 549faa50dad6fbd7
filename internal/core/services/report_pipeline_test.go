package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/core/services"
	"github.com/agridane/erp_backend/internal/dto"
	"github.com/agridane/erp_backend/internal/repositories/jobstore"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetLedgerLines(ctx context.Context, q portsrepo.LedgerQuery) ([]domain.LedgerLine, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerLine), args.Error(1)
}

func (m *MockReportingRepository) GetTrialBalanceRows(ctx context.Context, q portsrepo.LedgerQuery) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

// fakeArtifactStore keeps artifacts in a map so eviction can be simulated.
type fakeArtifactStore struct {
	files map[string][]byte
}

var _ portsrepo.ArtifactStore = (*fakeArtifactStore)(nil)

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{files: make(map[string][]byte)}
}

func (s *fakeArtifactStore) Save(_ context.Context, relPath string, data []byte) error {
	s.files[relPath] = data
	return nil
}

func (s *fakeArtifactStore) Open(_ context.Context, relPath string) ([]byte, error) {
	data, ok := s.files[relPath]
	if !ok {
		return nil, apperrors.ErrGone
	}
	return data, nil
}

func (s *fakeArtifactStore) Remove(_ context.Context, relPath string) error {
	delete(s.files, relPath)
	return nil
}

// noopBuilder leaves the job queued, so the pre-completion paths can be tested.
type noopBuilder struct{}

func (noopBuilder) Build(context.Context, domain.ReportJob) {}

// --- Suite ---

type ReportPipelineTestSuite struct {
	suite.Suite
	jobs          *jobstore.MemoryJobStore
	artifacts     *fakeArtifactStore
	mockReporting *MockReportingRepository
	service       portssvc.ReportSvcFacade
	companyID     string
}

func (suite *ReportPipelineTestSuite) SetupTest() {
	suite.jobs = jobstore.NewMemoryJobStore()
	suite.artifacts = newFakeArtifactStore()
	suite.mockReporting = new(MockReportingRepository)
	suite.companyID = "company-1"

	builder := services.NewReportBuilder(suite.jobs, suite.artifacts, suite.mockReporting)
	suite.service = services.NewReportService(suite.jobs, suite.artifacts, builder,
		services.ReportSchedulerConfig{JobTTL: time.Hour, InlineBuilds: true})
}

func (suite *ReportPipelineTestSuite) request(format string) dto.StartReportRequest {
	return dto.StartReportRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Format:    format,
		CompanyID: suite.companyID,
	}
}

func (suite *ReportPipelineTestSuite) balancedLines() []domain.LedgerLine {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []domain.LedgerLine{
		{Module: domain.CashReceipt, TransactionID: "txn-1", DocNo: 7, Date: date,
			AcctCode: "1010", AcctDescription: "Cash in Bank", Category: domain.Asset,
			Explanation: "January collection", Debit: decimal.NewFromInt(1500), Credit: decimal.Zero},
		{Module: domain.CashReceipt, TransactionID: "txn-1", DocNo: 7, Date: date,
			AcctCode: "4100", AcctDescription: "Sales Revenue", Category: domain.Revenue,
			Explanation: "January collection", Debit: decimal.Zero, Credit: decimal.NewFromInt(1500)},
	}
}

func (suite *ReportPipelineTestSuite) TestStartReport_DateRangeOrder() {
	ctx := context.Background()
	req := suite.request("pdf")
	req.StartDate, req.EndDate = "2024-02-01", "2024-01-01"

	_, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrDateRangeOrder)
}

func (suite *ReportPipelineTestSuite) TestStartReport_UnknownFormat() {
	ctx := context.Background()
	req := suite.request("csv")

	_, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportPipelineTestSuite) TestGeneralLedger_EndToEndPDF() {
	ctx := context.Background()
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(suite.balancedLines(), nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, suite.request("pdf"))
	suite.Require().NoError(err)
	suite.Require().NotEmpty(ticket)

	job, err := suite.service.Status(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal(domain.JobDone, job.Status)
	suite.Equal(100, job.Progress)
	suite.Require().NotNil(job.File)
	suite.Equal("General Ledger 2024-01-01 to 2024-01-31.pdf", job.FileName)
	suite.Nil(job.Error)

	artifact, err := suite.service.Download(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal("application/pdf", artifact.MIMEType)
	suite.NotEmpty(artifact.Data)
	suite.mockReporting.AssertExpectations(suite.T())
}

func (suite *ReportPipelineTestSuite) TestExcelAliasNormalized() {
	ctx := context.Background()
	suite.mockReporting.On("GetTrialBalanceRows", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return([]domain.TrialBalanceRow{
			{AcctCode: "1010", AcctDescription: "Cash in Bank", Category: domain.Asset,
				Debit: decimal.NewFromInt(200), Credit: decimal.Zero},
			{AcctCode: "4100", AcctDescription: "Sales Revenue", Category: domain.Revenue,
				Debit: decimal.Zero, Credit: decimal.NewFromInt(200)},
		}, nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.TrialBalanceReport, suite.request("excel"))
	suite.Require().NoError(err)

	job, err := suite.service.Status(ctx, domain.TrialBalanceReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal(domain.FormatXLS, job.Format)
	suite.Equal(domain.JobDone, job.Status)
	suite.Equal("Trial Balance 2024-01-01 to 2024-01-31.xlsx", job.FileName)
}

func (suite *ReportPipelineTestSuite) TestUnbalancedLedgerRefused() {
	ctx := context.Background()
	lines := suite.balancedLines()
	lines[1].Credit = decimal.NewFromInt(1400) // 100 short
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(lines, nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, suite.request("pdf"))
	suite.Require().NoError(err, "scheduling succeeds, refusal surfaces in the job state")

	job, err := suite.service.Status(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal(domain.JobError, job.Status)
	suite.Require().NotNil(job.Error)
	suite.Contains(*job.Error, "out of balance")
	suite.Nil(job.File)
}

func (suite *ReportPipelineTestSuite) TestCheckRegisterRendersUnbalanced() {
	ctx := context.Background()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	// One-sided lines; the check register is a listing and renders anyway.
	lines := []domain.LedgerLine{
		{Module: domain.CashDisbursement, TransactionID: "txn-9", DocNo: 42, Date: date,
			AcctCode: "5200", AcctDescription: "Office Supplies", Category: domain.Expense,
			CounterpartyName: "Acme Supplies", Explanation: "Printer paper",
			Debit: decimal.NewFromInt(300), Credit: decimal.Zero},
	}
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(lines, nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.CheckRegisterReport, suite.request("pdf"))
	suite.Require().NoError(err)

	job, err := suite.service.Status(ctx, domain.CheckRegisterReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal(domain.JobDone, job.Status)
}

func (suite *ReportPipelineTestSuite) TestCheckRegister_OneRowPerCheck() {
	ctx := context.Background()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	// A disbursement of 300: expense debit plus the system bank credit. The
	// register must fold both into a single row so the check is counted once.
	lines := []domain.LedgerLine{
		{Module: domain.CashDisbursement, TransactionID: "txn-9", DocNo: 42, Date: date,
			AcctCode: "5200", AcctDescription: "Office Supplies", Category: domain.Expense,
			CounterpartyName: "Acme Supplies", Explanation: "Printer paper",
			Debit: decimal.NewFromInt(300), Credit: decimal.Zero},
		{Module: domain.CashDisbursement, TransactionID: "txn-9", DocNo: 42, Date: date,
			AcctCode: "1010", AcctDescription: "Cash in Bank", Category: domain.Asset,
			CounterpartyName: "Acme Supplies", Explanation: "Printer paper",
			Debit: decimal.Zero, Credit: decimal.NewFromInt(300), BankRow: true},
	}
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(lines, nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.CheckRegisterReport, suite.request("xls"))
	suite.Require().NoError(err)

	artifact, err := suite.service.Download(ctx, domain.CheckRegisterReport, ticket, suite.companyID)
	suite.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	suite.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows("Report")
	suite.Require().NoError(err)

	var checkRows [][]string
	total := ""
	for _, row := range rows {
		if len(row) > 0 && row[0] == "2024-01-10" {
			checkRows = append(checkRows, row)
		}
		for i, cell := range row {
			if cell == "Total" && i+1 < len(row) {
				total = row[i+1]
			}
		}
	}
	suite.Require().Len(checkRows, 1, "one register row per check, not per detail line")
	suite.Equal("300.00", checkRows[0][len(checkRows[0])-1])
	suite.Equal("300.00", total, "total equals the disbursed amount, not double")
}

func (suite *ReportPipelineTestSuite) TestRepositoryFailureIsTerminal() {
	ctx := context.Background()
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(nil, errors.New("connection refused")).Once()

	ticket, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, suite.request("pdf"))
	suite.Require().NoError(err)

	job, err := suite.service.Status(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal(domain.JobError, job.Status)
	suite.Require().NotNil(job.Error)
}

func (suite *ReportPipelineTestSuite) TestStatus_CrossCompanyForbidden() {
	ctx := context.Background()
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(suite.balancedLines(), nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, suite.request("pdf"))
	suite.Require().NoError(err)

	_, err = suite.service.Status(ctx, domain.GeneralLedgerReport, ticket, "company-2")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ReportPipelineTestSuite) TestStatus_UnknownTicket() {
	ctx := context.Background()
	_, err := suite.service.Status(ctx, domain.GeneralLedgerReport, "no-such-ticket", suite.companyID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReportPipelineTestSuite) TestDownload_BeforeDone() {
	ctx := context.Background()
	pending := services.NewReportService(suite.jobs, suite.artifacts, noopBuilder{},
		services.ReportSchedulerConfig{JobTTL: time.Hour, InlineBuilds: true})

	ticket, err := pending.StartReport(ctx, domain.GeneralLedgerReport, suite.request("pdf"))
	suite.Require().NoError(err)

	_, err = pending.Download(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorIs(err, services.ErrReportNotReady)
}

func (suite *ReportPipelineTestSuite) TestDownload_EvictedArtifactGone() {
	ctx := context.Background()
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(suite.balancedLines(), nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, suite.request("pdf"))
	suite.Require().NoError(err)

	job, err := suite.service.Status(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().NoError(err)
	suite.Require().NotNil(job.File)
	suite.Require().NoError(suite.artifacts.Remove(ctx, *job.File))

	_, err = suite.service.Download(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrGone)
}

func (suite *ReportPipelineTestSuite) TestView_SpreadsheetRejected() {
	ctx := context.Background()
	suite.mockReporting.On("GetLedgerLines", mock.Anything, mock.AnythingOfType("repositories.LedgerQuery")).
		Return(suite.balancedLines(), nil).Once()

	ticket, err := suite.service.StartReport(ctx, domain.GeneralLedgerReport, suite.request("xls"))
	suite.Require().NoError(err)

	_, err = suite.service.View(ctx, domain.GeneralLedgerReport, ticket, suite.companyID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnsupportedMedia)
	suite.ErrorIs(err, services.ErrInlineViewPDF)
}

func TestReportPipeline(t *testing.T) {
	suite.Run(t, new(ReportPipelineTestSuite))
}
