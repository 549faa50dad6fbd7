package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/dto"
	"github.com/agridane/erp_backend/internal/handlers"
	"github.com/agridane/erp_backend/internal/middleware"
)

// --- Mock ReportService ---
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) StartReport(ctx context.Context, reportType domain.ReportType, req dto.StartReportRequest) (string, error) {
	args := m.Called(ctx, reportType, req)
	return args.String(0), args.Error(1)
}
func (m *MockReportService) Status(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*domain.ReportJob, error) {
	args := m.Called(ctx, reportType, ticket, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportJob), args.Error(1)
}
func (m *MockReportService) Download(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*dto.ReportArtifact, error) {
	args := m.Called(ctx, reportType, ticket, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportArtifact), args.Error(1)
}
func (m *MockReportService) View(ctx context.Context, reportType domain.ReportType, ticket, companyID string) (*dto.ReportArtifact, error) {
	args := m.Called(ctx, reportType, ticket, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportArtifact), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ReportSvcFacade = (*MockReportService)(nil)

// --- Test Suite ---
type ReportHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockReportService *MockReportService
	jwtSecret         string
	companyID         string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *ReportHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "erp-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *ReportHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.companyID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	// The report format binding tag must exist before requests are bound.
	suite.Require().NoError(dto.RegisterCustomValidators())

	suite.mockReportService = new(MockReportService)

	// Rate limiting is exercised in the middleware tests; pass through here.
	passthrough := func(c *gin.Context) { c.Next() }
	v1 := suite.router.Group("/api/v1")
	handlers.RegisterReportRoutes(v1, suite.mockReportService, passthrough)
}

func (suite *ReportHandlerTestSuite) doRequest(method, url string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ReportHandlerTestSuite) TestStartReport_Success() {
	ticket := uuid.NewString()
	suite.mockReportService.On("StartReport",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport,
		mock.MatchedBy(func(req dto.StartReportRequest) bool {
			return req.CompanyID == suite.companyID && req.Format == "pdf"
		}),
	).Return(ticket, nil).Once()

	body, _ := json.Marshal(dto.StartReportRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Format:    "pdf",
		CompanyID: suite.companyID,
	})
	w := suite.doRequest(http.MethodPost, "/api/v1/reports/general-ledger", body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.StartReportResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(ticket, resp.Ticket)
	suite.mockReportService.AssertExpectations(suite.T())
}

func (suite *ReportHandlerTestSuite) TestStartReport_UnknownReportType() {
	body, _ := json.Marshal(dto.StartReportRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Format:    "pdf",
		CompanyID: suite.companyID,
	})
	w := suite.doRequest(http.MethodPost, "/api/v1/reports/balance-sheet", body)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockReportService.AssertNotCalled(suite.T(), "StartReport", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportHandlerTestSuite) TestStartReport_BindingFailure() {
	// Missing required fields fails validation before the service is reached.
	w := suite.doRequest(http.MethodPost, "/api/v1/reports/general-ledger", []byte(`{"format":"pdf"}`))

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockReportService.AssertNotCalled(suite.T(), "StartReport", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportHandlerTestSuite) TestStartReport_Unauthorized() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/reports/general-ledger", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *ReportHandlerTestSuite) TestStatus_Success() {
	ticket := uuid.NewString()
	job := &domain.ReportJob{
		Ticket:     ticket,
		ReportType: domain.GeneralLedgerReport,
		CompanyID:  suite.companyID,
		Status:     domain.JobRunning,
		Progress:   60,
		Format:     domain.FormatPDF,
		CreatedAt:  time.Now().UTC(),
	}
	suite.mockReportService.On("Status",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(job, nil).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/status?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.JobStatusResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("running", resp.Status)
	suite.Equal(60, resp.Progress)
}

func (suite *ReportHandlerTestSuite) TestStatus_MissingCompanyID() {
	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/status", uuid.NewString())
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockReportService.AssertNotCalled(suite.T(), "Status", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportHandlerTestSuite) TestStatus_CrossCompanyForbidden() {
	ticket := uuid.NewString()
	suite.mockReportService.On("Status",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(nil, fmt.Errorf("%w: ticket belongs to another company", apperrors.ErrForbidden)).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/status?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *ReportHandlerTestSuite) TestStatus_UnknownTicket() {
	ticket := uuid.NewString()
	suite.mockReportService.On("Status",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(nil, apperrors.ErrNotFound).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/status?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReportHandlerTestSuite) TestDownload_Success() {
	ticket := uuid.NewString()
	artifact := &dto.ReportArtifact{
		FileName: "General Ledger 2024-01-01 to 2024-01-31.pdf",
		MIMEType: "application/pdf",
		Format:   domain.FormatPDF,
		Data:     []byte("%PDF-1.4 fake"),
	}
	suite.mockReportService.On("Download",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(artifact, nil).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/download?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), "attachment")
	suite.Contains(w.Header().Get("Content-Disposition"), artifact.FileName)
	suite.Equal(artifact.Data, w.Body.Bytes())
}

func (suite *ReportHandlerTestSuite) TestDownload_NotReady() {
	ticket := uuid.NewString()
	suite.mockReportService.On("Download",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(nil, fmt.Errorf("%w: report is not ready yet", apperrors.ErrConflict)).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/download?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReportHandlerTestSuite) TestDownload_ArtifactGone() {
	ticket := uuid.NewString()
	suite.mockReportService.On("Download",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(nil, apperrors.ErrGone).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/download?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusGone, w.Code)
}

func (suite *ReportHandlerTestSuite) TestView_Success() {
	ticket := uuid.NewString()
	artifact := &dto.ReportArtifact{
		FileName: "Trial Balance 2024-01-01 to 2024-01-31.pdf",
		MIMEType: "application/pdf",
		Format:   domain.FormatPDF,
		Data:     []byte("%PDF-1.4 fake"),
	}
	suite.mockReportService.On("View",
		mock.AnythingOfType("*context.valueCtx"),
		domain.TrialBalanceReport, ticket, suite.companyID,
	).Return(artifact, nil).Once()

	url := fmt.Sprintf("/api/v1/reports/trial-balance/%s/view?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Disposition"), "inline")
}

func (suite *ReportHandlerTestSuite) TestView_SpreadsheetUnsupported() {
	ticket := uuid.NewString()
	suite.mockReportService.On("View",
		mock.AnythingOfType("*context.valueCtx"),
		domain.GeneralLedgerReport, ticket, suite.companyID,
	).Return(nil, fmt.Errorf("%w: inline viewing is only available for PDF reports", apperrors.ErrUnsupportedMedia)).Once()

	url := fmt.Sprintf("/api/v1/reports/general-ledger/%s/view?companyID=%s", ticket, suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusUnsupportedMediaType, w.Code)
}

// --- Run Test Suite ---
func TestReportHandler(t *testing.T) {
	suite.Run(t, new(ReportHandlerTestSuite))
}
