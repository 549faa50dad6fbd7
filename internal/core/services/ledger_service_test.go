package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/core/services"
	"github.com/agridane/erp_backend/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockLedgerRepository
	service   portssvc.LedgerSvcFacade
	companyID string
	userID    string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerService(suite.mockRepo)
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *LedgerServiceTestSuite) TestCreateHeader_AllocatesDocNo() {
	ctx := context.Background()

	suite.mockRepo.On("NextDocNo", ctx, domain.CashReceipt, suite.companyID).Return(int64(14), nil).Once()

	var created domain.TransactionHeader
	suite.mockRepo.On("CreateHeader", ctx, mock.AnythingOfType("domain.TransactionHeader")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(domain.TransactionHeader)
		}).Return(nil).Once()

	req := dto.CreateHeaderRequest{
		Date:        "2024-02-29",
		Explanation: "February collections",
		CompanyID:   suite.companyID,
	}
	header, err := suite.service.CreateHeader(ctx, domain.CashReceipt, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(14), header.DocNo)
	suite.Equal(domain.StateActive, header.Cancel)
	suite.True(header.IsBalanced, "an empty transaction is trivially balanced")
	suite.True(decimal.Zero.Equal(created.SumDebit))
	suite.True(decimal.Zero.Equal(created.SumCredit))
	suite.Equal(suite.userID, created.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateHeader_InvalidDate() {
	ctx := context.Background()

	req := dto.CreateHeaderRequest{Date: "29-02-2024", Explanation: "x", CompanyID: suite.companyID}
	_, err := suite.service.CreateHeader(ctx, domain.CashReceipt, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "NextDocNo", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetHeader_WrongCompanyObscured() {
	ctx := context.Background()
	header := &domain.TransactionHeader{
		TransactionID: uuid.NewString(),
		Module:        domain.GeneralAccounting,
		CompanyID:     suite.companyID,
		Cancel:        domain.StateActive,
	}

	suite.mockRepo.On("FindHeaderByID", ctx, domain.GeneralAccounting, header.TransactionID).Return(header, nil).Once()

	_, err := suite.service.GetHeader(ctx, domain.GeneralAccounting, header.TransactionID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindDetails", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListHeaders_DefaultLimit() {
	ctx := context.Background()

	suite.mockRepo.On("ListHeaders", ctx, domain.CashSales, suite.companyID, 20, (*string)(nil)).
		Return([]domain.TransactionHeader{}, nil, nil).Once()

	resp, err := suite.service.ListHeaders(ctx, domain.CashSales, dto.ListHeadersParams{CompanyID: suite.companyID})

	suite.Require().NoError(err)
	suite.Empty(resp.Headers)
	suite.Nil(resp.NextToken)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCancelHeader_AlreadyCancelled() {
	ctx := context.Background()
	header := &domain.TransactionHeader{
		TransactionID: uuid.NewString(),
		Module:        domain.CashDisbursement,
		CompanyID:     suite.companyID,
		Cancel:        domain.StateCancelled,
	}

	suite.mockRepo.On("FindHeaderByID", ctx, domain.CashDisbursement, header.TransactionID).Return(header, nil).Once()

	err := suite.service.CancelHeader(ctx, domain.CashDisbursement, header.TransactionID, suite.companyID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetCancelState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCancelHeader_Success() {
	ctx := context.Background()
	header := &domain.TransactionHeader{
		TransactionID: uuid.NewString(),
		Module:        domain.CashDisbursement,
		CompanyID:     suite.companyID,
		Cancel:        domain.StateActive,
	}

	suite.mockRepo.On("FindHeaderByID", ctx, domain.CashDisbursement, header.TransactionID).Return(header, nil).Once()
	suite.mockRepo.On("SetCancelState", ctx, domain.CashDisbursement, header.TransactionID,
		domain.StateCancelled, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelHeader(ctx, domain.CashDisbursement, header.TransactionID, suite.companyID, suite.userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
