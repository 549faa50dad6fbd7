package dto

import (
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateHeaderRequest creates a header-only transaction with zero totals.
type CreateHeaderRequest struct {
	Date           string  `json:"date" binding:"required,datetime=2006-01-02"`
	CounterpartyID *string `json:"counterpartyID"`
	BankID         *string `json:"bankID"`
	Explanation    string  `json:"explanation" binding:"required"`
	CompanyID      string  `json:"companyID" binding:"required"`
}

// DetailRequest is the payload for adding or updating a detail row. Exactly
// one of debit/credit must be positive; the service enforces it.
type DetailRequest struct {
	AcctCode string          `json:"acctCode" binding:"required"`
	Debit    decimal.Decimal `json:"debit"`
	Credit   decimal.Decimal `json:"credit"`
}

// BalanceResponse is the derived balance triple returned after every detail
// mutation and by explicit recalculation.
type BalanceResponse struct {
	Debit    decimal.Decimal `json:"debit"`
	Credit   decimal.Decimal `json:"credit"`
	Balanced bool            `json:"balanced"`
}

// DetailResponse describes one GL posting line.
type DetailResponse struct {
	DetailID      string          `json:"detailID"`
	AcctCode      string          `json:"acctCode"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	IsBankRow     bool            `json:"isBankRow"`
}

// HeaderResponse describes a transaction header with its cached totals.
type HeaderResponse struct {
	TransactionID string          `json:"transactionID"`
	Module        string          `json:"module"`
	DocNo         int64           `json:"docNo"`
	Date          time.Time       `json:"date"`
	Explanation   string          `json:"explanation"`
	CompanyID     string          `json:"companyID"`
	Cancel        string          `json:"cancel"`
	SumDebit      decimal.Decimal `json:"sumDebit"`
	SumCredit     decimal.Decimal `json:"sumCredit"`
	IsBalanced    bool            `json:"isBalanced"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// GetHeaderResponse is a header with its detail rows.
type GetHeaderResponse struct {
	Header  HeaderResponse   `json:"header"`
	Details []DetailResponse `json:"details"`
}

// ListHeadersParams paginates the header listing with an opaque next token.
type ListHeadersParams struct {
	CompanyID string
	Limit     int
	NextToken *string
}

// ListHeadersResponse is one page of headers.
type ListHeadersResponse struct {
	Headers   []HeaderResponse `json:"headers"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// ToHeaderResponse converts a domain header to its response DTO.
func ToHeaderResponse(h *domain.TransactionHeader) HeaderResponse {
	return HeaderResponse{
		TransactionID: h.TransactionID,
		Module:        string(h.Module),
		DocNo:         h.DocNo,
		Date:          h.Date,
		Explanation:   h.Explanation,
		CompanyID:     h.CompanyID,
		Cancel:        string(h.Cancel),
		SumDebit:      h.SumDebit,
		SumCredit:     h.SumCredit,
		IsBalanced:    h.IsBalanced,
		CreatedAt:     h.CreatedAt,
	}
}

// ToDetailResponses converts domain detail rows to response DTOs.
func ToDetailResponses(details []domain.TransactionDetail) []DetailResponse {
	responses := make([]DetailResponse, len(details))
	for i, d := range details {
		responses[i] = DetailResponse{
			DetailID:  d.DetailID,
			AcctCode:  d.AcctCode,
			Debit:     d.Debit,
			Credit:    d.Credit,
			IsBankRow: d.IsBankRow(),
		}
	}
	return responses
}
