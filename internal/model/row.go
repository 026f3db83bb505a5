package model

import "github.com/shopspring/decimal"

// RowStatus is the validation state of one staged row.
type RowStatus string

const (
	RowPending  RowStatus = "PENDING"
	RowValid    RowStatus = "VALID"
	RowInvalid  RowStatus = "INVALID"
	RowPromoted RowStatus = "PROMOTED"
)

// StagedRow is one spreadsheet line held in the staging area.
type StagedRow struct {
	StagingCheckID          string          `json:"stagingCheckId"`
	RowStatus               RowStatus       `json:"rowStatus"`
	Valid                   *bool           `json:"valid,omitempty"`
	SheetRowNumber          int             `json:"sheetRowNumber"` // 1-based, display only
	CheckNumber             string          `json:"checkNumber"`
	DateOfDeposit           string          `json:"dateOfDeposit"`
	CheckAmount             decimal.Decimal `json:"checkAmount"`
	Payer                   string          `json:"payer"`
	Location                string          `json:"location"`
	Practice                string          `json:"practice"`
	Type                    string          `json:"type"`
	ExchangeDescription     string          `json:"exchangeDescription"`
	BankStatementTrnDetails string          `json:"bankStatementTrnDetails"`
	Comments                string          `json:"comments"`
	AssigneeID              int64           `json:"assigneeId"`
	ReporterID              int64           `json:"reporterId"`
	ValidationErrors        []string        `json:"validationErrors"`
}

// Invalid reports whether the server marked the row invalid, either through
// its status or through the legacy valid flag.
func (r StagedRow) Invalid() bool {
	if r.RowStatus == RowInvalid {
		return true
	}
	return r.Valid != nil && !*r.Valid
}

// RowPage is one page of staged rows plus the server's pagination totals.
type RowPage struct {
	Items         []StagedRow `json:"items"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int         `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
}

// Last reports whether p is the final page (or there are no pages at all).
func (p RowPage) Last() bool {
	return p.Page >= p.TotalPages-1
}
