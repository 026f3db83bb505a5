package editcache

import (
	"github.com/shopspring/decimal"

	"github.com/ebotics/recon/internal/model"
)

// Resolve builds the full update payload for one row. Each field takes the
// first value present in: form, cached, server. With no server row, fields
// fall back to zero values ("" for text, 0 for numbers).
func Resolve(rowID string, form, cached model.Patch, server *model.StagedRow) model.RowUpdate {
	base := model.StagedRow{CheckAmount: decimal.Zero}
	if server != nil {
		base = *server
	}

	return model.RowUpdate{
		StagingCheckID:          rowID,
		CheckNumber:             pick(form.CheckNumber, cached.CheckNumber, base.CheckNumber),
		DateOfDeposit:           pick(form.DateOfDeposit, cached.DateOfDeposit, base.DateOfDeposit),
		CheckAmount:             pick(form.CheckAmount, cached.CheckAmount, base.CheckAmount),
		Payer:                   pick(form.Payer, cached.Payer, base.Payer),
		Location:                pick(form.Location, cached.Location, base.Location),
		Practice:                pick(form.Practice, cached.Practice, base.Practice),
		Type:                    pick(form.Type, cached.Type, base.Type),
		ExchangeDescription:     pick(form.ExchangeDescription, cached.ExchangeDescription, base.ExchangeDescription),
		BankStatementTrnDetails: pick(form.BankStatementTrnDetails, cached.BankStatementTrnDetails, base.BankStatementTrnDetails),
		Comments:                pick(form.Comments, cached.Comments, base.Comments),
		AssigneeID:              pick(form.AssigneeID, cached.AssigneeID, base.AssigneeID),
		ReporterID:              pick(form.ReporterID, cached.ReporterID, base.ReporterID),
	}
}

// pick returns the form value, else the cached value, else the server value.
func pick[T any](form, cached *T, server T) T {
	if form != nil {
		return *form
	}
	if cached != nil {
		return *cached
	}
	return server
}
