package stagingsrv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/model"
)

// stagedRow is a StagedRow plus problems found while reading its cells,
// which survive until the row is edited.
type stagedRow struct {
	model.StagedRow
	parseErrs []string
}

// parseTable maps the header onto template fields and returns one row per
// non-blank line. Unknown columns are ignored.
func parseTable(table [][]string, defaultAssignee int64) ([]*stagedRow, error) {
	if len(table) == 0 {
		return nil, nil
	}
	header := table[0]
	if missing := intake.MissingColumns(header, intake.RequiredColumns); len(missing) > 0 {
		return nil, &intake.MissingColumnsError{Missing: missing}
	}

	cols := make(map[model.Field]int)
	for i, h := range header {
		if f, err := model.ParseField(h); err == nil {
			if _, dup := cols[f]; !dup {
				cols[f] = i
			}
		}
	}

	var rows []*stagedRow
	for i, rec := range table[1:] {
		if blank(rec) {
			continue
		}
		cell := func(f model.Field) string {
			idx, ok := cols[f]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		r := &stagedRow{StagedRow: model.StagedRow{
			SheetRowNumber:          i + 2,
			RowStatus:               model.RowPending,
			CheckNumber:             cell(model.FieldCheckNumber),
			DateOfDeposit:           cell(model.FieldDateOfDeposit),
			Payer:                   cell(model.FieldPayer),
			Location:                cell(model.FieldLocation),
			Practice:                cell(model.FieldPractice),
			Type:                    cell(model.FieldType),
			ExchangeDescription:     cell(model.FieldExchangeDescription),
			BankStatementTrnDetails: cell(model.FieldBankStatementTrnDetails),
			Comments:                cell(model.FieldComments),
		}}

		if raw := cell(model.FieldCheckAmount); raw != "" {
			amt, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(raw))
			if err != nil {
				r.parseErrs = append(r.parseErrs, fmt.Sprintf("Check Amount %q is not a number", raw))
			} else {
				r.CheckAmount = amt
			}
		}
		r.AssigneeID = r.parseID(model.FieldAssigneeID, cell(model.FieldAssigneeID), defaultAssignee)
		r.ReporterID = r.parseID(model.FieldReporterID, cell(model.FieldReporterID), 0)
		rows = append(rows, r)
	}
	return rows, nil
}

func (r *stagedRow) parseID(f model.Field, raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.parseErrs = append(r.parseErrs, fmt.Sprintf("%s %q is not a whole number", f.Title(), raw))
		return fallback
	}
	return n
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
