package stagingsrv

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ebotics/recon/internal/model"
)

// DateLayouts are the accepted Date of Deposit formats.
var DateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// ValidateRow returns the row's validation errors in column order.
func ValidateRow(r model.StagedRow) []string {
	var errs []string

	required := []struct {
		f model.Field
		v string
	}{
		{model.FieldCheckNumber, r.CheckNumber},
		{model.FieldDateOfDeposit, r.DateOfDeposit},
	}
	for _, req := range required {
		if strings.TrimSpace(req.v) == "" {
			errs = append(errs, req.f.Title()+" is required")
		}
	}

	if d := strings.TrimSpace(r.DateOfDeposit); d != "" && !validDate(d) {
		errs = append(errs, fmt.Sprintf("Date of Deposit %q is not a valid date", d))
	}

	// Amounts must be positive with no more than 2 decimal places.
	hundred := decimal.NewFromInt(100)
	switch {
	case !r.CheckAmount.IsPositive():
		errs = append(errs, "Check Amount must be greater than zero")
	case !r.CheckAmount.Mul(hundred).Equal(r.CheckAmount.Mul(hundred).Floor()):
		errs = append(errs, fmt.Sprintf("Check Amount %s has more than 2 decimal places", r.CheckAmount))
	}

	for _, req := range []struct {
		f model.Field
		v string
	}{
		{model.FieldPayer, r.Payer},
		{model.FieldLocation, r.Location},
		{model.FieldPractice, r.Practice},
	} {
		if strings.TrimSpace(req.v) == "" {
			errs = append(errs, req.f.Title()+" is required")
		}
	}

	if r.AssigneeID < 0 {
		errs = append(errs, "Assignee ID must not be negative")
	}
	if r.ReporterID < 0 {
		errs = append(errs, "Reporter ID must not be negative")
	}
	return errs
}

func validDate(s string) bool {
	for _, layout := range DateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// validateJob re-checks every unpromoted row, including check numbers
// duplicated within the job, and sets each row's status.
func validateJob(rows []*stagedRow) {
	counts := make(map[string]int)
	for _, r := range rows {
		if n := strings.TrimSpace(r.CheckNumber); n != "" {
			counts[n]++
		}
	}

	for _, r := range rows {
		if r.RowStatus == model.RowPromoted {
			continue
		}
		errs := append([]string(nil), r.parseErrs...)
		errs = append(errs, ValidateRow(r.StagedRow)...)
		if n := strings.TrimSpace(r.CheckNumber); n != "" && counts[n] > 1 {
			errs = append(errs, fmt.Sprintf("Check Number %s appears more than once in this job", n))
		}

		valid := len(errs) == 0
		r.Valid = &valid
		r.ValidationErrors = errs
		r.RowStatus = model.RowValid
		if !valid {
			r.RowStatus = model.RowInvalid
		}
	}
}

// deriveStatus computes the job status from its row counters.
func deriveStatus(job model.ImportJob) model.JobStatus {
	switch {
	case job.TotalRows == 0:
		return model.JobFailed
	case job.PromotedRows == job.TotalRows:
		return model.JobPromoted
	case job.InvalidRows > 0 && job.PromotedRows > 0:
		return model.JobPartialPromoted
	case job.InvalidRows > 0:
		return model.JobCorrectionRequired
	case job.ValidRows > 0:
		return model.JobReadyToPromote
	}
	return model.JobPending
}
