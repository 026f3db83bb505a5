package model

import (
	"fmt"
	"strings"
)

// Field names one editable column of a staged row. The value is the JSON name.
type Field string

const (
	FieldCheckNumber             Field = "checkNumber"
	FieldDateOfDeposit           Field = "dateOfDeposit"
	FieldCheckAmount             Field = "checkAmount"
	FieldPayer                   Field = "payer"
	FieldLocation                Field = "location"
	FieldPractice                Field = "practice"
	FieldType                    Field = "type"
	FieldExchangeDescription     Field = "exchangeDescription"
	FieldBankStatementTrnDetails Field = "bankStatementTrnDetails"
	FieldComments                Field = "comments"
	FieldAssigneeID              Field = "assigneeId"
	FieldReporterID              Field = "reporterId"
)

// Fields lists every editable field in upload template order.
var Fields = []Field{
	FieldCheckNumber,
	FieldDateOfDeposit,
	FieldCheckAmount,
	FieldPayer,
	FieldLocation,
	FieldPractice,
	FieldType,
	FieldExchangeDescription,
	FieldBankStatementTrnDetails,
	FieldComments,
	FieldAssigneeID,
	FieldReporterID,
}

var fieldTitles = map[Field]string{
	FieldCheckNumber:             "Check Number",
	FieldDateOfDeposit:           "Date of Deposit",
	FieldCheckAmount:             "Check Amount",
	FieldPayer:                   "Payer",
	FieldLocation:                "Location",
	FieldPractice:                "Practice",
	FieldType:                    "Type",
	FieldExchangeDescription:     "Exchange Description",
	FieldBankStatementTrnDetails: "Bank Statement TRN Details",
	FieldComments:                "Comments",
	FieldAssigneeID:              "Assignee ID",
	FieldReporterID:              "Reporter ID",
}

// Title returns the upload template column title for f.
func (f Field) Title() string {
	return fieldTitles[f]
}

// ParseField accepts a JSON field name or a template column title,
// case-insensitively.
func ParseField(s string) (Field, error) {
	key := normalizeKey(s)
	for _, f := range Fields {
		if normalizeKey(string(f)) == key || normalizeKey(f.Title()) == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
