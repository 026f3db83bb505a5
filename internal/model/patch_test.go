package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchSet(t *testing.T) {
	var p Patch
	require.NoError(t, p.Set(FieldCheckNumber, " 1042 "))
	require.NoError(t, p.Set(FieldCheckAmount, "$1,250.50"))
	require.NoError(t, p.Set(FieldAssigneeID, "17"))

	assert.Equal(t, "1042", *p.CheckNumber)
	assert.Equal(t, "1250.5", p.CheckAmount.String())
	assert.Equal(t, int64(17), *p.AssigneeID)
	assert.Nil(t, p.ReporterID)
	assert.Equal(t, []Field{FieldCheckNumber, FieldCheckAmount, FieldAssigneeID}, p.Fields())
}

func TestPatchSet_BlankNumericIsZero(t *testing.T) {
	var p Patch
	require.NoError(t, p.Set(FieldCheckAmount, ""))
	require.NoError(t, p.Set(FieldReporterID, ""))
	assert.True(t, p.CheckAmount.IsZero())
	assert.Equal(t, int64(0), *p.ReporterID)
}

func TestPatchSet_Errors(t *testing.T) {
	var p Patch
	assert.Error(t, p.Set(FieldCheckAmount, "lots"))
	assert.Error(t, p.Set(FieldAssigneeID, "x1"))
	assert.Error(t, p.Set(Field("bogus"), "v"))
	assert.True(t, p.Empty())
}

func TestPatchMerge(t *testing.T) {
	var a, b Patch
	require.NoError(t, a.Set(FieldCheckNumber, "1"))
	require.NoError(t, a.Set(FieldPayer, "Aetna"))
	require.NoError(t, b.Set(FieldCheckNumber, "2"))
	require.NoError(t, b.Set(FieldComments, "fixed"))

	m := a.Merge(b)
	assert.Equal(t, "2", *m.CheckNumber)
	assert.Equal(t, "Aetna", *m.Payer)
	assert.Equal(t, "fixed", *m.Comments)

	// Inputs untouched and not aliased.
	assert.Equal(t, "1", *a.CheckNumber)
	*m.Payer = "changed"
	assert.Equal(t, "Aetna", *a.Payer)
}

func TestPatchClone(t *testing.T) {
	var p Patch
	require.NoError(t, p.Set(FieldCheckAmount, "10"))
	c := p.Clone()
	*c.CheckAmount = decimal.NewFromInt(99)
	assert.Equal(t, "10", p.CheckAmount.String())
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
	}{
		{"checkNumber", FieldCheckNumber},
		{"Check Number", FieldCheckNumber},
		{"  bank statement trn details ", FieldBankStatementTrnDetails},
		{"ASSIGNEEID", FieldAssigneeID},
	}
	for _, tt := range tests {
		got, err := ParseField(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, "ParseField(%q)", tt.in)
	}

	_, err := ParseField("Row #")
	assert.Error(t, err)
}

func TestRowUpdateJSON_AmountIsNumber(t *testing.T) {
	u := RowUpdate{StagingCheckID: "r1", CheckAmount: decimal.RequireFromString("12.50")}
	data, err := json.Marshal(u)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 12.5, raw["checkAmount"])
	assert.Equal(t, "", raw["payer"])
	assert.Equal(t, float64(0), raw["assigneeId"])
}

func TestStagedRowInvalid(t *testing.T) {
	no := false
	yes := true
	assert.True(t, StagedRow{RowStatus: RowInvalid}.Invalid())
	assert.True(t, StagedRow{RowStatus: RowPending, Valid: &no}.Invalid())
	assert.False(t, StagedRow{RowStatus: RowValid, Valid: &yes}.Invalid())
	assert.False(t, StagedRow{RowStatus: RowPromoted}.Invalid())
}

func TestRowPageLast(t *testing.T) {
	assert.True(t, RowPage{Page: 0, TotalPages: 0}.Last())
	assert.True(t, RowPage{Page: 2, TotalPages: 3}.Last())
	assert.False(t, RowPage{Page: 1, TotalPages: 3}.Last())
}

func TestJobStatusValid(t *testing.T) {
	assert.True(t, JobPartialPromoted.Valid())
	assert.False(t, JobStatus("ARCHIVED").Valid())
	assert.True(t, ImportJob{ValidRows: 1}.Promotable())
	assert.False(t, ImportJob{}.Promotable())
	assert.Equal(t, "checks.csv", ImportJob{UploadedFileName: "checks.csv"}.DisplayName())
}
