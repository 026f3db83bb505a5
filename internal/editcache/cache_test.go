package editcache

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebotics/recon/internal/model"
)

func patch(t *testing.T, kv ...string) model.Patch {
	t.Helper()
	require.Zero(t, len(kv)%2)
	var p model.Patch
	for i := 0; i < len(kv); i += 2 {
		f, err := model.ParseField(kv[i])
		require.NoError(t, err)
		require.NoError(t, p.Set(f, kv[i+1]))
	}
	return p
}

func TestEdit_CreatesAndMerges(t *testing.T) {
	c := New()
	c.Edit("r1", patch(t, "checkNumber", "1"))
	c.Edit("r1", patch(t, "payer", "Aetna"))
	c.Edit("r1", patch(t, "checkNumber", "2"))

	got, ok := c.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "2", *got.CheckNumber)
	assert.Equal(t, "Aetna", *got.Payer)
	assert.Equal(t, 1, c.Len())
}

func TestEdit_EmptyPatchNoEntry(t *testing.T) {
	c := New()
	c.Edit("r1", model.Patch{})
	assert.False(t, c.Has("r1"))
	assert.Zero(t, c.Len())
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := New()
	c.Edit("r1", patch(t, "comments", "a"))
	got, _ := c.Get("r1")
	*got.Comments = "mutated"

	again, _ := c.Get("r1")
	assert.Equal(t, "a", *again.Comments)
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	c.Edit("b", patch(t, "comments", "x"))
	c.Edit("a", patch(t, "comments", "y"))
	c.Edit("c", patch(t, "comments", "z"))
	assert.Equal(t, 3, c.Len())

	c.Remove("b", "missing")
	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("a"))
	assert.True(t, c.Has("c"))

	snap := c.Snapshot()
	c.Clear()
	assert.Zero(t, c.Len())
	assert.Len(t, snap, 2, "snapshot survives Clear")
}

func serverRow() *model.StagedRow {
	return &model.StagedRow{
		StagingCheckID: "r1",
		CheckNumber:    "100",
		DateOfDeposit:  "01/06/2025",
		CheckAmount:    decimal.RequireFromString("25.00"),
		Payer:          "Aetna",
		Location:       "Downtown",
		Practice:       "Cardiology",
		Comments:       "server comment",
		AssigneeID:     12,
	}
}

func TestResolve_Priority(t *testing.T) {
	form := patch(t, "checkNumber", "300")
	cached := patch(t, "checkNumber", "200", "payer", "Cigna")

	u := Resolve("r1", form, cached, serverRow())
	assert.Equal(t, "r1", u.StagingCheckID)
	assert.Equal(t, "300", u.CheckNumber, "form wins")
	assert.Equal(t, "Cigna", u.Payer, "cache beats server")
	assert.Equal(t, "Downtown", u.Location, "server fills the rest")
	assert.Equal(t, "25", u.CheckAmount.String())
	assert.Equal(t, int64(12), u.AssigneeID)
}

func TestResolve_FormBlankOverridesServer(t *testing.T) {
	form := patch(t, "comments", "")
	u := Resolve("r1", form, model.Patch{}, serverRow())
	assert.Equal(t, "", u.Comments)
}

func TestResolve_NoServerRowDefaults(t *testing.T) {
	cached := patch(t, "comments", "only this")
	u := Resolve("ghost", model.Patch{}, cached, nil)
	assert.Equal(t, "only this", u.Comments)
	assert.Equal(t, "", u.Payer)
	assert.True(t, u.CheckAmount.IsZero())
	assert.Equal(t, int64(0), u.ReporterID)
}

func TestResolve_Idempotent(t *testing.T) {
	form := patch(t, "checkAmount", "10.10")
	cached := patch(t, "payer", "BCBS")
	row := serverRow()

	first := Resolve("r1", form, cached, row)
	second := Resolve("r1", form, cached, row)
	assert.Equal(t, first, second)
	assert.Equal(t, "100", row.CheckNumber, "server row not mutated")
}
