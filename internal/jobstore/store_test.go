package jobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebotics/recon/internal/model"
)

func TestSelectResetsRows(t *testing.T) {
	s := New()
	s.Select(model.ImportJob{JobID: "j1"})
	s.SetPage(model.RowPage{Items: []model.StagedRow{{StagingCheckID: "r1"}}, TotalPages: 1})
	_, ok := s.Row("r1")
	require.True(t, ok)

	s.Select(model.ImportJob{JobID: "j2"})
	_, ok = s.Row("r1")
	assert.False(t, ok)
	assert.Empty(t, s.Page().Items)
	assert.Equal(t, PageSize, s.Page().Size)
}

func TestKnownRowsSpanPages(t *testing.T) {
	s := New()
	s.Select(model.ImportJob{JobID: "j1"})
	s.SetPage(model.RowPage{Page: 0, Items: []model.StagedRow{{StagingCheckID: "r1", Payer: "A"}}})
	s.SetPage(model.RowPage{Page: 1, Items: []model.StagedRow{{StagingCheckID: "r2"}}})

	row, ok := s.Row("r1")
	require.True(t, ok, "row from an earlier page stays known")
	assert.Equal(t, "A", row.Payer)
	assert.Len(t, s.Page().Items, 1)

	s.SetPage(model.RowPage{Page: 0, Items: []model.StagedRow{{StagingCheckID: "r1", Payer: "B"}}})
	row, _ = s.Row("r1")
	assert.Equal(t, "B", row.Payer, "refetch replaces last known copy")
}

func TestReplaceJob(t *testing.T) {
	s := New()
	s.SetJobs([]model.ImportJob{{JobID: "j1", ValidRows: 1}, {JobID: "j2"}})
	s.Select(model.ImportJob{JobID: "j1", ValidRows: 1})

	s.ReplaceJob(model.ImportJob{JobID: "j1", ValidRows: 5, Status: model.JobReadyToPromote})
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 5, sel.ValidRows)

	j, ok := s.Job("j1")
	require.True(t, ok)
	assert.Equal(t, model.JobReadyToPromote, j.Status)
	assert.Len(t, s.Jobs(), 2)
}

func TestSetJobsRefreshesSelection(t *testing.T) {
	s := New()
	s.Select(model.ImportJob{JobID: "j1"})
	s.SetJobs([]model.ImportJob{{JobID: "j1", PromotedRows: 3}})
	sel, _ := s.Selected()
	assert.Equal(t, 3, sel.PromotedRows)
}

func TestRemoveJob(t *testing.T) {
	s := New()
	s.SetJobs([]model.ImportJob{{JobID: "j1"}, {JobID: "j2"}})
	s.Select(model.ImportJob{JobID: "j1"})
	s.SetPage(model.RowPage{Items: []model.StagedRow{{StagingCheckID: "r1"}}})

	assert.False(t, s.RemoveJob("j2"))
	_, ok := s.Selected()
	assert.True(t, ok)

	assert.True(t, s.RemoveJob("j1"))
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Empty(t, s.Page().Items)
	assert.Empty(t, s.Jobs())
	_, ok = s.Row("r1")
	assert.False(t, ok)
}

func TestCopiesAreIsolated(t *testing.T) {
	s := New()
	s.SetJobs([]model.ImportJob{{JobID: "j1"}})
	jobs := s.Jobs()
	jobs[0].JobID = "changed"
	_, ok := s.Job("j1")
	assert.True(t, ok)
}
