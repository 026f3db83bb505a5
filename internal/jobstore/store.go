// Package jobstore keeps the client's view of import jobs: the dashboard list,
// the selected job and the row page currently loaded for it.
package jobstore

import (
	"github.com/ebotics/recon/internal/model"
)

// PageSize is the number of rows fetched per page of the selected job.
const PageSize = 50

// Store is an in-memory projection of server state. It never computes job
// counters; every job value it holds came from a server response.
type Store struct {
	jobs     []model.ImportJob
	selected *model.ImportJob
	page     model.RowPage
	known    map[string]model.StagedRow
}

// New creates an empty store.
func New() *Store {
	return &Store{known: make(map[string]model.StagedRow)}
}

// SetJobs replaces the dashboard list. The selected job, if present in the
// list, is refreshed from it.
func (s *Store) SetJobs(jobs []model.ImportJob) {
	s.jobs = append([]model.ImportJob(nil), jobs...)
	if s.selected == nil {
		return
	}
	for _, j := range jobs {
		if j.JobID == s.selected.JobID {
			job := j
			s.selected = &job
			return
		}
	}
}

// Jobs returns a copy of the dashboard list.
func (s *Store) Jobs() []model.ImportJob {
	return append([]model.ImportJob(nil), s.jobs...)
}

// Job looks up a dashboard entry by id.
func (s *Store) Job(jobID string) (model.ImportJob, bool) {
	for _, j := range s.jobs {
		if j.JobID == jobID {
			return j, true
		}
	}
	return model.ImportJob{}, false
}

// Select makes job the selected job and drops any rows held for the previous one.
func (s *Store) Select(job model.ImportJob) {
	s.selected = &job
	s.page = model.RowPage{Size: PageSize}
	s.known = make(map[string]model.StagedRow)
	s.upsertJob(job)
}

// Selected returns the selected job.
func (s *Store) Selected() (model.ImportJob, bool) {
	if s.selected == nil {
		return model.ImportJob{}, false
	}
	return *s.selected, true
}

// ReplaceJob swaps in a server copy of a job, both as the selected job (when
// ids match) and in the dashboard list.
func (s *Store) ReplaceJob(job model.ImportJob) {
	if s.selected != nil && s.selected.JobID == job.JobID {
		s.selected = &job
	}
	s.upsertJob(job)
}

func (s *Store) upsertJob(job model.ImportJob) {
	for i := range s.jobs {
		if s.jobs[i].JobID == job.JobID {
			s.jobs[i] = job
			return
		}
	}
	s.jobs = append(s.jobs, job)
}

// SetPage stores the current page and records its rows as last known.
func (s *Store) SetPage(page model.RowPage) {
	page.Items = append([]model.StagedRow(nil), page.Items...)
	s.page = page
	for _, row := range page.Items {
		s.known[row.StagingCheckID] = row
	}
}

// Page returns the current page.
func (s *Store) Page() model.RowPage {
	p := s.page
	p.Items = append([]model.StagedRow(nil), s.page.Items...)
	return p
}

// Row returns the last server copy seen for rowID in the selected job,
// whether or not it is on the current page.
func (s *Store) Row(rowID string) (model.StagedRow, bool) {
	row, ok := s.known[rowID]
	return row, ok
}

// RemoveJob drops a job from the dashboard list, clearing the selection if
// it was the selected job. It reports whether the selection was cleared.
func (s *Store) RemoveJob(jobID string) bool {
	kept := s.jobs[:0]
	for _, j := range s.jobs {
		if j.JobID != jobID {
			kept = append(kept, j)
		}
	}
	s.jobs = kept

	if s.selected != nil && s.selected.JobID == jobID {
		s.ClearSelection()
		return true
	}
	return false
}

// ClearSelection forgets the selected job and its rows.
func (s *Store) ClearSelection() {
	s.selected = nil
	s.page = model.RowPage{}
	s.known = make(map[string]model.StagedRow)
}
