package stagingsrv

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ebotics/recon/internal/model"
)

type jobRecord struct {
	job  model.ImportJob
	rows []*stagedRow
}

// Store holds import jobs and their staged rows in memory.
type Store struct {
	mu   sync.Mutex
	now  func() time.Time
	jobs map[string]*jobRecord
}

// NewStore creates an empty store. A nil clock means time.Now.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{now: clock, jobs: make(map[string]*jobRecord)}
}

// Create stages rows as a new job and validates it.
func (s *Store) Create(name, fileName string, rows []*stagedRow) model.ImportJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		r.StagingCheckID = uuid.NewString()
	}
	rec := &jobRecord{
		job: model.ImportJob{
			JobID:            uuid.NewString(),
			JobName:          name,
			UploadedFileName: fileName,
			CreatedAt:        model.NewTimestamp(s.now().UTC()),
		},
		rows: rows,
	}
	validateJob(rec.rows)
	rec.recount()
	s.jobs[rec.job.JobID] = rec
	return rec.job
}

// recount refreshes counters and status from the rows.
func (r *jobRecord) recount() {
	j := &r.job
	j.TotalRows, j.ValidRows, j.InvalidRows, j.PromotedRows = len(r.rows), 0, 0, 0
	for _, row := range r.rows {
		switch row.RowStatus {
		case model.RowValid:
			j.ValidRows++
		case model.RowInvalid:
			j.InvalidRows++
		case model.RowPromoted:
			j.PromotedRows++
		}
	}
	j.Status = deriveStatus(*j)
}

// List returns every job, newest first.
func (s *Store) List() []model.ImportJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ImportJob, 0, len(s.jobs))
	for _, rec := range s.jobs {
		out = append(out, rec.job)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Time.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

// Get returns one job.
func (s *Store) Get(jobID string) (model.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return model.ImportJob{}, newNotFoundError("import job", jobID)
	}
	return rec.job, nil
}

// Rows returns one 0-based page of a job's rows in sheet order.
func (s *Store) Rows(jobID string, page, size int) (model.RowPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return model.RowPage{}, newNotFoundError("import job", jobID)
	}

	total := len(rec.rows)
	out := model.RowPage{
		Items:         []model.StagedRow{},
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}
	for i := page * size; i < total && i < (page+1)*size; i++ {
		row := rec.rows[i].StagedRow
		row.ValidationErrors = append([]string{}, row.ValidationErrors...)
		out.Items = append(out.Items, row)
	}
	return out, nil
}

// Update replaces the given rows' fields and revalidates the job.
func (s *Store) Update(jobID string, updates []model.RowUpdate) (model.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return model.ImportJob{}, newNotFoundError("import job", jobID)
	}

	byID := make(map[string]*stagedRow, len(rec.rows))
	for _, r := range rec.rows {
		byID[r.StagingCheckID] = r
	}
	// Check every item before touching any row.
	for _, u := range updates {
		r, ok := byID[u.StagingCheckID]
		if !ok {
			return model.ImportJob{}, newNotFoundError("staged row", u.StagingCheckID)
		}
		if r.RowStatus == model.RowPromoted {
			return model.ImportJob{}, newConflictError("Row " + u.StagingCheckID + " is already promoted")
		}
	}
	for _, u := range updates {
		r := byID[u.StagingCheckID]
		r.CheckNumber = u.CheckNumber
		r.DateOfDeposit = u.DateOfDeposit
		r.CheckAmount = u.CheckAmount
		r.Payer = u.Payer
		r.Location = u.Location
		r.Practice = u.Practice
		r.Type = u.Type
		r.ExchangeDescription = u.ExchangeDescription
		r.BankStatementTrnDetails = u.BankStatementTrnDetails
		r.Comments = u.Comments
		r.AssigneeID = u.AssigneeID
		r.ReporterID = u.ReporterID
		r.parseErrs = nil
	}
	validateJob(rec.rows)
	rec.recount()
	return rec.job, nil
}

// Revalidate re-runs validation without changing rows.
func (s *Store) Revalidate(jobID string) (model.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return model.ImportJob{}, newNotFoundError("import job", jobID)
	}
	validateJob(rec.rows)
	rec.recount()
	return rec.job, nil
}

// Promote marks every valid row promoted. A dry run reports the counts the
// job would have without changing anything.
func (s *Store) Promote(jobID string, dryRun bool) (model.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return model.ImportJob{}, newNotFoundError("import job", jobID)
	}
	if rec.job.ValidRows == 0 {
		return model.ImportJob{}, newConflictError("Job has no valid rows to promote")
	}

	if dryRun {
		job := rec.job
		job.PromotedRows += job.ValidRows
		job.ValidRows = 0
		job.Status = deriveStatus(job)
		return job, nil
	}

	for _, r := range rec.rows {
		if r.RowStatus == model.RowValid {
			r.RowStatus = model.RowPromoted
		}
	}
	rec.recount()
	return rec.job, nil
}

// Delete removes a job and all of its rows.
func (s *Store) Delete(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return newNotFoundError("import job", jobID)
	}
	delete(s.jobs, jobID)
	return nil
}
