package staging

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/remote"
)

// fakeAPI is an in-memory staging service that records every call.
type fakeAPI struct {
	mu    sync.Mutex
	jobs  []model.ImportJob
	rows  map[string][]model.StagedRow
	calls []string
	bulk  [][]model.RowUpdate
	errs  map[string]error

	uploaded   model.ImportJob
	totalPages int           // overrides the computed page count when > 0
	block      chan struct{} // when set, BulkUpdateStagedRows waits on it
	entered    chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{rows: make(map[string][]model.StagedRow), errs: make(map[string]error)}
}

func (f *fakeAPI) addJob(job model.ImportJob, rows ...model.StagedRow) {
	f.jobs = append(f.jobs, job)
	f.rows[job.JobID] = rows
}

func (f *fakeAPI) called(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) job(jobID string) (model.ImportJob, error) {
	for _, j := range f.jobs {
		if j.JobID == jobID {
			return j, nil
		}
	}
	return model.ImportJob{}, &remote.Error{StatusCode: 404, Code: "NOT_FOUND", Message: "import job not found: " + jobID}
}

// recount derives the job counters the way a server would.
func (f *fakeAPI) recount(jobID string) model.ImportJob {
	job, _ := f.job(jobID)
	job.TotalRows, job.ValidRows, job.InvalidRows, job.PromotedRows = 0, 0, 0, 0
	for _, r := range f.rows[jobID] {
		job.TotalRows++
		switch r.RowStatus {
		case model.RowValid:
			job.ValidRows++
		case model.RowInvalid:
			job.InvalidRows++
		case model.RowPromoted:
			job.PromotedRows++
		}
	}
	switch {
	case job.InvalidRows > 0:
		job.Status = model.JobCorrectionRequired
	case job.ValidRows > 0:
		job.Status = model.JobReadyToPromote
	}
	for i := range f.jobs {
		if f.jobs[i].JobID == jobID {
			f.jobs[i] = job
		}
	}
	return job
}

func (f *fakeAPI) ListImportJobs(ctx context.Context) ([]model.ImportJob, error) {
	if err := f.called("ListImportJobs"); err != nil {
		return nil, err
	}
	return append([]model.ImportJob(nil), f.jobs...), nil
}

func (f *fakeAPI) GetImportJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	if err := f.called("GetImportJob"); err != nil {
		return model.ImportJob{}, err
	}
	return f.job(jobID)
}

func (f *fakeAPI) GetImportJobRows(ctx context.Context, jobID string, q remote.RowQuery) (model.RowPage, error) {
	if err := f.called("GetImportJobRows"); err != nil {
		return model.RowPage{}, err
	}
	rows := f.rows[jobID]
	pages := (len(rows) + q.Size - 1) / q.Size
	if f.totalPages > 0 {
		pages = f.totalPages
	}
	page := model.RowPage{Page: q.Page, Size: q.Size, TotalElements: len(rows), TotalPages: pages}
	start := q.Page * q.Size
	if start < len(rows) {
		end := min(start+q.Size, len(rows))
		page.Items = append(page.Items, rows[start:end]...)
	}
	return page, nil
}

func (f *fakeAPI) UploadImportFile(ctx context.Context, req remote.UploadRequest) (model.ImportJob, error) {
	if err := f.called("UploadImportFile"); err != nil {
		return model.ImportJob{}, err
	}
	job := f.uploaded
	if job.JobName == "" {
		job.JobName = req.JobName
	}
	job.UploadedFileName = req.FileName
	f.jobs = append(f.jobs, job)
	return job, nil
}

func (f *fakeAPI) BulkUpdateStagedRows(ctx context.Context, jobID string, updates []model.RowUpdate) (model.ImportJob, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	if err := f.called("BulkUpdateStagedRows"); err != nil {
		return model.ImportJob{}, err
	}
	f.bulk = append(f.bulk, updates)
	rows := f.rows[jobID]
	for _, u := range updates {
		for i := range rows {
			if rows[i].StagingCheckID != u.StagingCheckID {
				continue
			}
			rows[i].CheckNumber = u.CheckNumber
			rows[i].Comments = u.Comments
			rows[i].RowStatus = model.RowValid
			rows[i].ValidationErrors = nil
		}
	}
	return f.recount(jobID), nil
}

func (f *fakeAPI) RevalidateImportJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	if err := f.called("RevalidateImportJob"); err != nil {
		return model.ImportJob{}, err
	}
	return f.recount(jobID), nil
}

func (f *fakeAPI) PromoteImportJob(ctx context.Context, jobID string, dryRun bool) (model.ImportJob, error) {
	if err := f.called(fmt.Sprintf("PromoteImportJob(dryRun=%t)", dryRun)); err != nil {
		return model.ImportJob{}, err
	}
	if dryRun {
		job := f.recount(jobID)
		job.PromotedRows = job.ValidRows
		return job, nil
	}
	rows := f.rows[jobID]
	for i := range rows {
		if rows[i].RowStatus == model.RowValid {
			rows[i].RowStatus = model.RowPromoted
		}
	}
	job := f.recount(jobID)
	job.Status = model.JobPromoted
	if job.InvalidRows > 0 {
		job.Status = model.JobPartialPromoted
	}
	for i := range f.jobs {
		if f.jobs[i].JobID == jobID {
			f.jobs[i] = job
		}
	}
	return job, nil
}

func (f *fakeAPI) DeleteImportJob(ctx context.Context, jobID string) error {
	if err := f.called("DeleteImportJob"); err != nil {
		return err
	}
	kept := f.jobs[:0]
	for _, j := range f.jobs {
		if j.JobID != jobID {
			kept = append(kept, j)
		}
	}
	f.jobs = kept
	delete(f.rows, jobID)
	return nil
}
