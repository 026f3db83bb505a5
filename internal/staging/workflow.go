package staging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ebotics/recon/internal/editcache"
	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/jobstore"
	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/notice"
	"github.com/ebotics/recon/internal/remote"
)

// UploadInput is a spreadsheet chosen by the operator.
type UploadInput struct {
	FileName          string
	Content           []byte
	JobName           string // optional
	DefaultAssigneeID int64  // optional, 0 means none
}

// Refresh reloads the dashboard list.
func (c *Controller) Refresh(ctx context.Context) ([]model.ImportJob, error) {
	jobs, err := c.api.ListImportJobs(ctx)
	if err != nil {
		c.notices.Post(notice.Error, remote.MessageOr(err, remote.GenericMessage))
		return nil, fmt.Errorf("listing import jobs: %w", err)
	}
	c.mu.Lock()
	c.store.SetJobs(jobs)
	c.mu.Unlock()
	return jobs, nil
}

// Upload checks the file's header locally, then stages it as a new job and
// selects it. A file missing required columns never reaches the service.
func (c *Controller) Upload(ctx context.Context, in UploadInput) (model.ImportJob, error) {
	res, err := intake.CheckBytes(in.Content, in.FileName, intake.RequiredColumns)
	if err != nil {
		c.notices.Post(notice.Error, err.Error())
		return model.ImportJob{}, fmt.Errorf("checking %s: %w", in.FileName, err)
	}
	if err := res.Err(); err != nil {
		c.notices.Post(notice.Error, err.Error())
		c.log.WithField("missing", res.Missing).Info("upload blocked")
		return model.ImportJob{}, err
	}

	if err := c.begin(OpUploading); err != nil {
		return model.ImportJob{}, err
	}
	defer c.end()

	job, err := c.api.UploadImportFile(ctx, remote.UploadRequest{
		FileName:          in.FileName,
		Content:           in.Content,
		JobName:           in.JobName,
		DefaultAssigneeID: in.DefaultAssigneeID,
	})
	if err != nil {
		c.fail("upload", "", 0, err)
		return model.ImportJob{}, fmt.Errorf("uploading %s: %w", in.FileName, err)
	}

	c.mu.Lock()
	discarded := c.edits.Len()
	c.edits.Clear()
	c.store.Select(job)
	c.mu.Unlock()
	c.logDiscarded(discarded)

	c.succeed("upload", job.JobID, job.TotalRows,
		fmt.Sprintf("Uploaded %s: %d rows staged (%s).", in.FileName, job.TotalRows, job.Status))

	if _, err := c.Refresh(ctx); err != nil {
		c.log.WithError(err).Warn("refreshing dashboard after upload")
	}
	if err := c.refetchPage(ctx); err != nil {
		c.log.WithError(err).Warn("loading rows after upload")
	}
	job, _ = c.Selected()
	return job, nil
}

// SelectJob opens a job: its detail and first row page are fetched and any
// unsaved edits from the previous job are discarded.
func (c *Controller) SelectJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	if c.Busy() != OpNone {
		return model.ImportJob{}, ErrBusy
	}
	job, err := c.api.GetImportJob(ctx, jobID)
	if err != nil {
		var rerr *remote.Error
		if errors.As(err, &rerr) && rerr.NotFound() {
			c.forget(jobID)
		}
		c.notices.Post(notice.Error, remote.MessageOr(err, remote.GenericMessage))
		return model.ImportJob{}, fmt.Errorf("loading job %s: %w", jobID, err)
	}
	page, err := c.api.GetImportJobRows(ctx, jobID, remote.RowQuery{Page: 0, Size: jobstore.PageSize})
	if err != nil {
		c.notices.Post(notice.Error, remote.MessageOr(err, remote.GenericMessage))
		return model.ImportJob{}, fmt.Errorf("loading rows for job %s: %w", jobID, err)
	}

	c.mu.Lock()
	discarded := c.edits.Len()
	c.edits.Clear()
	c.store.Select(job)
	c.store.SetPage(page)
	c.mu.Unlock()
	c.logDiscarded(discarded)

	c.log.WithFields(logrus.Fields{
		"job_id": jobID,
		"status": job.Status,
	}).Debug("job selected")
	return job, nil
}

// forget drops a job the service no longer has from the dashboard.
func (c *Controller) forget(jobID string) {
	c.mu.Lock()
	discarded := 0
	if c.store.RemoveJob(jobID) {
		discarded = c.edits.Len()
		c.edits.Clear()
	}
	c.mu.Unlock()
	c.logDiscarded(discarded)
}

func (c *Controller) logDiscarded(n int) {
	if n > 0 {
		c.log.WithField("edits", n).Info("discarded unsaved edits")
	}
}

// LoadPage fetches another page of the selected job. Unsaved edits are kept.
func (c *Controller) LoadPage(ctx context.Context, page int) (model.RowPage, error) {
	job, err := c.selectedJob()
	if err != nil {
		return model.RowPage{}, err
	}
	if page < 0 {
		return model.RowPage{}, fmt.Errorf("page %d out of range", page)
	}
	p, err := c.api.GetImportJobRows(ctx, job.JobID, remote.RowQuery{Page: page, Size: jobstore.PageSize})
	if err != nil {
		c.notices.Post(notice.Error, remote.MessageOr(err, remote.GenericMessage))
		return model.RowPage{}, fmt.Errorf("loading page %d: %w", page, err)
	}
	c.mu.Lock()
	c.store.SetPage(p)
	c.mu.Unlock()
	return p, nil
}

// refetchPage reloads the current page of the selected job.
func (c *Controller) refetchPage(ctx context.Context) error {
	c.mu.Lock()
	job, ok := c.store.Selected()
	page := c.store.Page().Page
	c.mu.Unlock()
	if !ok {
		return nil
	}
	p, err := c.api.GetImportJobRows(ctx, job.JobID, remote.RowQuery{Page: page, Size: jobstore.PageSize})
	if err != nil {
		return fmt.Errorf("reloading page %d: %w", page, err)
	}
	c.mu.Lock()
	if cur, ok := c.store.Selected(); ok && cur.JobID == job.JobID {
		c.store.SetPage(p)
	}
	c.mu.Unlock()
	return nil
}

// EditRow merges changes into the row's unsaved edit. Nothing is sent.
func (c *Controller) EditRow(rowID string, changes model.Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != OpNone {
		return ErrBusy
	}
	if _, ok := c.store.Selected(); !ok {
		return ErrNoJobSelected
	}
	if _, ok := c.store.Row(rowID); !ok && !c.edits.Has(rowID) {
		return fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	c.edits.Edit(rowID, changes)
	return nil
}

// DiscardEdit drops the unsaved edit for a row.
func (c *Controller) DiscardEdit(rowID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.edits.Has(rowID) {
		return false
	}
	c.edits.Remove(rowID)
	return true
}

// SaveRow commits one row. The payload layers form values over the cached
// edit over the last-known server row. The edit is cleared only on success.
func (c *Controller) SaveRow(ctx context.Context, rowID string, form model.Patch) (model.ImportJob, error) {
	job, err := c.selectedJob()
	if err != nil {
		return model.ImportJob{}, err
	}

	if err := c.begin(OpSaving); err != nil {
		return model.ImportJob{}, err
	}
	defer c.end()

	// EditRow is refused from here on, so the payload and the entry
	// removed on success are the same edit.
	c.mu.Lock()
	server, known := c.store.Row(rowID)
	cached, hasEdit := c.edits.Get(rowID)
	c.mu.Unlock()
	if !known && !hasEdit {
		return model.ImportJob{}, fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	var serverRow *model.StagedRow
	if known {
		serverRow = &server
	}

	update := editcache.Resolve(rowID, form, cached, serverRow)
	updated, err := c.api.BulkUpdateStagedRows(ctx, job.JobID, []model.RowUpdate{update})
	if err != nil {
		c.fail("save", job.JobID, 1, err)
		return model.ImportJob{}, fmt.Errorf("saving row %s: %w", rowID, err)
	}

	c.mu.Lock()
	c.edits.Remove(rowID)
	c.store.ReplaceJob(updated)
	c.mu.Unlock()

	label := rowID
	if known && server.SheetRowNumber > 0 {
		label = strconv.Itoa(server.SheetRowNumber)
	}
	c.succeed("save", job.JobID, 1, fmt.Sprintf("Row %s saved.", label))

	if err := c.refetchPage(ctx); err != nil {
		c.log.WithError(err).Warn("reloading rows after save")
	}
	return updated, nil
}

// RevalidateAll commits every unsaved edit in a single bulk update, or asks
// the service to re-check the job when there are none.
func (c *Controller) RevalidateAll(ctx context.Context) (model.ImportJob, error) {
	job, err := c.selectedJob()
	if err != nil {
		return model.ImportJob{}, err
	}
	if err := c.begin(OpRevalidating); err != nil {
		return model.ImportJob{}, err
	}
	defer c.end()

	c.mu.Lock()
	edits := c.edits.Snapshot()
	updates := make([]model.RowUpdate, 0, len(edits))
	order := make(map[string]int, len(edits))
	for id, p := range edits {
		var serverRow *model.StagedRow
		if row, ok := c.store.Row(id); ok {
			serverRow = &row
			order[id] = row.SheetRowNumber
		}
		updates = append(updates, editcache.Resolve(id, model.Patch{}, p, serverRow))
	}
	c.mu.Unlock()
	sortUpdates(updates, order)

	var updated model.ImportJob
	if len(updates) == 0 {
		updated, err = c.api.RevalidateImportJob(ctx, job.JobID)
	} else {
		updated, err = c.api.BulkUpdateStagedRows(ctx, job.JobID, updates)
	}
	if err != nil {
		c.fail("revalidate", job.JobID, len(updates), err)
		return model.ImportJob{}, fmt.Errorf("revalidating job %s: %w", job.JobID, err)
	}

	c.mu.Lock()
	for id := range edits {
		c.edits.Remove(id)
	}
	c.store.ReplaceJob(updated)
	c.mu.Unlock()

	msg := fmt.Sprintf("Job re-validated: %d valid, %d invalid.", updated.ValidRows, updated.InvalidRows)
	if len(updates) > 0 {
		msg = fmt.Sprintf("Saved %d edited rows. %s", len(updates), msg)
	}
	c.succeed("revalidate", job.JobID, len(updates), msg)

	if err := c.refetchPage(ctx); err != nil {
		c.log.WithError(err).Warn("reloading rows after revalidate")
	}
	return updated, nil
}

// sortUpdates orders by sheet row number; rows never fetched go last by id.
func sortUpdates(updates []model.RowUpdate, order map[string]int) {
	sort.SliceStable(updates, func(i, j int) bool {
		ni, iok := order[updates[i].StagingCheckID]
		nj, jok := order[updates[j].StagingCheckID]
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		}
		return updates[i].StagingCheckID < updates[j].StagingCheckID
	})
}

// PreviewPromote asks the service what a promote would move without doing it.
func (c *Controller) PreviewPromote(ctx context.Context) (model.ImportJob, error) {
	job, err := c.selectedJob()
	if err != nil {
		return model.ImportJob{}, err
	}
	preview, err := c.api.PromoteImportJob(ctx, job.JobID, true)
	if err != nil {
		c.notices.Post(notice.Error, remote.MessageOr(err, remote.GenericMessage))
		return model.ImportJob{}, fmt.Errorf("previewing promote of %s: %w", job.JobID, err)
	}
	return preview, nil
}

func (c *Controller) promote(ctx context.Context, jobID string) error {
	c.mu.Lock()
	if err := c.promoteGuard(); err != nil {
		c.mu.Unlock()
		return err
	}
	if job, _ := c.store.Selected(); job.JobID != jobID {
		c.mu.Unlock()
		return fmt.Errorf("%w: selection changed", ErrNoJobSelected)
	}
	c.busy = OpPromoting
	c.mu.Unlock()
	defer c.end()

	updated, err := c.api.PromoteImportJob(ctx, jobID, false)
	if err != nil {
		c.fail("promote", jobID, 0, err)
		return fmt.Errorf("promoting job %s: %w", jobID, err)
	}

	c.mu.Lock()
	c.store.ReplaceJob(updated)
	c.mu.Unlock()

	msg := fmt.Sprintf("Promoted %d rows (%s).", updated.PromotedRows, updated.Status)
	if updated.InvalidRows > 0 {
		msg = fmt.Sprintf("Promoted %d rows; %d invalid rows remain (%s).", updated.PromotedRows, updated.InvalidRows, updated.Status)
	}
	c.succeed("promote", jobID, updated.PromotedRows, msg)

	if _, err := c.Refresh(ctx); err != nil {
		c.log.WithError(err).Warn("refreshing dashboard after promote")
	}
	if err := c.refetchPage(ctx); err != nil {
		c.log.WithError(err).Warn("reloading rows after promote")
	}
	return nil
}

func (c *Controller) deleteJob(ctx context.Context, jobID string) error {
	if err := c.begin(OpDeleting); err != nil {
		return err
	}
	defer c.end()

	if err := c.api.DeleteImportJob(ctx, jobID); err != nil {
		c.fail("delete", jobID, 0, err)
		return fmt.Errorf("deleting job %s: %w", jobID, err)
	}

	c.mu.Lock()
	if c.store.RemoveJob(jobID) {
		c.edits.Clear()
	}
	c.mu.Unlock()

	c.succeed("delete", jobID, 0, "Import job deleted.")

	if _, err := c.Refresh(ctx); err != nil {
		c.log.WithError(err).Warn("refreshing dashboard after delete")
	}
	return nil
}
