// Package remote is the HTTP boundary to the staging service that owns
// validation and persistence of imported check rows.
package remote

import (
	"context"

	"github.com/ebotics/recon/internal/model"
)

// RowQuery selects one page of a job's staged rows. Page is 0-based.
type RowQuery struct {
	Page int
	Size int
}

// UploadRequest is a spreadsheet to stage as a new import job.
type UploadRequest struct {
	FileName          string
	Content           []byte
	JobName           string // optional
	DefaultAssigneeID int64  // 0 means none
}

// API is the staging service contract. Every call may fail with *Error.
type API interface {
	ListImportJobs(ctx context.Context) ([]model.ImportJob, error)
	GetImportJob(ctx context.Context, jobID string) (model.ImportJob, error)
	GetImportJobRows(ctx context.Context, jobID string, q RowQuery) (model.RowPage, error)
	UploadImportFile(ctx context.Context, req UploadRequest) (model.ImportJob, error)
	// BulkUpdateStagedRows writes the rows, revalidates the job and returns
	// its fresh summary.
	BulkUpdateStagedRows(ctx context.Context, jobID string, rows []model.RowUpdate) (model.ImportJob, error)
	RevalidateImportJob(ctx context.Context, jobID string) (model.ImportJob, error)
	PromoteImportJob(ctx context.Context, jobID string, dryRun bool) (model.ImportJob, error)
	DeleteImportJob(ctx context.Context, jobID string) error
}
