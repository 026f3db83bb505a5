package staging

import (
	"context"
	"fmt"

	"github.com/ebotics/recon/internal/export"
	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/notice"
	"github.com/ebotics/recon/internal/remote"
)

const (
	// ExportPageSize is the page size used when collecting invalid rows.
	ExportPageSize = 100
	// MaxExportPages caps page fetches for one export.
	MaxExportPages = 100
)

// CollectInvalidRows walks the selected job's pages in order and returns
// every invalid row. Any page error fails the whole collection.
func (c *Controller) CollectInvalidRows(ctx context.Context) ([]model.StagedRow, error) {
	job, err := c.selectedJob()
	if err != nil {
		return nil, err
	}

	var invalid []model.StagedRow
	for page := 0; page < MaxExportPages; page++ {
		p, err := c.api.GetImportJobRows(ctx, job.JobID, remote.RowQuery{Page: page, Size: ExportPageSize})
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}
		for _, row := range p.Items {
			if row.Invalid() {
				invalid = append(invalid, row)
			}
		}
		if page >= p.TotalPages-1 {
			break
		}
	}
	return invalid, nil
}

// DownloadInvalidRows writes the selected job's invalid rows to dir and
// returns the file path. No file is written when there are none.
func (c *Controller) DownloadInvalidRows(ctx context.Context, dir string, format intake.Format) (string, error) {
	job, err := c.selectedJob()
	if err != nil {
		return "", err
	}

	rows, err := c.CollectInvalidRows(ctx)
	if err != nil {
		c.fail("export", job.JobID, 0, err)
		return "", fmt.Errorf("collecting invalid rows: %w", err)
	}
	if len(rows) == 0 {
		c.notices.Post(notice.Info, "No invalid rows to download.")
		return "", ErrNoInvalidRows
	}

	path, err := export.WriteFile(dir, job.JobName, c.now(), format, rows)
	if err != nil {
		c.fail("export", job.JobID, len(rows), err)
		return "", err
	}
	c.succeed("export", job.JobID, len(rows), fmt.Sprintf("Downloaded %d invalid rows to %s.", len(rows), path))
	return path, nil
}
