package staging

import (
	"context"
	"fmt"
)

// Action is an irreversible operation that needs operator confirmation.
type Action string

const (
	ActionPromote Action = "promote"
	ActionDelete  Action = "delete"
)

// Confirmation is a pending irreversible action.
type Confirmation struct {
	Action  Action
	JobID   string
	Prompt  string
	Details string
}

// RequestPromote stages a promote of the selected job for confirmation.
func (c *Controller) RequestPromote() (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.promoteGuard(); err != nil {
		return Confirmation{}, err
	}
	job, _ := c.store.Selected()
	conf := Confirmation{
		Action:  ActionPromote,
		JobID:   job.JobID,
		Prompt:  fmt.Sprintf("Promote %d valid rows from %q?", job.ValidRows, job.DisplayName()),
		Details: "Promoted rows move to the permanent check records. This cannot be undone.",
	}
	if job.InvalidRows > 0 {
		conf.Details = fmt.Sprintf("%d invalid rows stay in staging. %s", job.InvalidRows, conf.Details)
	}
	c.pending = &conf
	return conf, nil
}

// RequestDelete stages a delete for confirmation. An empty jobID means the
// selected job.
func (c *Controller) RequestDelete(jobID string) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != OpNone {
		return Confirmation{}, ErrBusy
	}

	name := jobID
	if jobID == "" {
		job, ok := c.store.Selected()
		if !ok {
			return Confirmation{}, ErrNoJobSelected
		}
		jobID, name = job.JobID, job.DisplayName()
	} else if job, ok := c.store.Job(jobID); ok && job.DisplayName() != "" {
		name = job.DisplayName()
	}

	conf := Confirmation{
		Action:  ActionDelete,
		JobID:   jobID,
		Prompt:  fmt.Sprintf("Delete import job %q?", name),
		Details: "The job and all of its staged rows are removed. This cannot be undone.",
	}
	c.pending = &conf
	return conf, nil
}

// Pending returns the confirmation waiting for an answer.
func (c *Controller) Pending() (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Confirmation{}, false
	}
	return *c.pending, true
}

// Cancel drops the pending confirmation. It reports whether one existed.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.pending != nil
	c.pending = nil
	return had
}

// Confirm runs the pending action.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	conf := c.pending
	c.pending = nil
	c.mu.Unlock()
	if conf == nil {
		return ErrNoPendingConfirmation
	}

	switch conf.Action {
	case ActionPromote:
		return c.promote(ctx, conf.JobID)
	case ActionDelete:
		return c.deleteJob(ctx, conf.JobID)
	}
	return fmt.Errorf("unknown action %q", conf.Action)
}
