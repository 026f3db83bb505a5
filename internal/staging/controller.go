// Package staging drives the import workflow for one operator: uploading a
// spreadsheet, reviewing and correcting staged rows, re-validating, and
// promoting or deleting the job. The staging service stays authoritative for
// every counter and status; the controller only holds the selected job, its
// current row page and the unsaved local edits.
package staging

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ebotics/recon/internal/activity"
	"github.com/ebotics/recon/internal/editcache"
	"github.com/ebotics/recon/internal/jobstore"
	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/notice"
	"github.com/ebotics/recon/internal/remote"
)

var (
	ErrBusy                  = errors.New("another operation is in progress")
	ErrNoJobSelected         = errors.New("no import job selected")
	ErrUnknownRow            = errors.New("row is not part of the selected job")
	ErrNothingToPromote      = errors.New("job has no valid rows to promote")
	ErrNoInvalidRows         = errors.New("no invalid rows to download")
	ErrNoPendingConfirmation = errors.New("nothing is waiting for confirmation")
)

// Op names a blocking operation. At most one runs at a time.
type Op string

const (
	OpNone         Op = ""
	OpUploading    Op = "uploading"
	OpSaving       Op = "saving"
	OpRevalidating Op = "revalidating"
	OpPromoting    Op = "promoting"
	OpDeleting     Op = "deleting"
)

var overlayMessages = map[Op]string{
	OpUploading:    "Uploading file...",
	OpSaving:       "Saving row...",
	OpRevalidating: "Re-validating rows...",
	OpPromoting:    "Promoting valid rows...",
	OpDeleting:     "Deleting import job...",
}

// Message returns the blocking overlay text for op.
func (o Op) Message() string {
	return overlayMessages[o]
}

// Controller owns the selected job, its row page and the local edit cache.
type Controller struct {
	api     remote.API
	log     *logrus.Entry
	rec     activity.Recorder
	now     func() time.Time
	notices *notice.Board

	mu      sync.Mutex
	store   *jobstore.Store
	edits   *editcache.Cache
	busy    Op
	pending *Confirmation
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Controller) { c.log = l }
}

// WithRecorder sets where workflow outcomes are recorded.
func WithRecorder(r activity.Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithNotices sets the board outcome messages are posted to.
func WithNotices(b *notice.Board) Option {
	return func(c *Controller) { c.notices = b }
}

// New creates a controller talking to api.
func New(api remote.API, opts ...Option) *Controller {
	c := &Controller{
		api:   api,
		log:   logrus.NewEntry(logrus.StandardLogger()).WithField("component", "staging"),
		rec:   activity.Nop{},
		now:   time.Now,
		store: jobstore.New(),
		edits: editcache.New(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.notices == nil {
		c.notices = notice.NewBoard(c.now)
	}
	return c
}

// begin marks op as the active blocking operation.
func (c *Controller) begin(op Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != OpNone {
		return ErrBusy
	}
	c.busy = op
	c.log.WithField("op", op).Debug("operation started")
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = OpNone
	c.mu.Unlock()
}

// Busy returns the active blocking operation, or OpNone.
func (c *Controller) Busy() Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Overlay returns the blocking message for the active operation, or "".
func (c *Controller) Overlay() string {
	return c.Busy().Message()
}

// Notices returns the board outcomes are posted to.
func (c *Controller) Notices() *notice.Board {
	return c.notices
}

// Jobs returns the dashboard projection.
func (c *Controller) Jobs() []model.ImportJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Jobs()
}

// Selected returns the selected job.
func (c *Controller) Selected() (model.ImportJob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Selected()
}

// Page returns the current row page of the selected job.
func (c *Controller) Page() model.RowPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Page()
}

// Row returns the last-known server copy of a row in the selected job.
func (c *Controller) Row(rowID string) (model.StagedRow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Row(rowID)
}

// Edits returns a copy of the unsaved edits keyed by row id.
func (c *Controller) Edits() map[string]model.Patch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edits.Snapshot()
}

// Edit returns the unsaved edit for one row.
func (c *Controller) Edit(rowID string) (model.Patch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edits.Get(rowID)
}

// HasUnsavedEdits reports whether any row has uncommitted changes.
func (c *Controller) HasUnsavedEdits() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edits.Len() > 0
}

// CanPromote reports whether promote is currently allowed.
func (c *Controller) CanPromote() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promoteGuard() == nil
}

// promoteGuard must be called with mu held.
func (c *Controller) promoteGuard() error {
	if c.busy != OpNone {
		return ErrBusy
	}
	job, ok := c.store.Selected()
	if !ok {
		return ErrNoJobSelected
	}
	if !job.Promotable() {
		return ErrNothingToPromote
	}
	return nil
}

func (c *Controller) selectedJob() (model.ImportJob, error) {
	job, ok := c.Selected()
	if !ok {
		return model.ImportJob{}, ErrNoJobSelected
	}
	return job, nil
}

// fail posts the user-facing message for err and records the outcome.
func (c *Controller) fail(action, jobID string, rows int, err error) {
	msg := remote.MessageOr(err, remote.GenericMessage)
	c.notices.Post(notice.Error, msg)
	c.log.WithFields(logrus.Fields{
		"action": action,
		"job_id": jobID,
	}).WithError(err).Warn("operation failed")
	c.record(action, jobID, rows, activity.OutcomeFailed, msg)
}

func (c *Controller) succeed(action, jobID string, rows int, msg string) {
	c.notices.Post(notice.Success, msg)
	c.log.WithFields(logrus.Fields{
		"action": action,
		"job_id": jobID,
		"rows":   rows,
	}).Info(msg)
	c.record(action, jobID, rows, activity.OutcomeOK, msg)
}

func (c *Controller) record(action, jobID string, rows int, outcome, details string) {
	err := c.rec.Record(activity.Entry{
		Timestamp: c.now().UTC(),
		Action:    action,
		JobID:     jobID,
		RowCount:  rows,
		Outcome:   outcome,
		Details:   details,
	})
	if err != nil {
		c.log.WithError(err).Warn("recording activity")
	}
}
