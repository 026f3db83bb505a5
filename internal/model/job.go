package model

// JobStatus is the lifecycle state of an import job as reported by the server.
type JobStatus string

const (
	JobPending            JobStatus = "PENDING"
	JobReadyToPromote     JobStatus = "READY_TO_PROMOTE"
	JobCorrectionRequired JobStatus = "CORRECTION_REQUIRED"
	JobPartialPromoted    JobStatus = "PARTIAL_PROMOTED"
	JobPromoted           JobStatus = "PROMOTED"
	JobCompleted          JobStatus = "COMPLETED"
	JobFailed             JobStatus = "FAILED"
)

// Valid reports whether s is one of the known job statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobReadyToPromote, JobCorrectionRequired, JobPartialPromoted,
		JobPromoted, JobCompleted, JobFailed:
		return true
	}
	return false
}

// ImportJob is one uploaded spreadsheet and its staging summary.
// Counters are copied from server responses only.
type ImportJob struct {
	JobID            string    `json:"jobId"`
	JobName          string    `json:"jobName,omitempty"`
	Status           JobStatus `json:"status"`
	TotalRows        int       `json:"totalRows"`
	ValidRows        int       `json:"validRows"`
	InvalidRows      int       `json:"invalidRows"`
	PromotedRows     int       `json:"promotedRows"`
	UploadedFileName string    `json:"uploadedFileName,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
}

// Promotable reports whether the job has any rows a promote call could move.
func (j ImportJob) Promotable() bool {
	return j.ValidRows > 0
}

// DisplayName returns the job name, falling back to the uploaded file name.
func (j ImportJob) DisplayName() string {
	if j.JobName != "" {
		return j.JobName
	}
	return j.UploadedFileName
}
