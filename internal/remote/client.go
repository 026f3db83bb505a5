package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ebotics/recon/internal/model"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client talks to the staging service REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the default HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the service at baseURL (e.g. "http://localhost:8089").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ API = (*Client)(nil)

func jobPath(jobID string, rest ...string) string {
	p := "/api/import-jobs/" + url.PathEscape(jobID)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// ListImportJobs returns every import job visible to the caller.
func (c *Client) ListImportJobs(ctx context.Context) ([]model.ImportJob, error) {
	var jobs []model.ImportJob
	if err := c.do(ctx, http.MethodGet, "/api/import-jobs", nil, "", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetImportJob returns one job summary.
func (c *Client) GetImportJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	var job model.ImportJob
	err := c.do(ctx, http.MethodGet, jobPath(jobID), nil, "", &job)
	return job, err
}

// GetImportJobRows returns one page of staged rows.
func (c *Client) GetImportJobRows(ctx context.Context, jobID string, q RowQuery) (model.RowPage, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))

	var page model.RowPage
	if err := c.do(ctx, http.MethodGet, jobPath(jobID, "rows")+"?"+v.Encode(), nil, "", &page); err != nil {
		return model.RowPage{}, err
	}
	// The service may omit page and size; fill them from the query.
	if page.Size == 0 {
		page.Page, page.Size = q.Page, q.Size
	}
	return page, nil
}

type uploadResponse struct {
	Job model.ImportJob `json:"job"`
}

// UploadImportFile stages a spreadsheet as a new job.
func (c *Client) UploadImportFile(ctx context.Context, req UploadRequest) (model.ImportJob, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", req.FileName)
	if err != nil {
		return model.ImportJob{}, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(req.Content); err != nil {
		return model.ImportJob{}, fmt.Errorf("building upload: %w", err)
	}
	if req.JobName != "" {
		if err := mw.WriteField("jobName", req.JobName); err != nil {
			return model.ImportJob{}, fmt.Errorf("building upload: %w", err)
		}
	}
	if req.DefaultAssigneeID != 0 {
		if err := mw.WriteField("defaultAssigneeId", strconv.FormatInt(req.DefaultAssigneeID, 10)); err != nil {
			return model.ImportJob{}, fmt.Errorf("building upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return model.ImportJob{}, fmt.Errorf("building upload: %w", err)
	}

	var resp uploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/import-jobs/upload", &body, mw.FormDataContentType(), &resp); err != nil {
		return model.ImportJob{}, err
	}
	return resp.Job, nil
}

// BulkUpdateStagedRows replaces the given rows and revalidates the job.
func (c *Client) BulkUpdateStagedRows(ctx context.Context, jobID string, rows []model.RowUpdate) (model.ImportJob, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return model.ImportJob{}, fmt.Errorf("marshaling rows: %w", err)
	}
	var job model.ImportJob
	err = c.do(ctx, http.MethodPut, jobPath(jobID, "rows"), bytes.NewReader(data), "application/json", &job)
	return job, err
}

// RevalidateImportJob re-runs validation without changing rows.
func (c *Client) RevalidateImportJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	var job model.ImportJob
	err := c.do(ctx, http.MethodPost, jobPath(jobID, "revalidate"), nil, "", &job)
	return job, err
}

// PromoteImportJob moves valid rows to the permanent store. A dry run
// reports what would be promoted without doing it.
func (c *Client) PromoteImportJob(ctx context.Context, jobID string, dryRun bool) (model.ImportJob, error) {
	var job model.ImportJob
	path := jobPath(jobID, "promote") + "?dryRun=" + strconv.FormatBool(dryRun)
	err := c.do(ctx, http.MethodPost, path, nil, "", &job)
	return job, err
}

// DeleteImportJob hard-deletes a job and all of its staged rows.
func (c *Client) DeleteImportJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, jobPath(jobID), nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("staging service: %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"request_id": reqID,
		}).WithError(err).Debug("staging request failed")
		return fmt.Errorf("staging service: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"request_id":  reqID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("staging request")

	if resp.StatusCode >= 400 {
		return parseError(resp, reqID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("staging service: %s %s: decode: %w", method, path, err)
	}
	return nil
}

func parseError(resp *http.Response, reqID string) error {
	body, _ := io.ReadAll(resp.Body)
	rerr := &Error{StatusCode: resp.StatusCode, RequestID: reqID}

	var eb ErrorBody
	if json.Unmarshal(body, &eb) == nil && (eb.Code != "" || eb.Message != "") {
		rerr.Code = eb.Code
		rerr.Message = eb.Message
	} else if strings.HasPrefix(strings.TrimSpace(resp.Header.Get("Content-Type")), "text/plain") {
		rerr.Message = strings.TrimSpace(string(body))
	}
	return rerr
}
