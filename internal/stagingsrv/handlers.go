package stagingsrv

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/model"
)

type uploadResponse struct {
	Job model.ImportJob `json:"job"`
}

func (s *Server) handleListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) handleGetJob(c echo.Context) error {
	job, err := s.store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return newBadRequestError("MISSING_FILE", "a spreadsheet must be sent in the \"file\" field")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var assignee int64
	if raw := strings.TrimSpace(c.FormValue("defaultAssigneeId")); raw != "" {
		assignee, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || assignee < 0 {
			return newBadRequestError("VALIDATION_ERROR", "defaultAssigneeId must be a whole number")
		}
	}

	table, _, err := intake.ReadTable(data, fh.Filename)
	if err != nil {
		if errors.Is(err, intake.ErrUnsupportedFormat) {
			return newBadRequestError("UNSUPPORTED_FORMAT", err.Error())
		}
		return newBadRequestError("UNREADABLE_FILE", "the file could not be read: "+err.Error())
	}
	rows, err := parseTable(table, assignee)
	if err != nil {
		var missing *intake.MissingColumnsError
		if errors.As(err, &missing) {
			return newBadRequestError("MISSING_COLUMNS", err.Error())
		}
		return err
	}

	name := strings.TrimSpace(c.FormValue("jobName"))
	if name == "" {
		name = strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	}
	job := s.store.Create(name, fh.Filename, rows)
	s.log.WithFields(logrus.Fields{
		"job_id": job.JobID,
		"rows":   job.TotalRows,
		"status": job.Status,
	}).Info("job staged")
	return c.JSON(http.StatusCreated, uploadResponse{Job: job})
}

func (s *Server) handleGetRows(c echo.Context) error {
	page, err := intParam(c, "page", 0)
	if err != nil || page < 0 {
		return newBadRequestError("VALIDATION_ERROR", "page must be a non-negative number")
	}
	size, err := intParam(c, "size", defaultPageSize)
	if err != nil || size < 1 || size > maxPageSize {
		return newBadRequestError("VALIDATION_ERROR", "size must be between 1 and "+strconv.Itoa(maxPageSize))
	}
	p, err := s.store.Rows(c.Param("id"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateRows(c echo.Context) error {
	var updates []model.RowUpdate
	if err := json.NewDecoder(c.Request().Body).Decode(&updates); err != nil {
		return newBadRequestError("BAD_REQUEST", "body must be a JSON array of rows")
	}
	if len(updates) == 0 {
		return newBadRequestError("VALIDATION_ERROR", "at least one row is required")
	}
	job, err := s.store.Update(c.Param("id"), updates)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleRevalidate(c echo.Context) error {
	job, err := s.store.Revalidate(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handlePromote(c echo.Context) error {
	dryRun, _ := strconv.ParseBool(c.QueryParam("dryRun"))
	job, err := s.store.Promote(c.Param("id"), dryRun)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleDeleteJob(c echo.Context) error {
	if err := s.store.Delete(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
