package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/notice"
)

// Ayu palette, adaptive light/dark.
var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

func jobStatusStyle(s model.JobStatus) lipgloss.Style {
	switch s {
	case model.JobReadyToPromote, model.JobPromoted, model.JobCompleted:
		return passStyle
	case model.JobCorrectionRequired, model.JobPartialPromoted:
		return warnStyle
	case model.JobFailed:
		return failStyle
	}
	return mutedStyle
}

func rowStatusStyle(r model.StagedRow) lipgloss.Style {
	switch {
	case r.Invalid():
		return failStyle
	case r.RowStatus == model.RowValid:
		return passStyle
	case r.RowStatus == model.RowPromoted:
		return accentStyle
	}
	return mutedStyle
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func writeHeader(w io.Writer, cols ...string) {
	for i, c := range cols {
		cols[i] = boldStyle.Render(c)
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func printJobs(out io.Writer, jobs []model.ImportJob) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No import jobs."))
		return
	}
	w := newTable(out)
	writeHeader(w, "JOB", "NAME", "STATUS", "TOTAL", "VALID", "INVALID", "PROMOTED", "CREATED")
	for _, j := range jobs {
		created := j.CreatedAt.Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			j.JobID, j.DisplayName(), jobStatusStyle(j.Status).Render(string(j.Status)),
			j.TotalRows, j.ValidRows, j.InvalidRows, j.PromotedRows, created)
	}
	w.Flush()
}

func printJob(out io.Writer, j model.ImportJob) {
	fmt.Fprintf(out, "%s %s  %s\n", boldStyle.Render(j.DisplayName()), mutedStyle.Render("("+j.JobID+")"),
		jobStatusStyle(j.Status).Render(string(j.Status)))
	fmt.Fprintf(out, "  total %d  valid %s  invalid %s  promoted %d\n",
		j.TotalRows,
		passStyle.Render(fmt.Sprint(j.ValidRows)),
		failStyle.Render(fmt.Sprint(j.InvalidRows)),
		j.PromotedRows)
}

// printRows renders a page of rows. Rows with a pending local edit are
// marked with "*".
func printRows(out io.Writer, page model.RowPage, edits map[string]model.Patch) {
	w := newTable(out)
	writeHeader(w, "ROW", "ID", "STATUS", "CHECK #", "DEPOSITED", "AMOUNT", "PAYER", "ERRORS")
	for _, r := range page.Items {
		mark := ""
		if _, ok := edits[r.StagingCheckID]; ok {
			mark = warnStyle.Render("*")
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SheetRowNumber, mark, r.StagingCheckID,
			rowStatusStyle(r).Render(string(r.RowStatus)),
			r.CheckNumber, r.DateOfDeposit, r.CheckAmount.StringFixed(2), r.Payer,
			failStyle.Render(strings.Join(r.ValidationErrors, "; ")))
	}
	w.Flush()
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d rows",
		page.Page+1, max(page.TotalPages, 1), page.TotalElements)))
}

func printEdits(out io.Writer, edits map[string]model.Patch) {
	if len(edits) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No unsaved edits."))
		return
	}
	w := newTable(out)
	writeHeader(w, "ID", "FIELDS")
	for _, id := range slices.Sorted(maps.Keys(edits)) {
		p := edits[id]
		names := make([]string, 0, len(p.Fields()))
		for _, f := range p.Fields() {
			names = append(names, string(f))
		}
		fmt.Fprintf(w, "%s\t%s\n", id, strings.Join(names, ", "))
	}
	w.Flush()
}

func renderNotice(n notice.Notice) string {
	switch n.Level {
	case notice.Success:
		return passStyle.Render("✓ " + n.Message)
	case notice.Error:
		return failStyle.Render("✗ " + n.Message)
	}
	return accentStyle.Render("ℹ " + n.Message)
}

// flushNotices prints and dismisses every active notice.
func flushNotices(out io.Writer, b *notice.Board) {
	for _, n := range b.Active() {
		fmt.Fprintln(out, renderNotice(n))
		b.Dismiss(n.ID)
	}
}
