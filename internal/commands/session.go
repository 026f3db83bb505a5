package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/staging"
)

const sessionHelp = `Commands:
  jobs                         list import jobs
  open <jobID>                 select a job and show its first page
  page <n>                     show page n of the selected job
  rows                         show the current page again
  edit <rowID> field=value...  change fields locally (nothing is sent)
  discard <rowID>              drop the local changes for a row
  edits                        list rows with unsaved changes
  save <rowID> [field=value...] send one row for validation
  revalidate                   send all unsaved changes, or re-run validation
  preview                      show what promote would do
  promote                      promote valid rows (asks first)
  delete [jobID]               delete a job (asks first)
  upload <file> [name]         stage a new spreadsheet
  export [csv|xlsx]            download invalid rows
  status                       show the selected job
  help                         show this help
  quit                         leave the session`

func newSessionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Work on import jobs interactively, keeping edits between commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{
				app: a,
				c:   a.controller(),
				in:  bufio.NewScanner(cmd.InOrStdin()),
				out: cmd.OutOrStdout(),
			}
			return s.run(cmd.Context())
		},
	}
}

// session reads one command per line and drives a single controller, so
// local edits live for as long as the session does.
type session struct {
	app *app
	c   *staging.Controller
	in  *bufio.Scanner
	out io.Writer
}

var errQuit = errors.New("quit")

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, mutedStyle.Render(`recon session. Type "help" for commands.`))
	if err := runJobs(ctx, s.out, s.c); err != nil {
		s.printErr(err)
	}

	for {
		fmt.Fprint(s.out, accentStyle.Render("recon> "))
		if !s.in.Scan() {
			break
		}
		args, err := shlex.Split(s.in.Text())
		if err != nil {
			s.printErr(err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		seq := s.c.Notices().Seq()
		err = s.dispatch(ctx, args[0], args[1:])
		flushNotices(s.out, s.c.Notices())
		if errors.Is(err, errQuit) {
			return nil
		}
		// A failure that already posted a notice has been reported.
		if err != nil && s.c.Notices().Seq() == seq {
			s.printErr(err)
		}
	}
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("reading session input: %w", err)
	}
	fmt.Fprintln(s.out)
	s.warnUnsaved()
	return nil
}

func (s *session) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "help", "?":
		fmt.Fprintln(s.out, sessionHelp)
		return nil
	case "quit", "exit", "q":
		s.warnUnsaved()
		return errQuit
	case "jobs", "ls":
		return runJobs(ctx, s.out, s.c)
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <jobID>")
		}
		pending := len(s.c.Edits())
		if err := runShow(ctx, s.out, s.c, args[0], 1); err != nil {
			return err
		}
		s.reportDiscarded(pending)
		return nil
	case "page":
		if len(args) != 1 {
			return errors.New("usage: page <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page %q", args[0])
		}
		if _, err := s.c.LoadPage(ctx, n-1); err != nil {
			return err
		}
		printRows(s.out, s.c.Page(), s.c.Edits())
		return nil
	case "rows":
		if _, ok := s.c.Selected(); !ok {
			return staging.ErrNoJobSelected
		}
		printRows(s.out, s.c.Page(), s.c.Edits())
		return nil
	case "status":
		job, ok := s.c.Selected()
		if !ok {
			return staging.ErrNoJobSelected
		}
		printJob(s.out, job)
		if n := len(s.c.Edits()); n > 0 {
			fmt.Fprintln(s.out, warnStyle.Render(fmt.Sprintf("  %d rows with unsaved edits", n)))
		}
		return nil
	case "edit":
		if len(args) < 2 {
			return errors.New("usage: edit <rowID> field=value...")
		}
		p, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		if err := s.c.EditRow(args[0], p); err != nil {
			return err
		}
		fmt.Fprintln(s.out, mutedStyle.Render("Edit kept locally. Use save or revalidate to send it."))
		return nil
	case "discard":
		if len(args) != 1 {
			return errors.New("usage: discard <rowID>")
		}
		if !s.c.DiscardEdit(args[0]) {
			fmt.Fprintln(s.out, mutedStyle.Render("No unsaved edit for that row."))
		}
		return nil
	case "edits":
		printEdits(s.out, s.c.Edits())
		return nil
	case "save":
		if len(args) < 1 {
			return errors.New("usage: save <rowID> [field=value...]")
		}
		form, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		if _, err := s.c.SaveRow(ctx, args[0], form); err != nil {
			return err
		}
		printRows(s.out, s.c.Page(), s.c.Edits())
		return nil
	case "revalidate":
		job, err := s.c.RevalidateAll(ctx)
		if err != nil {
			return err
		}
		printJob(s.out, job)
		return nil
	case "preview":
		job, ok := s.c.Selected()
		if !ok {
			return staging.ErrNoJobSelected
		}
		preview, err := s.c.PreviewPromote(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Would promote %d rows; %d invalid rows would remain (%s).\n",
			job.ValidRows, preview.InvalidRows, preview.Status)
		return nil
	case "promote":
		if _, err := s.c.RequestPromote(); err != nil {
			return err
		}
		return s.settle(ctx)
	case "delete":
		jobID := ""
		if len(args) > 0 {
			jobID = args[0]
		}
		if _, err := s.c.RequestDelete(jobID); err != nil {
			return err
		}
		return s.settle(ctx)
	case "upload":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: upload <file> [name]")
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		pending := len(s.c.Edits())
		if err := runUpload(ctx, s.out, s.c, args[0], name, s.app.cfg.Upload.DefaultAssigneeID); err != nil {
			return err
		}
		s.reportDiscarded(pending)
		printRows(s.out, s.c.Page(), s.c.Edits())
		return nil
	case "export":
		format := intake.Format(s.app.cfg.Export.Format)
		if len(args) > 0 {
			format = intake.Format(strings.ToLower(args[0]))
		}
		_, err := s.c.DownloadInvalidRows(ctx, s.app.cfg.Export.Dir, format)
		if errors.Is(err, staging.ErrNoInvalidRows) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown command %q (try help)", name)
}

// settle asks for a typed "yes" before running the pending action.
func (s *session) settle(ctx context.Context) error {
	conf, ok := s.c.Pending()
	if !ok {
		return staging.ErrNoPendingConfirmation
	}
	fmt.Fprintln(s.out, boldStyle.Render(conf.Prompt))
	fmt.Fprintln(s.out, mutedStyle.Render(conf.Details))
	fmt.Fprint(s.out, "Type yes to continue: ")
	if !s.in.Scan() || !strings.EqualFold(strings.TrimSpace(s.in.Text()), "yes") {
		s.c.Cancel()
		fmt.Fprintln(s.out, mutedStyle.Render("Cancelled."))
		return nil
	}
	if err := s.c.Confirm(ctx); err != nil {
		return err
	}
	if job, ok := s.c.Selected(); ok {
		printJob(s.out, job)
	}
	return nil
}

func (s *session) warnUnsaved() {
	if n := len(s.c.Edits()); n > 0 {
		fmt.Fprintln(s.out, warnStyle.Render(fmt.Sprintf("⚠ %d unsaved edits will be discarded.", n)))
	}
}

// reportDiscarded tells the operator that a job switch dropped n edits.
func (s *session) reportDiscarded(n int) {
	if n > 0 {
		fmt.Fprintln(s.out, warnStyle.Render(fmt.Sprintf("⚠ %d unsaved edits were discarded.", n)))
	}
}

func (s *session) printErr(err error) {
	fmt.Fprintln(s.out, failStyle.Render("✗ "+err.Error()))
}
