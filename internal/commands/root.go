package commands

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/activity"
	"github.com/ebotics/recon/internal/buildinfo"
	"github.com/ebotics/recon/internal/config"
	"github.com/ebotics/recon/internal/logging"
	"github.com/ebotics/recon/internal/remote"
	"github.com/ebotics/recon/internal/staging"
	"github.com/ebotics/recon/internal/telemetry"
)

// app carries the resolved configuration and collaborators shared by
// every subcommand.
type app struct {
	cfgPath  string
	baseURL  string
	token    string
	logLevel string

	cfg *config.Config
	log *logrus.Logger
	api remote.API
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "recon",
		Short:   "Stage, correct and promote bulk check imports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			telemetry.Shutdown(ctx)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", config.FileName, "path to recon.yaml")
	pf.StringVar(&a.baseURL, "base-url", "", "staging service URL (overrides config)")
	pf.StringVar(&a.token, "token", "", "bearer token for the staging service (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(a),
		newCheckCommand(),
		newTemplateCommand(a),
		newJobsCommand(a),
		newShowCommand(a),
		newUploadCommand(a),
		newSaveCommand(a),
		newRevalidateCommand(a),
		newPromoteCommand(a),
		newDeleteCommand(a),
		newExportInvalidCommand(a),
		newActivityCommand(a),
		newSessionCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

// setup resolves config (file, .env, environment, then flags) and builds
// the logger and the staging service client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.cfgPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.Server.BaseURL = a.baseURL
	}
	if a.token != "" {
		cfg.Server.Token = a.token
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	err = telemetry.Init(cmd.Context(), telemetry.Config{
		Enabled: cfg.Telemetry.Enabled,
		Stdout:  cfg.Telemetry.Stdout,
		Out:     cmd.ErrOrStderr(),
	}, "recon", buildinfo.Version)
	if err != nil {
		return err
	}

	client := remote.NewClient(cfg.Server.BaseURL,
		remote.WithToken(cfg.Server.Token),
		remote.WithTimeout(cfg.Server.Timeout),
		remote.WithLogger(logging.Component(log, "remote")),
	)

	a.cfg = cfg
	a.log = log
	a.api = telemetry.WrapAPI(client)
	return nil
}

func (a *app) recorder() activity.Recorder {
	if a.cfg.Activity.Path == "" {
		return activity.Nop{}
	}
	return activity.NewFileRecorder(a.cfg.Activity.Path)
}

func (a *app) controller() *staging.Controller {
	return staging.New(a.api,
		staging.WithLogger(logging.Component(a.log, "staging")),
		staging.WithRecorder(a.recorder()),
	)
}
