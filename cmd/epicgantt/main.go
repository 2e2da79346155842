package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/h0rv/epicgantt/internal/auth"
	"github.com/h0rv/epicgantt/internal/config"
	"github.com/h0rv/epicgantt/internal/logger"
	"github.com/h0rv/epicgantt/internal/report"
	"github.com/h0rv/epicgantt/internal/runner"
	"github.com/h0rv/epicgantt/internal/tracker"
	"github.com/spf13/cobra"
)

// runFailure marks errors raised after the arguments were accepted. Anything
// else returned by Execute is a usage error.
type runFailure struct{ err error }

func (e *runFailure) Error() string { return e.err.Error() }
func (e *runFailure) Unwrap() error { return e.err }

// runArgs are the validated positional arguments of the run command.
type runArgs struct {
	projectID int64
	mode      report.Mode
	extraFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var failure *runFailure
		if errors.As(err, &failure) {
			return 1
		}
		return -1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "epicgantt",
		Short: "Epic timelines from Pivotal Tracker",
		Long: `epicgantt reads a Pivotal Tracker project and reports when each epic
started, how far along it is and when it is due to finish.

Authentication:
  1. Environment variable: set PIVOTAL_TRACKER_TOKEN (a .env file is read too)
  2. Credentials file: PIVOTAL_TRACKER_TOKEN=... in ~/.epicgantt.env

Settings can be overridden with EPICGANTT_* variables or an epicgantt.yaml
in the working directory.`,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.New("missing command, see 'epicgantt run --help'")
		},
	}
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(stdout, stderr))
	return root
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run <projectId> <puml|text> [extraFile]",
		Short: "Render the epic timeline of a project",
		Long: `Render the epic timeline of a project to stdout.

  puml  PlantUML Gantt chart
  text  markdown status report

The optional extraFile is appended verbatim to the output, before @endgantt
in Gantt mode. Epics whose description contains *SKIP_GANTT* or *SKIP_TEXT*
are left out of the corresponding report.`,
		Args: cobra.MatchAll(cobra.RangeArgs(2, 3), func(_ *cobra.Command, args []string) error {
			_, err := parseRunArgs(args)
			return err
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseRunArgs(args)
			if err != nil {
				return err
			}
			extra, err := readExtra(parsed.extraFile)
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true
			if err := run(cmd.Context(), parsed, extra, stdout, stderr); err != nil {
				return &runFailure{err: err}
			}
			return nil
		},
	}
}

func parseRunArgs(args []string) (runArgs, error) {
	projectID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || projectID <= 0 {
		return runArgs{}, fmt.Errorf("invalid project id %q", args[0])
	}
	mode, err := report.ParseMode(args[1])
	if err != nil {
		return runArgs{}, err
	}

	parsed := runArgs{projectID: projectID, mode: mode}
	if len(args) > 2 {
		parsed.extraFile = args[2]
	}
	return parsed, nil
}

func readExtra(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read extra file: %w", err)
	}
	return string(b), nil
}

func run(ctx context.Context, args runArgs, extra string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.InitWithWriter(stderr, cfg.LogLevel, cfg.LogJSON)
	ctx = logger.WithRunID(ctx, uuid.NewString())

	token, err := auth.GetToken()
	if err != nil {
		return err
	}

	client := tracker.New(cfg, token)
	return runner.New(client, cfg, stdout, stderr).Run(ctx, runner.Request{
		ProjectID: args.projectID,
		Mode:      args.mode,
		Extra:     extra,
	})
}
