package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		userID  int
		out     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored attempts as CSV",
		Long:  "Runs an export job in-process and writes the CSV. --user 0 exports every learner.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()

			exports := service.NewExportService(repository.NewAttemptRepository(e.pool), e.rdb, e.cfg.ExportTTL, e.log)
			job, err := exports.Start(ctx, userID)
			if err != nil {
				return err
			}

			// The server's export worker may pick the job too; Build is
			// run here so the command works without one.
			go func() {
				buildCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := exports.Build(buildCtx, job.ID); err != nil {
					e.log.Error().Err(err).Str("job_id", job.ID).Msg("Export build failed")
				}
			}()

			done, err := exports.WaitReady(ctx, job.ID, 200*time.Millisecond, timeout)
			if err != nil {
				return err
			}
			body, err := exports.Download(ctx, job.ID, userID, true)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d attempts to %s\n", done.Rows, out)
			return nil
		},
	}

	cmd.Flags().IntVar(&userID, "user", 0, "learner id, 0 for all")
	cmd.Flags().StringVarP(&out, "out", "o", "attempts.csv", "output file, - for stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for the export")
	return cmd
}
