// Package sync implements the sync command: one full reconciliation
// pass over the local document collection.
package sync

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/draftsync/draftsync"
)

// AppContext provides the app dependencies the command needs.
type AppContext interface {
	Logger() *zerolog.Logger
	Draftsync(extra ...draftsync.Option) (draftsync.Draftsync, error)
}

// NewCommand creates the sync command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local documents against all enabled platforms",
		Long: `Sync scans the local markdown collection and reconciles every
document against every enabled platform: unmatched documents are
created, changed documents are updated, unchanged documents are
skipped, and remote articles with no local counterpart are deleted.

The command exits non-zero when any document failed on any platform.
Failures are isolated: one failing document never blocks the rest of
the run.`,
		Example: `  draftsync sync                # Full reconciliation
  draftsync sync --dry-run      # Preview without writes
  draftsync sync -v             # Debug logging`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := app.Draftsync()
			if err != nil {
				return err
			}

			report, err := ds.Sync(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report)
			if report.HasFailures() {
				return fmt.Errorf("%d of %d outcomes failed", failures(report), len(report.Results()))
			}
			return nil
		},
	}
}

func failures(report *draftsync.Report) int {
	n := 0
	for _, r := range report.Results() {
		if r.Failed() {
			n++
		}
	}
	return n
}
