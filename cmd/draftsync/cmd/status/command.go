// Package status implements the status command: the decisions a sync
// would take, without executing any of them.
package status

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

// NewCommand creates the status command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what a sync would do",
		Long: `Status compares the local collection against the remote platforms
and reports the action a sync would take for each document: create,
update, skip, or delete. No remote writes are performed.`,
		Example: `  draftsync status`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := app.Draftsync()
			if err != nil {
				return err
			}

			report, err := ds.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}
}
