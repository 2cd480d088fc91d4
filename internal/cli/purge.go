package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired session rows",
	Long: `Run the expired-session cleanup procedure once and report how many
rows were deleted. Intended for schedulers that replace the in-process
expiry timer.`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) error {
	log := newLogger()
	settings, err := resolveSettings(log)
	if err != nil {
		return err
	}

	repo, err := newRepository(log, settings)
	if err != nil {
		return err
	}

	deleted, err := repo.DeleteExpiredSessions(cmd.Context())
	if err != nil {
		return err
	}

	log.Info().Int64("deleted", deleted).Msg("expired sessions purged")
	fmt.Printf("deleted %d expired sessions\n", deleted)
	return nil
}
