package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/charles-muller/AspNetSessionState/internal/store"
)

var flagProbe bool

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connectivity to the session database",
	Long: `Open a connection through the resilient command layer and run a
round-trip probe.

With --probe, additionally exercise the insert-if-absent path: create a
throwaway uninitialized session row and remove it again.`,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().BoolVar(&flagProbe, "probe", false, "Also create and remove a throwaway session row")
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	log := newLogger()
	settings, err := resolveSettings(log)
	if err != nil {
		return err
	}

	repo, err := newRepository(log, settings)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	start := time.Now()
	if err := repo.Ping(ctx); err != nil {
		return err
	}
	log.Info().
		Str("server", settings.Connection.Server).
		Str("database", settings.Connection.Database).
		Dur("elapsed", time.Since(start)).
		Msg("session database reachable")

	if flagProbe {
		// The probe ID is unguessable, so a stray row left behind by
		// an interrupted run cannot collide with a real session.
		probeID := "probe-" + uuid.NewString()
		result, err := repo.CreateUninitializedItem(ctx, probeID, time.Minute)
		if err != nil {
			return err
		}
		if err := repo.RemoveItem(ctx, probeID, 1); err != nil {
			return err
		}
		log.Info().
			Str("session_id", probeID).
			Bool("raced", result == store.AlreadyExists).
			Msg("probe session created and removed")
	}

	fmt.Println("ok")
	return nil
}
