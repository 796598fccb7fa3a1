package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glefebvre/catalog-console/internal/config"
	"github.com/glefebvre/catalog-console/internal/database"
	"github.com/spf13/cobra"
)

var pruneStatesCmd = &cobra.Command{
	Use:   "prune-states",
	Short: "Remove idle console session states",
	Long: `Remove console session states that were not saved within the retention period
(default: state.ttl_hours).

States are left behind when operators close the browser without signing out.
The serve command prunes them on a schedule; this command does it once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		cfg := config.Get()
		if olderThan <= 0 {
			olderThan = cfg.StateTTL()
		}

		fmt.Println("=== Console State Prune ===")
		if dryRun {
			fmt.Println("Mode: DRY RUN (no states will be deleted)")
		}
		fmt.Printf("Backend: %s\n", cfg.State.Backend)
		fmt.Printf("Retention: %s\n\n", olderThan)

		if err := database.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()

		backend, err := openStateBackend(cfg)
		if err != nil {
			return err
		}
		if backend.close != nil {
			defer backend.close()
		}

		count, err := backend.store.Prune(cmd.Context(), olderThan, dryRun)
		if err != nil {
			return fmt.Errorf("error during prune: %w", err)
		}

		cutoff := time.Now().Add(-olderThan)
		if dryRun {
			fmt.Printf("%s states idle since before %s would be removed\n", humanize.Comma(count), humanize.Time(cutoff))
		} else {
			fmt.Printf("Removed %s states idle since before %s\n", humanize.Comma(count), humanize.Time(cutoff))
		}

		fmt.Println("\nPrune complete!")
		return nil
	},
}

func init() {
	pruneStatesCmd.Flags().Bool("dry-run", false, "count idle states without deleting them")
	pruneStatesCmd.Flags().Duration("older-than", 0, "retention period (default state.ttl_hours)")
}
