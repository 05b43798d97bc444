package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"deck-sync/feature/decks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	removeObsolete bool
	yesConfirm     bool
)

// syncCmd runs one manual sync round and waits for it.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync round now",
	Long: `Runs one manual sync round over every configured source and prints its statistics.

With --remove-obsolete, records that no source produced this round are deleted
after confirmation. Deletion is skipped when the round had any error.

Examples:
  # Create and update records only
  sync

  # Also remove obsolete records (with interactive confirmation)
  sync --remove-obsolete

  # Remove obsolete records without a prompt
  sync --remove-obsolete --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&removeObsolete, "remove-obsolete", false, "Delete records no source produced, after confirmation")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	l := a.logger
	defer l.Sync()

	coordinator := a.coordinator(decks.LogNotifier{Logger: l})

	var round *decks.Round
	if removeObsolete {
		confirm := decks.ConfirmFunc(func(_ context.Context, count int) bool {
			l.Warn("Obsolete records found", zap.Int("count", count))
			return confirmDestructiveAction(os.Stdin, count)
		})
		round, err = coordinator.StartManualWithCleanup(ctx, confirm)
	} else {
		round, err = coordinator.StartManual(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}

	report := round.Wait()
	a.runner.Wait()
	printRoundReport(l, report)

	if !report.Succeeded() {
		return fmt.Errorf("%s", report.Err)
	}
	if removeObsolete && report.PendingDeletions > 0 && !report.Confirmed {
		l.Warn("Deletion cancelled. No records were removed.")
	}
	return nil
}

// printRoundReport prints a formatted round report using logger.
// A failed round only prints its errors.
func printRoundReport(l *zap.Logger, r decks.RoundReport) {
	if r.Succeeded() {
		l.Info("Sync report",
			zap.String("round_id", r.ID),
			zap.Int("sources", r.Sources),
			zap.Int("processed", r.Stats.Processed),
			zap.Int("created", r.Stats.Created),
			zap.Int("updated", r.Stats.Updated),
			zap.Int("deleted", r.Stats.Deleted),
			zap.Int("pending_deletions", r.PendingDeletions),
			zap.Duration("took", r.FinishedAt.Sub(r.StartedAt)),
		)
	} else {
		l.Error("Sync failed", zap.String("round_id", r.ID), zap.String("error", r.Err))
	}

	// Show a sample of errors (max 5 for logger)
	maxShow := min(5, len(r.Stats.Errors))
	for _, msg := range r.Stats.Errors[:maxShow] {
		l.Error("Sync error", zap.String("error", msg))
	}
	if len(r.Stats.Errors) > maxShow {
		l.Info("Additional errors not shown", zap.Int("count", len(r.Stats.Errors)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, count int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to delete %d record(s): ", count)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
