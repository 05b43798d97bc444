package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage and the record database",
	Long:  `Checks the bucket structure, export archives, note media and database schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix bucket structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false, false)
	},
}

// archivesCmd represents the integrity archives command
var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "Check that every source has an export archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false, false)
	},
}

// mediaCmd represents the integrity media command
var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Find and remove orphaned media",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true, false)
	},
}

// serverCmd represents the integrity server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Check the record database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, archivesCmd, mediaCmd, serverCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and missing folders")
	mediaCmd.Flags().BoolVar(&fixFlag, "fix", false, "Remove orphaned media (asks for confirmation)")
	mediaCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	integrityCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Save the combined report as JSON")
}

func runIntegrityChecks(ctx context.Context, runStructure, runArchives, runMedia, runServer bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	logg := a.logger
	svc := a.integrity()
	report := make(map[string]any)

	if runStructure {
		logg.Info("Checking bucket structure...")
		if fixFlag {
			fixed, err := svc.FixStructure(ctx)
			if err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			logg.Info("Structure fixed", zap.Strings("created", fixed))
			report["structure"] = map[string]any{"fixed": fixed}
		} else {
			missing, err := svc.CheckStructure(ctx)
			if err != nil {
				return fmt.Errorf("structure check failed: %w", err)
			}
			if len(missing) == 0 {
				logg.Info("Structure is intact.")
			} else {
				logg.Warn("Missing folders detected", zap.Strings("missing", missing))
				logg.Info("Run 'integrity structure --fix' to create them.")
			}
			report["structure"] = map[string]any{"missing": missing}
		}
	}

	if runArchives {
		logg.Info("Checking export archives...")
		archives, err := svc.CheckArchives(ctx)
		if err != nil {
			return fmt.Errorf("archive check failed: %w", err)
		}
		if len(archives.Missing) == 0 {
			logg.Info("Every source has an export archive.", zap.Int("sources", archives.Expected))
		} else {
			logg.Warn("Missing export archives", zap.Strings("sources", archives.Missing))
		}
		report["archives"] = archives
	}

	if runMedia {
		logg.Info("Checking note media...")
		orphans, err := svc.CheckMedia(ctx)
		if err != nil {
			return fmt.Errorf("media check failed: %w", err)
		}
		if len(orphans) == 0 {
			logg.Info("No orphaned media.")
		} else {
			logg.Warn("Orphaned media detected", zap.Int("count", len(orphans)))
			if fixFlag && confirmDestructiveAction(os.Stdin, len(orphans)) {
				if orphans, err = svc.FixMedia(ctx); err != nil {
					return fmt.Errorf("failed to remove orphaned media: %w", err)
				}
				logg.Info("Orphaned media removed", zap.Int("count", len(orphans)))
			}
		}
		report["media"] = map[string]any{"orphans": orphans}
	}

	if runServer {
		logg.Info("Checking record database schema...")
		srv, err := svc.CheckServer()
		if err != nil {
			logg.Error("Server schema check failed", zap.Error(err))
		} else if srv.Matched {
			logg.Info("Schema matches the store models.", zap.String("driver", srv.Driver))
		} else {
			logg.Warn("Schema mismatches found", zap.String("driver", srv.Driver))
			for table, tbl := range srv.Tables {
				if tbl.Status == "ok" {
					continue
				}
				if len(tbl.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
				}
				if len(tbl.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
				}
			}
			for _, e := range srv.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
		report["server"] = srv
	}

	if jsonFlag {
		filename := fmt.Sprintf("integrity_%d.json", time.Now().Unix())
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to save JSON file: %w", err)
		}
		logg.Info("Detailed JSON report saved", zap.String("file", filename))
	}

	logg.Info("Integrity checks completed", zap.Duration("execution_time", time.Since(startTime)))
	return nil
}
