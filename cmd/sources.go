package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"deck-sync/core/config"
	"deck-sync/feature/decks/extract"

	"github.com/spf13/cobra"
)

// sourceView is one line of the sources listing.
type sourceView struct {
	SourceID         string `json:"source_id"`
	TargetCollection string `json:"target_collection"`
	Recursive        bool   `json:"recursive"`
	Archive          string `json:"archive"`
}

// sourcesCmd prints the configured sources after normalization.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured sources",
	Long:  `Validates the sync configuration and prints every source with its normalized id, target collection and archive key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		settings, err := cfg.Sync.Settings()
		if err != nil {
			return err
		}

		keys := extract.NewExtractor(nil, cfg.Storage.Bucket, cfg.Sync.ExportPrefix, nil)
		views := make([]sourceView, 0, len(settings.Sources))
		for _, spec := range settings.Sources {
			views = append(views, sourceView{
				SourceID:         spec.SourceID,
				TargetCollection: spec.TargetCollection,
				Recursive:        spec.Recursive,
				Archive:          keys.ObjectKey(spec.SourceID),
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	},
}

func init() {
	RootCmd.AddCommand(sourcesCmd)
}
