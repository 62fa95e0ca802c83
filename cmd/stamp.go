package cmd

import (
	"fmt"

	"github.com/pders01/scene-state/internal/config"
	"github.com/spf13/cobra"
)

var stampCmd = &cobra.Command{
	Use:   "stamp",
	Short: "Write stable save IDs into scene files",
	Long: `Assign a save ID to every catalog object that lacks one and write it back
into its scene file.

Objects without a stored ID get a fresh one each run, so a save taken
before stamping cannot be matched against them afterwards.`,
	RunE: runStamp,
}

func init() {
	rootCmd.AddCommand(stampCmd)
}

func runStamp(cmd *cobra.Command, args []string) error {
	fs, catalog, err := openCatalog(config.GetCatalogDir())
	if err != nil {
		return err
	}

	written, err := catalog.Stamp(fs)
	for _, path := range written {
		fmt.Printf("✓ Stamped %s\n", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stamp scene files: %w", err)
	}

	if len(written) == 0 {
		fmt.Println("All scene files already carry save IDs")
	}
	return nil
}
