package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/scene-state/internal/config"
	"github.com/pders01/scene-state/internal/persist"
	"github.com/pders01/scene-state/internal/storage"
	"github.com/spf13/cobra"
)

var (
	inspectJSON bool
	inspectToon bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show what a save file contains",
	Long: `Validate a save file and display its scenes and recorded objects.

Without an argument the configured save file in the data directory is used.

Examples:
  scenestate inspect
  scenestate inspect ./backup.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	inspectCmd.Flags().BoolVar(&inspectToon, "toon", false, "Output as Toon")
}

func runInspect(cmd *cobra.Command, args []string) error {
	store, err := storage.NewOS(config.GetDataDir())
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	path := store.ResolvePath(config.GetSaveFile())
	if len(args) == 1 {
		if path, err = filepath.Abs(args[0]); err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	data, err := store.ReadAll(path)
	if err != nil {
		return fmt.Errorf("failed to read save file: %w", err)
	}

	summary, err := persist.Inspect(path, data)
	if err != nil {
		return fmt.Errorf("invalid save file: %w", err)
	}

	if inspectJSON {
		output, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if inspectToon {
		output, err := gotoon.Encode(summary)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("Save file: %s\n\n", summary.Path)
	fmt.Printf("Active scene: %s\n", summary.ActiveScene)
	fmt.Printf("Scenes:       %s\n", strings.Join(summary.Scenes, ", "))
	fmt.Printf("Objects:      %d\n", len(summary.Objects))

	for _, obj := range summary.Objects {
		id := obj.SaveID
		if id == "" {
			id = "(no save ID)"
		}
		fmt.Printf("  %-36s  %s\n", id, strings.Join(obj.Fields, ", "))
	}

	return nil
}
