package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/scene-state/internal/config"
	"github.com/spf13/cobra"
)

var (
	listJSON bool
	listToon bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenes in the scene catalog",
	Long: `List every scene the catalog directory defines, with its file and the
number of objects it places.

Examples:
  scenestate list
  scenestate list --catalog ./levels --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output as Toon")
}

type sceneInfo struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	Objects   int    `json:"objects"`
	Unstamped bool   `json:"unstamped"`
}

func runList(cmd *cobra.Command, args []string) error {
	_, catalog, err := openCatalog(config.GetCatalogDir())
	if err != nil {
		return err
	}

	unstamped := catalog.Unstamped()
	var scenes []sceneInfo
	for _, name := range catalog.Names() {
		def, _ := catalog.Scene(name)
		scenes = append(scenes, sceneInfo{
			Name:      name,
			File:      def.Path(),
			Objects:   len(def.Objects),
			Unstamped: slices.Contains(unstamped, name),
		})
	}

	if listJSON {
		output, err := json.MarshalIndent(scenes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if listToon {
		output, err := gotoon.Encode(scenes)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(scenes) == 0 {
		fmt.Println("No scenes found")
		return nil
	}

	fmt.Printf("Found %d scene(s):\n\n", len(scenes))
	for _, s := range scenes {
		fmt.Printf("  %s\n", s.Name)
		fmt.Printf("    File:    %s\n", s.File)
		fmt.Printf("    Objects: %d\n", s.Objects)
		fmt.Println()
	}

	if len(unstamped) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d scene file(s) have objects without a save ID: %v\n", len(unstamped), unstamped)
		fmt.Fprintln(os.Stderr, "Run 'scenestate stamp' to write stable IDs into them.")
	}

	return nil
}
