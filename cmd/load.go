package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pders01/scene-state/internal/persist"
	"github.com/spf13/cobra"
)

var loadJSON bool

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Restore the saved scenes and objects",
	Long: `Read the save file, reload every recorded scene and restore each object
once all of them have loaded.

Objects are matched by save ID. Recorded objects with no live counterpart
are reported as missing.

Examples:
  scenestate load
  scenestate load --json`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "Output the load report as JSON")
}

// loadOutput is the --json shape of a load report.
type loadOutput struct {
	Path         string   `json:"path"`
	Scenes       []string `json:"scenes"`
	ActiveScene  string   `json:"active_scene"`
	Restored     int      `json:"restored"`
	Missing      []string `json:"missing,omitempty"`
	Failed       []string `json:"failed,omitempty"`
	Skipped      int      `json:"skipped,omitempty"`
	FailedScenes []string `json:"failed_scenes,omitempty"`
}

func runLoad(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	pending, ok := rt.manager.Load(ctx)
	if !ok {
		return fmt.Errorf("failed to load %s", rt.manager.Path())
	}

	report, err := waitForLoad(ctx, pending)
	if err != nil {
		return fmt.Errorf("load did not complete: %w", err)
	}

	if loadJSON {
		out := loadOutput{
			Path:         pending.Path(),
			Scenes:       rt.host.LoadedScenes(),
			ActiveScene:  rt.host.ActiveScene(),
			Restored:     report.Restored,
			Missing:      report.Missing,
			Failed:       report.Failed,
			Skipped:      report.Skipped,
			FailedScenes: report.FailedScenes,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(outWriter(cmd), string(data))
		return nil
	}

	printReport(rt, pending, report)
	return nil
}

func printReport(rt *runtime, pending *persist.Pending, report persist.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("%s Loaded %s\n", green("✓"), pending.Path())
	fmt.Printf("  Scenes: %v (active: %s)\n", rt.host.LoadedScenes(), rt.host.ActiveScene())
	fmt.Printf("  Restored: %d object(s)\n", report.Restored)

	if report.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "%s %d recorded object(s) had no save ID\n", yellow("Warning:"), report.Skipped)
	}
	for _, id := range report.Missing {
		fmt.Fprintf(os.Stderr, "%s object %s is not present in the loaded scenes\n", yellow("Warning:"), id)
	}
	for _, id := range report.Failed {
		fmt.Fprintf(os.Stderr, "%s object %s could not be restored\n", yellow("Warning:"), id)
	}
	for _, name := range report.FailedScenes {
		fmt.Fprintf(os.Stderr, "%s scene %s failed to load\n", yellow("Warning:"), name)
	}
	if report.ActiveSceneErr != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", yellow("Warning:"), report.ActiveSceneErr)
	}
}
