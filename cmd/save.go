package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pders01/scene-state/internal/config"
	"github.com/spf13/cobra"
)

var (
	saveScenes []string
	saveActive string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Load scenes from the catalog and save their state",
	Long: `Load one or more scenes from the scene catalog and write the save file.

The first scene replaces anything loaded, the rest are added to it. Without
--scene the scenes listed in scenes.startup are used.

Examples:
  scenestate save --scene Main
  scenestate save --scene Main --scene Second --active Second`,
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringSliceVar(&saveScenes, "scene", []string{}, "Scene to load before saving (repeatable)")
	saveCmd.Flags().StringVar(&saveActive, "active", "", "Scene to make active before saving")
}

func runSave(cmd *cobra.Command, args []string) error {
	scenes := saveScenes
	if len(scenes) == 0 {
		scenes = config.GetStartupScenes()
	}
	if len(scenes) == 0 {
		return fmt.Errorf("no scenes to save (use --scene or set scenes.startup)")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	if err := rt.boot(ctx, scenes); err != nil {
		return err
	}

	if saveActive != "" {
		if err := rt.host.SetActiveScene(saveActive); err != nil {
			return fmt.Errorf("failed to set active scene: %w", err)
		}
	}

	if err := rt.manager.Save(ctx); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Saved %d scene(s) to %s\n", green("✓"), len(rt.host.LoadedScenes()), rt.manager.Path())
	fmt.Printf("  Active scene: %s\n", rt.host.ActiveScene())

	return nil
}
