package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/scene-state/internal/config"
	"github.com/pders01/scene-state/internal/identity"
	"github.com/pders01/scene-state/internal/saveable"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config and a sample scene catalog",
	Long: `Create the configuration file and a scene catalog to start from.

This command:
  - Creates a default config file if it doesn't exist
  - Creates the scene catalog directory with two sample scenes if it doesn't exist

Existing files are left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		configDir, err := configDirectory()
		if err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}
		configPath = filepath.Join(configDir, "config.toml")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		defaultConfig := fmt.Sprintf(`[storage]
data_dir = %q
save_file = "save.json"

[save]
pretty = true

[scenes]
catalog_dir = %q
startup = ["Main"]
load_delay = "0s"

[load]
timeout = "10s"

[log]
level = "info"
`, config.GetDataDir(), config.GetCatalogDir())

		if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		fmt.Printf("✓ Created default config: %s\n", configPath)
	} else {
		fmt.Printf("Config already exists: %s\n", configPath)
	}

	catalogDir := config.GetCatalogDir()
	if _, err := os.Stat(catalogDir); os.IsNotExist(err) {
		if err := writeSampleCatalog(catalogDir); err != nil {
			return err
		}
		fmt.Printf("✓ Created sample scene catalog: %s\n", catalogDir)
	} else {
		fmt.Printf("Scene catalog already exists: %s\n", catalogDir)
	}

	fmt.Println("\n✓ scenestate initialized successfully!")
	fmt.Println("  You can now use: scenestate save --scene Main")

	return nil
}

func writeSampleCatalog(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	mainScene := &scene.Definition{
		Name: "Main",
		Objects: []scene.ObjectDef{
			sampleObject("Player", saveable.Vec3{}),
			sampleObject("Camera", saveable.Vec3{Y: 2, Z: -5}),
		},
	}
	data, err := yaml.Marshal(mainScene)
	if err != nil {
		return fmt.Errorf("failed to encode sample scene: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Main.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write sample scene: %w", err)
	}

	second := &scene.Definition{
		Name: "Second",
		Objects: []scene.ObjectDef{
			sampleObject("Crate", saveable.Vec3{X: 3}),
		},
	}
	data, err = toml.Marshal(second)
	if err != nil {
		return fmt.Errorf("failed to encode sample scene: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Second.toml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write sample scene: %w", err)
	}

	return nil
}

func sampleObject(name string, pos saveable.Vec3) scene.ObjectDef {
	state := saveable.DefaultTransform()
	state.LocalPosition = pos
	return scene.ObjectDef{ID: identity.New(), Name: name, Transform: state}
}
