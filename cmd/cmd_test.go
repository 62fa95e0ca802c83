package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pders01/scene-state/internal/config"
	"github.com/pders01/scene-state/internal/models"
	"github.com/pders01/scene-state/internal/persist"
	"github.com/spf13/viper"
)

// setupWorkspace points the global config at a fresh temporary directory
// and writes the default config and sample catalog into it.
func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())
	viper.Set("storage.data_dir", filepath.Join(dir, "data"))
	viper.Set("scenes.catalog_dir", filepath.Join(dir, "scenes"))
	viper.Set("log.level", "error")

	oldCfg, oldQuiet := cfgFile, quiet
	cfgFile = filepath.Join(dir, "config.toml")
	quiet = true
	t.Cleanup(func() {
		cfgFile, quiet = oldCfg, oldQuiet
	})

	// Reset flags
	saveScenes = []string{}
	saveActive = ""
	loadJSON = false
	inspectJSON = false
	inspectToon = false
	listJSON = false
	listToon = false

	if err := runInit(nil, []string{}); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	return dir
}

// inspectFile validates the save file at path and summarizes it.
func inspectFile(t *testing.T, path string) *models.Summary {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read save file: %v", err)
	}
	summary, err := persist.Inspect(path, data)
	if err != nil {
		t.Fatalf("invalid save file: %v", err)
	}
	return summary
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}
