package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestSaveCommand(t *testing.T) {
	dir := setupWorkspace(t)

	saveScenes = []string{"Main", "Second"}
	saveActive = "Second"

	if err := runSave(nil, []string{}); err != nil {
		t.Fatalf("save command failed: %v", err)
	}

	summary := inspectFile(t, filepath.Join(dir, "data", "save.json"))
	if summary.ActiveScene != "Second" {
		t.Errorf("expected active scene Second, got %s", summary.ActiveScene)
	}
	if diff := cmp.Diff([]string{"Main", "Second"}, summary.Scenes); diff != "" {
		t.Errorf("scenes mismatch (-want +got):\n%s", diff)
	}
	if len(summary.Objects) != 3 {
		t.Errorf("expected 3 objects, got %d", len(summary.Objects))
	}
}

func TestSaveUsesStartupScenes(t *testing.T) {
	dir := setupWorkspace(t)
	viper.Set("scenes.startup", []string{"Second"})

	if err := runSave(nil, []string{}); err != nil {
		t.Fatalf("save command failed: %v", err)
	}

	summary := inspectFile(t, filepath.Join(dir, "data", "save.json"))
	if diff := cmp.Diff([]string{"Second"}, summary.Scenes); diff != "" {
		t.Errorf("scenes mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveWithoutScenes(t *testing.T) {
	setupWorkspace(t)

	if err := runSave(nil, []string{}); err == nil {
		t.Fatal("expected error when no scenes are given")
	}
}

func TestSaveUnknownScene(t *testing.T) {
	dir := setupWorkspace(t)
	saveScenes = []string{"Nowhere"}

	if err := runSave(nil, []string{}); err == nil {
		t.Fatal("expected error for unknown scene")
	}
	if fileExists(t, filepath.Join(dir, "data", "save.json")) {
		t.Error("no save file should be written when a scene fails to load")
	}
}

func TestSaveUnknownActiveScene(t *testing.T) {
	setupWorkspace(t)
	saveScenes = []string{"Main"}
	saveActive = "Second"

	if err := runSave(nil, []string{}); err == nil {
		t.Fatal("expected error when the active scene is not loaded")
	}
}

func TestLoadCommand(t *testing.T) {
	setupWorkspace(t)

	saveScenes = []string{"Main", "Second"}
	saveActive = "Main"
	if err := runSave(nil, []string{}); err != nil {
		t.Fatalf("save command failed: %v", err)
	}

	if err := runLoad(nil, []string{}); err != nil {
		t.Fatalf("load command failed: %v", err)
	}

	loadJSON = true
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := runLoad(cmd, []string{}); err != nil {
		t.Fatalf("load --json failed: %v", err)
	}

	var out loadOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse load output %q: %v", buf.String(), err)
	}
	// Main places two objects and Second one; the sample catalog is stamped
	// so every one of them must match
	if out.Restored != 3 {
		t.Errorf("expected 3 restored objects, got %d (missing %v)", out.Restored, out.Missing)
	}
	if len(out.Missing) != 0 || len(out.Failed) != 0 {
		t.Errorf("expected no missing or failed objects, got %+v", out)
	}
	if diff := cmp.Diff([]string{"Main", "Second"}, out.Scenes); diff != "" {
		t.Errorf("scenes mismatch (-want +got):\n%s", diff)
	}
	if out.ActiveScene != "Main" {
		t.Errorf("expected active scene Main, got %s", out.ActiveScene)
	}
}

func TestLoadMissingSaveFile(t *testing.T) {
	setupWorkspace(t)

	if err := runLoad(nil, []string{}); err == nil {
		t.Fatal("expected error when no save file exists")
	}
}

func TestLoadMissingCatalog(t *testing.T) {
	dir := setupWorkspace(t)
	viper.Set("scenes.catalog_dir", filepath.Join(dir, "nowhere"))

	if err := runLoad(nil, []string{}); err == nil {
		t.Fatal("expected error for a missing catalog")
	}
}
