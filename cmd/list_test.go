package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/spf13/viper"
)

func TestListCommand(t *testing.T) {
	setupWorkspace(t)

	if err := runList(nil, []string{}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	listJSON = true
	if err := runList(nil, []string{}); err != nil {
		t.Fatalf("list --json failed: %v", err)
	}

	listJSON = false
	listToon = true
	if err := runList(nil, []string{}); err != nil {
		t.Fatalf("list --toon failed: %v", err)
	}
}

func TestListEmptyCatalog(t *testing.T) {
	dir := setupWorkspace(t)

	empty := filepath.Join(dir, "empty")
	if err := os.MkdirAll(empty, 0755); err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	viper.Set("scenes.catalog_dir", empty)

	if err := runList(nil, []string{}); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
}

func TestListMissingCatalog(t *testing.T) {
	dir := setupWorkspace(t)
	viper.Set("scenes.catalog_dir", filepath.Join(dir, "nowhere"))

	if err := runList(nil, []string{}); err == nil {
		t.Fatal("expected error for a missing catalog")
	}
}

func TestStampCommand(t *testing.T) {
	dir := setupWorkspace(t)

	path := filepath.Join(dir, "scenes", "Extra.yaml")
	content := "name: Extra\nobjects:\n  - name: Lamp\n    transform:\n      position: {x: 1, y: 0, z: 0}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write scene file: %v", err)
	}

	if err := runStamp(nil, []string{}); err != nil {
		t.Fatalf("stamp command failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read stamped file: %v", err)
	}
	if !strings.Contains(string(data), "id:") {
		t.Errorf("stamped file has no id:\n%s", data)
	}

	// Stamped ids survive a reload unchanged
	first, err := scene.LoadCatalog(osfs.New("/"), filepath.Join(dir, "scenes"))
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	second, err := scene.LoadCatalog(osfs.New("/"), filepath.Join(dir, "scenes"))
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	a, _ := first.Scene("Extra")
	b, _ := second.Scene("Extra")
	if a.Objects[0].ID == "" || a.Objects[0].ID != b.Objects[0].ID {
		t.Errorf("expected stable id, got %q and %q", a.Objects[0].ID, b.Objects[0].ID)
	}
	if unstamped := first.Unstamped(); len(unstamped) != 0 {
		t.Errorf("expected no unstamped scenes, got %v", unstamped)
	}

	// A second run has nothing to do
	if err := runStamp(nil, []string{}); err != nil {
		t.Fatalf("second stamp failed: %v", err)
	}
	again, _ := os.ReadFile(path)
	if string(again) != string(data) {
		t.Error("second stamp rewrote an already stamped file")
	}
}
