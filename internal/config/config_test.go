package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if cfg.Storage.SaveFile != "save.json" {
		t.Errorf("expected save file 'save.json', got %q", cfg.Storage.SaveFile)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("expected a default data dir")
	}
	if !cfg.Save.Pretty {
		t.Error("expected pretty output by default")
	}
	if cfg.Load.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Load.Timeout)
	}
	if cfg.Scenes.LoadDelay != 0 {
		t.Errorf("expected no load delay, got %v", cfg.Scenes.LoadDelay)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %q", cfg.Log.Level)
	}
}

func TestDecodeFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[storage]
data_dir = "/srv/saves"
save_file = "slot1.json"

[save]
pretty = false

[scenes]
catalog_dir = "levels"
startup = ["Main", "Overlay"]
load_delay = "25ms"

[load]
timeout = "3s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := Config{
		Storage: StorageConfig{DataDir: "/srv/saves", SaveFile: "slot1.json"},
		Save:    SaveConfig{Pretty: false},
		Scenes: ScenesConfig{
			CatalogDir: "levels",
			Startup:    []string{"Main", "Overlay"},
			LoadDelay:  25 * time.Millisecond,
		},
		Load: LoadConfig{Timeout: 3 * time.Second},
		Log:  LogConfig{Level: "info"},
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestGetters(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults(viper.GetViper())
	viper.Set("scenes.startup", []string{"Main"})

	if GetSaveFile() != "save.json" {
		t.Errorf("unexpected save file %q", GetSaveFile())
	}
	if GetLoadTimeout() != 10*time.Second {
		t.Errorf("unexpected timeout %v", GetLoadTimeout())
	}
	if diff := cmp.Diff([]string{"Main"}, GetStartupScenes()); diff != "" {
		t.Errorf("startup scenes mismatch (-want +got):\n%s", diff)
	}
	if !GetPretty() {
		t.Error("expected pretty by default")
	}
}
