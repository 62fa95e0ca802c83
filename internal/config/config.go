package config

import (
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pders01/scene-state/internal/storage"
	"github.com/spf13/viper"
)

// Config is the decoded configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Save    SaveConfig    `mapstructure:"save"`
	Scenes  ScenesConfig  `mapstructure:"scenes"`
	Load    LoadConfig    `mapstructure:"load"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	DataDir  string `mapstructure:"data_dir"`
	SaveFile string `mapstructure:"save_file"`
}

type SaveConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

type ScenesConfig struct {
	CatalogDir string        `mapstructure:"catalog_dir"`
	Startup    []string      `mapstructure:"startup"`
	LoadDelay  time.Duration `mapstructure:"load_delay"`
}

type LoadConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		dataDir = filepath.Join(".", ".scenestate")
	}
	v.SetDefault("storage.data_dir", dataDir)
	v.SetDefault("storage.save_file", "save.json")
	v.SetDefault("save.pretty", true)
	v.SetDefault("scenes.catalog_dir", "scenes")
	v.SetDefault("scenes.startup", []string{})
	v.SetDefault("scenes.load_delay", "0s")
	v.SetDefault("load.timeout", "10s")
	v.SetDefault("log.level", "info")
}

// Load decodes the global viper state into a Config
func Load() (*Config, error) {
	return Decode(viper.GetViper())
}

// Decode decodes v into a Config
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetDataDir returns the directory save files are stored in
func GetDataDir() string {
	return viper.GetString("storage.data_dir")
}

// GetSaveFile returns the fixed save file name
func GetSaveFile() string {
	return viper.GetString("storage.save_file")
}

// GetPretty reports whether save files are indented
func GetPretty() bool {
	return viper.GetBool("save.pretty")
}

// GetCatalogDir returns the scene catalog directory
func GetCatalogDir() string {
	return viper.GetString("scenes.catalog_dir")
}

// GetStartupScenes returns the scenes loaded when a host boots, first one
// in single mode
func GetStartupScenes() []string {
	return viper.GetStringSlice("scenes.startup")
}

// GetLoadDelay returns the artificial per-step delay of scene loads
func GetLoadDelay() time.Duration {
	return viper.GetDuration("scenes.load_delay")
}

// GetLoadTimeout returns how long a load waits for its scenes
func GetLoadTimeout() time.Duration {
	return viper.GetDuration("load.timeout")
}

// GetLogLevel returns the diagnostic log level
func GetLogLevel() string {
	return viper.GetString("log.level")
}
