package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pders01/scene-state/internal/config"
	"github.com/pders01/scene-state/internal/diag"
	"github.com/pders01/scene-state/internal/persist"
	"github.com/pders01/scene-state/internal/registry"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/pders01/scene-state/internal/storage"
	"github.com/spf13/cobra"
)

// runtime is the fully wired engine a command works against.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	fs      billy.Filesystem
	store   *storage.Gateway
	catalog *scene.Catalog
	host    *scene.Host
	engine  *persist.Engine
	manager *persist.Manager
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	logger := diag.New(os.Stderr, cfg.Log.Level)

	store, err := storage.NewOS(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	fs, catalog, err := openCatalog(cfg.Scenes.CatalogDir)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	host := scene.NewHost(catalog, reg,
		scene.WithLogger(logger),
		scene.WithLoadDelay(cfg.Scenes.LoadDelay),
	)
	engine := persist.NewEngine(host, reg, store,
		persist.WithLogger(logger),
		persist.WithPretty(cfg.Save.Pretty),
	)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		fs:      fs,
		store:   store,
		catalog: catalog,
		host:    host,
		engine:  engine,
		manager: &persist.Manager{
			Engine:   engine,
			Store:    store,
			FileName: cfg.Storage.SaveFile,
			Timeout:  cfg.Load.Timeout,
			Logger:   logger,
		},
	}, nil
}

func (r *runtime) Close() {
	r.host.Close()
}

func openCatalog(dir string) (billy.Filesystem, *scene.Catalog, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve catalog directory: %w", err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("scene catalog not found: %s (run 'scenestate init' first)", abs)
	}

	fs := osfs.New("/")
	catalog, err := scene.LoadCatalog(fs, abs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load scene catalog: %w", err)
	}
	return fs, catalog, nil
}

// boot loads scenes in order, the first one replacing whatever is loaded.
func (r *runtime) boot(ctx context.Context, scenes []string) error {
	for i, name := range scenes {
		mode := scene.Additive
		if i == 0 {
			mode = scene.Single
		}
		if err := waitForScene(ctx, r.host.LoadScene(name, mode)); err != nil {
			return err
		}
	}
	return nil
}

// waitForScene blocks until op is done, drawing a progress bar unless quiet.
func waitForScene(ctx context.Context, op *scene.Operation) error {
	bar := newBar(op.Name(), 100)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-op.Done():
			if err := op.Err(); err != nil {
				bar.Finish()
				return fmt.Errorf("failed to load scene %s: %w", op.Name(), err)
			}
			bar.Set(100)
			bar.Finish()
			return nil
		case <-ticker.C:
			bar.Set(int(op.Progress() * 100))
		case <-ctx.Done():
			bar.Finish()
			return ctx.Err()
		}
	}
}

// waitForLoad blocks until a pending load resolves, drawing one bar that
// tracks how far the load has come.
func waitForLoad(ctx context.Context, p *persist.Pending) (persist.Report, error) {
	bar := newBar("restoring", int(persist.Done))
	defer bar.Finish()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.Done():
			bar.Set(int(persist.Done))
			return p.Result()
		case <-ticker.C:
			bar.Set(int(p.Phase()))
		case <-ctx.Done():
			return persist.Report{}, ctx.Err()
		}
	}
}

func newBar(label string, total int) *pb.ProgressBar {
	bar := pb.New(total).Prefix(fmt.Sprintf("%-16s", label))
	bar.Output = os.Stderr
	if quiet {
		bar.Output = io.Discard
	}
	bar.ShowCounters = false
	bar.ShowTimeLeft = false
	bar.Start()
	return bar
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func outWriter(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}
