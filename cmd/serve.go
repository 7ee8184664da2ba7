package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/redefine/internal/feed"
	"github.com/Bitlatte/redefine/internal/server"
)

const (
	debounceDuration = 500 * time.Millisecond
	shutdownTimeout  = 10 * time.Second
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then serves the output
directory over HTTP. /rss.xml is derived from the loaded content on every
request. The content, public and layouts directories are watched and the
site is rebuilt when they change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := appConfig
		if cmd.Flags().Changed("port") {
			cfg.Port = serverPort
		}

		store := newStore(cfg, logger)
		b := &rebuilder{ctx: ctx, run: func(ctx context.Context) error {
			return buildSite(ctx, cfg, logger, store)
		}}

		logger.Info("Performing initial build...")
		if err := b.rebuild(); err != nil {
			return fmt.Errorf("initial build failed, fix the issues and try again: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()
		defer b.stop()

		for _, root := range []string{cfg.ContentDir, cfg.PublicDir, cfg.LayoutsDir} {
			watchTree(watcher, root)
		}
		go b.watch(watcher)

		srv := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Port),
			Handler: server.NewRouter(server.Options{
				Dir:    cfg.OutputDir,
				Feed:   feed.NewDeriver(store, cfg.Feed()),
				Logger: logger,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", "http://localhost"+srv.Addr).Info("Serving site, press Ctrl+C to stop")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Gracefully shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	},
}

// rebuilder serialises rebuilds and debounces bursts of file events.
type rebuilder struct {
	ctx context.Context
	run func(ctx context.Context) error

	mu    sync.Mutex
	timer *time.Timer
}

func (b *rebuilder) rebuild() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.run(b.ctx)
}

func (b *rebuilder) schedule() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(debounceDuration, func() {
		logger.Info("Rebuilding site due to changes...")
		if err := b.rebuild(); err != nil {
			logger.WithError(err).Error("Rebuild failed, still serving the previous build")
			return
		}
		logger.Info("Site rebuilt successfully")
	})
}

func (b *rebuilder) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

func (b *rebuilder) watch(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.WithFields(log.Fields{"path": event.Name, "op": event.Op.String()}).Debug("Change detected")

			// New subdirectories are not watched automatically.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				watchTree(watcher, event.Name)
			}
			b.schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WithError(err).Warn("Watcher error")
		case <-b.ctx.Done():
			return
		}
	}
}

// watchTree adds root and every directory below it to the watcher.
func watchTree(watcher *fsnotify.Watcher, root string) {
	if root == "" {
		return
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		logger.WithField("dir", root).Debug("Directory not found, not watching")
		return
	}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.WithError(err).WithField("path", path).Warn("Error walking directory")
			return nil
		}
		if d.IsDir() {
			if watchErr := watcher.Add(path); watchErr != nil {
				logger.WithError(watchErr).WithField("path", path).Warn("Failed to watch directory")
			}
		}
		return nil
	})
	if err != nil {
		logger.WithError(err).WithField("dir", root).Warn("Error setting up watch")
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 4321, "Port to serve the site on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
