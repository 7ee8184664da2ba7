package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/Bitlatte/redefine/internal/config"
	"github.com/Bitlatte/redefine/internal/content"
	"github.com/Bitlatte/redefine/internal/feed"
	"github.com/Bitlatte/redefine/internal/render"
	"github.com/Bitlatte/redefine/internal/schema"
	"github.com/Bitlatte/redefine/internal/sitemap"
)

const feedFile = "rss.xml"

func newStore(cfg config.Config, logger *log.Logger) *content.Store {
	return content.New(content.Options{
		Root:      cfg.ContentDir,
		PublicDir: cfg.PublicDir,
		Registry:  schema.NewRegistry(),
		Logger:    logger,
	})
}

// buildSite loads the content into store and writes the complete site to
// the output directory.
func buildSite(ctx context.Context, cfg config.Config, logger *log.Logger, store *content.Store) error {
	logger.WithFields(log.Fields{
		"content": cfg.ContentDir,
		"output":  cfg.OutputDir,
		"site":    cfg.Site,
	}).Info("Starting build")

	if err := store.Load(ctx); err != nil {
		n := reportLoadErrors(logger, err)
		return fmt.Errorf("content failed to load with %d problem(s)", n)
	}

	renderer, err := render.New(render.Options{
		OutputDir:  cfg.OutputDir,
		PublicDir:  cfg.PublicDir,
		LayoutsDir: cfg.LayoutsDir,
		Site:       cfg.Site,
		SiteTitle:  cfg.SiteTitle,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	pages, err := renderer.Build(ctx, store)
	if err != nil {
		return err
	}

	if err := writeFeed(ctx, cfg, store); err != nil {
		return err
	}

	entries := make([]sitemap.Entry, len(pages))
	for i, p := range pages {
		entries[i] = sitemap.Entry{Path: p.Path, LastMod: p.LastMod}
	}
	if err := sitemap.Write(cfg.OutputDir, cfg.Site, entries); err != nil {
		return err
	}

	logger.WithField("output", cfg.OutputDir).Info("Build completed")
	return nil
}

func writeFeed(ctx context.Context, cfg config.Config, store *content.Store) error {
	f, err := feed.NewDeriver(store, cfg.Feed()).Derive(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := feed.Render(&buf, f); err != nil {
		return err
	}
	path := filepath.Join(cfg.OutputDir, feedFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write feed '%s': %w", path, err)
	}
	return nil
}

// reportLoadErrors logs each problem of a failed load on its own line.
func reportLoadErrors(logger *log.Logger, err error) int {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		if verr, ok := e.(*schema.ValidationError); ok {
			for _, f := range verr.Fields {
				logger.WithFields(log.Fields{
					"collection": verr.Collection,
					"entry":      verr.Entry,
					"field":      f.Field,
				}).Error(f.Message)
			}
			continue
		}
		logger.Error(e)
	}
	return len(errs)
}
