// Package server exposes the built site and the live blog feed over HTTP.
package server

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/Bitlatte/redefine/internal/feed"
)

const feedTimeout = 10 * time.Second

// Deriver produces the feed served at /rss.xml.
type Deriver interface {
	Derive(ctx context.Context) (*feed.Feed, error)
}

type Options struct {
	// Dir is the output directory of the build.
	Dir    string
	Feed   Deriver
	Logger *log.Logger
}

// NewRouter serves the live feed at /rss.xml and the built site under Dir.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/rss.xml", FeedHandler(opts.Feed, logger))
	r.Handle("/*", staticHandler(opts.Dir))
	return r
}

// FeedHandler derives and serializes the feed on every request. Nothing is
// written until the whole document has been rendered, so failures always
// surface as a 500.
func FeedHandler(d Deriver, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), feedTimeout)
		defer cancel()

		fields := log.Fields{"request_id": middleware.GetReqID(r.Context())}

		f, err := d.Derive(ctx)
		if err != nil {
			logger.WithFields(fields).WithError(err).Error("Failed to derive feed")
			http.Error(w, "Failed to build feed", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := feed.Render(&buf, f); err != nil {
			logger.WithFields(fields).WithError(err).Error("Failed to render feed")
			http.Error(w, "Failed to build feed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", feed.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// staticHandler serves the output directory without caching. A directory
// is only served when it has an index.html, so listings never leak.
func staticHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			clean := filepath.FromSlash(path.Clean("/" + r.URL.Path))
			if _, err := os.Stat(filepath.Join(dir, clean, "index.html")); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.WithFields(log.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
			}).Info("HTTP request")
		})
	}
}
