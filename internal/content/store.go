// Package content loads the site's content collections from disk and serves
// validated entries by collection name.
package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Bitlatte/redefine/internal/schema"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrNotLoaded         = errors.New("content store has not been loaded")
)

// Entry is one validated record of a collection.
type Entry struct {
	Collection schema.Collection
	// ID is the path of the source file relative to the collection directory.
	ID         string
	Slug       string
	SourcePath string
	// Body is the markdown below the front matter; empty for data entries.
	Body       []byte
	// Data holds schema.Author, schema.BlogPost or schema.PolicyPage.
	Data       interface{}
}

// Asset is an image file referenced by content that the build must publish.
type Asset struct {
	Src  string
	Path string
}

type Options struct {
	Root      string
	PublicDir string
	Registry  *schema.Registry
	Logger    *log.Logger
}

type snapshot struct {
	entries map[schema.Collection][]Entry
	assets  []Asset
}

// Store holds the most recently loaded snapshot of all collections. Load
// replaces the snapshot as a whole so readers never observe a partial load.
type Store struct {
	opts Options
	log  *log.Logger

	mu   sync.RWMutex
	snap *snapshot
}

func New(opts Options) *Store {
	if opts.Registry == nil {
		opts.Registry = schema.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{opts: opts, log: logger}
}

// Load reads and validates every collection. On failure the previous
// snapshot stays in place and the returned error joins every problem found.
func (s *Store) Load(ctx context.Context) error {
	snap, err := newLoader(s.opts, s.log).load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	for _, name := range s.opts.Registry.Names() {
		s.log.WithFields(log.Fields{
			"collection": name,
			"entries":    len(snap.entries[name]),
		}).Debug("Collection loaded")
	}
	return nil
}

// Entries returns the entries of the named collection in source order.
func (s *Store) Entries(ctx context.Context, name schema.Collection) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := s.opts.Registry.Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}

	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap == nil {
		return nil, ErrNotLoaded
	}

	entries := snap.entries[name]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Assets returns the image files referenced by the loaded content, ordered
// by Src.
func (s *Store) Assets() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil
	}
	out := make([]Asset, len(s.snap.assets))
	copy(out, s.snap.assets)
	return out
}

func (s *snapshot) sortAssets() {
	sort.Slice(s.assets, func(i, j int) bool { return s.assets[i].Src < s.assets[j].Src })
}
