package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/redefine/internal/schema"
)

type loader struct {
	opts   Options
	log    *log.Logger
	assets map[string]Asset
	errs   []error
}

func newLoader(opts Options, logger *log.Logger) *loader {
	return &loader{opts: opts, log: logger, assets: make(map[string]Asset)}
}

func (l *loader) load(ctx context.Context) (*snapshot, error) {
	if _, err := os.Stat(l.opts.Root); err != nil {
		return nil, fmt.Errorf("content directory '%s': %w", l.opts.Root, err)
	}
	l.warnUnknownDirs()

	snap := &snapshot{entries: make(map[schema.Collection][]Entry)}
	for _, name := range l.opts.Registry.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := l.loadCollection(name)
		if err != nil {
			return nil, err
		}
		snap.entries[name] = entries
	}

	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}

	for _, a := range l.assets {
		snap.assets = append(snap.assets, a)
	}
	snap.sortAssets()
	return snap, nil
}

func (l *loader) warnUnknownDirs() {
	dirEntries, err := os.ReadDir(l.opts.Root)
	if err != nil {
		return
	}
	for _, d := range dirEntries {
		if !d.IsDir() || ignored(d.Name()) {
			continue
		}
		if _, ok := l.opts.Registry.Lookup(schema.Collection(d.Name())); !ok {
			l.log.WithField("dir", filepath.Join(l.opts.Root, d.Name())).
				Warn("Directory does not match any collection, skipping")
		}
	}
}

func (l *loader) loadCollection(name schema.Collection) ([]Entry, error) {
	dir := filepath.Join(l.opts.Root, string(name))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		l.log.WithField("collection", name).Debug("Collection directory not found, collection is empty")
		return nil, nil
	}

	var entries []Entry
	bySlug := make(map[string]string)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path '%s': %w", path, err)
		}
		if path != dir && ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		kind := kindOf(path)
		if kind == kindUnsupported {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		entry, err := l.loadEntry(name, path, filepath.ToSlash(rel), kind)
		if err != nil {
			l.errs = append(l.errs, err)
			return nil
		}

		if other, dup := bySlug[entry.Slug]; dup {
			l.errs = append(l.errs, fmt.Errorf("%s: duplicate slug %q in %s and %s", name, entry.Slug, other, entry.ID))
			return nil
		}
		bySlug[entry.Slug] = entry.ID
		entries = append(entries, entry)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("error during '%s' collection walk: %w", name, walkErr)
	}
	return entries, nil
}

func (l *loader) loadEntry(name schema.Collection, path, id string, kind entryKind) (Entry, error) {
	where := string(name) + "/" + id

	raw, body, err := decodeFile(path, kind)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", where, err)
	}

	slug := Slugify(id)
	if v, ok := raw["slug"]; ok && kind == kindMarkdown {
		s, isString := v.(string)
		if !isString || strings.TrimSpace(s) == "" {
			return Entry{}, &schema.ValidationError{
				Collection: name,
				Entry:      id,
				Fields:     []schema.FieldError{{Field: "slug", Message: "expected non-empty string"}},
			}
		}
		slug = NormalizeSlug(s)
		if slug == "" {
			return Entry{}, &schema.ValidationError{
				Collection: name,
				Entry:      id,
				Fields:     []schema.FieldError{{Field: "slug", Message: fmt.Sprintf("%q has no URL-safe characters", s)}},
			}
		}
	}
	if slug == "" {
		return Entry{}, fmt.Errorf("%s: file name has no URL-safe characters", where)
	}

	assets := &fileAssets{entryDir: filepath.Dir(path), publicDir: l.opts.PublicDir, collected: l.assets}
	data, err := l.opts.Registry.Validate(name, raw, assets)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			verr.Entry = id
			return Entry{}, verr
		}
		return Entry{}, fmt.Errorf("%s: %w", where, err)
	}

	return Entry{
		Collection: name,
		ID:         id,
		Slug:       slug,
		SourcePath: path,
		Body:       body,
		Data:       data,
	}, nil
}

type entryKind int

const (
	kindUnsupported entryKind = iota
	kindMarkdown
	kindYAML
	kindJSON
)

func kindOf(path string) entryKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return kindMarkdown
	case ".yaml", ".yml":
		return kindYAML
	case ".json":
		return kindJSON
	default:
		return kindUnsupported
	}
}

func decodeFile(path string, kind entryKind) (schema.Raw, []byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	raw := make(map[string]interface{})
	switch kind {
	case kindMarkdown:
		body, err := frontmatter.Parse(bytes.NewReader(b), &raw)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		return schema.Raw(raw), body, nil
	case kindYAML:
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case kindJSON:
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, nil, fmt.Errorf("failed to parse json: %w", err)
		}
	}
	return schema.Raw(raw), nil, nil
}

// ignored reports whether a file or directory is excluded from collections.
func ignored(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}
