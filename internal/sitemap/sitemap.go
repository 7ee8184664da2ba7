// Package sitemap writes the sitemap index and the page sitemap for the
// rendered site.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	IndexFile = "sitemap-index.xml"
	PagesFile = "sitemap-0.xml"
)

// Entry is one page of the site, by site-relative path.
type Entry struct {
	Path    string
	LastMod time.Time
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []urlXML `xml:"url"`
}

type urlXML struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapXML `xml:"sitemap"`
}

type sitemapXML struct {
	Loc string `xml:"loc"`
}

// Write generates PagesFile listing entries as absolute URLs sorted by
// location, and IndexFile pointing at it, both inside dir.
func Write(dir, site string, entries []Entry) error {
	base, err := url.Parse(site)
	if err != nil || !base.IsAbs() {
		return fmt.Errorf("site %q is not an absolute URL", site)
	}

	set := urlSet{Xmlns: namespace, URLs: make([]urlXML, 0, len(entries))}
	for _, e := range entries {
		ref, err := url.Parse(e.Path)
		if err != nil {
			return fmt.Errorf("invalid page path %q: %w", e.Path, err)
		}
		u := urlXML{Loc: base.ResolveReference(ref).String()}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	sort.Slice(set.URLs, func(i, j int) bool { return set.URLs[i].Loc < set.URLs[j].Loc })

	if err := writeXML(filepath.Join(dir, PagesFile), set); err != nil {
		return err
	}

	pagesRef, _ := url.Parse("/" + PagesFile)
	index := sitemapIndex{
		Xmlns:    namespace,
		Sitemaps: []sitemapXML{{Loc: base.ResolveReference(pagesRef).String()}},
	}
	return writeXML(filepath.Join(dir, IndexFile), index)
}

func writeXML(path string, v interface{}) error {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	b = append([]byte(xml.Header), b...)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
