// Package feed derives the blog's syndication feed from the content store.
package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Bitlatte/redefine/internal/content"
	"github.com/Bitlatte/redefine/internal/schema"
)

// Source is the query-by-collection capability the deriver reads from.
type Source interface {
	Entries(ctx context.Context, name schema.Collection) ([]content.Entry, error)
}

// Config is the static feed metadata.
type Config struct {
	Title       string
	Description string
	Site        string
}

// Item is one post in the feed. Link is site-relative.
type Item struct {
	Link        string
	Title       string
	Description string
	PubDate     time.Time
}

type Feed struct {
	Title       string
	Description string
	Site        string
	Items       []Item
}

// RetrievalError is returned when the blog collection cannot be read or
// contains something other than blog posts.
type RetrievalError struct {
	Collection schema.Collection
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve %s entries: %v", e.Collection, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Deriver turns the blog collection into a Feed.
type Deriver struct {
	src Source
	cfg Config
}

// NewDeriver returns a Deriver reading blog posts from src.
func NewDeriver(src Source, cfg Config) *Deriver {
	return &Deriver{src: src, cfg: cfg}
}

// Derive builds the feed: blog posts newest first, posts sharing a publish
// date keep the order the source returned them in.
func (d *Deriver) Derive(ctx context.Context) (*Feed, error) {
	entries, err := d.src.Entries(ctx, schema.Blog)
	if err != nil {
		return nil, &RetrievalError{Collection: schema.Blog, Err: err}
	}

	type post struct {
		slug string
		data schema.BlogPost
	}
	posts := make([]post, 0, len(entries))
	for _, e := range entries {
		data, ok := e.Data.(schema.BlogPost)
		if !ok {
			return nil, &RetrievalError{
				Collection: schema.Blog,
				Err:        fmt.Errorf("entry %q holds %T, expected a blog post", e.ID, e.Data),
			}
		}
		posts = append(posts, post{slug: e.Slug, data: data})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].data.PublishDate.After(posts[j].data.PublishDate)
	})

	f := &Feed{
		Title:       d.cfg.Title,
		Description: d.cfg.Description,
		Site:        d.cfg.Site,
		Items:       make([]Item, 0, len(posts)),
	}
	for _, p := range posts {
		f.Items = append(f.Items, Item{
			Link:        PostLink(p.slug),
			Title:       p.data.Title,
			Description: p.data.Description,
			PubDate:     p.data.PublishDate.UTC(),
		})
	}
	return f, nil
}

// PostLink is the site-relative URL of a blog post.
func PostLink(slug string) string {
	return "/blog/" + slug + "/"
}
