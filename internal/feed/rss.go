package feed

import (
	"fmt"
	"io"
	"net/url"

	"github.com/gorilla/feeds"
)

// ContentType is sent with the serialized feed.
const ContentType = "application/xml; charset=utf-8"

// Render writes f as an RSS 2.0 document. Item links are made absolute
// against the site URL and double as the item guid.
func Render(w io.Writer, f *Feed) error {
	site, err := url.Parse(f.Site)
	if err != nil || !site.IsAbs() {
		return fmt.Errorf("feed site %q is not an absolute URL", f.Site)
	}

	out := &feeds.Feed{
		Title:       f.Title,
		Link:        &feeds.Link{Href: site.String()},
		Description: f.Description,
		Items:       make([]*feeds.Item, 0, len(f.Items)),
	}
	for _, it := range f.Items {
		ref, err := url.Parse(it.Link)
		if err != nil {
			return fmt.Errorf("invalid item link %q: %w", it.Link, err)
		}
		link := site.ResolveReference(ref).String()
		out.Items = append(out.Items, &feeds.Item{
			Id:          link,
			Title:       it.Title,
			Link:        &feeds.Link{Href: link},
			Description: it.Description,
			Created:     it.PubDate,
		})
	}

	if err := out.WriteRss(w); err != nil {
		return fmt.Errorf("failed to write rss: %w", err)
	}
	return nil
}
