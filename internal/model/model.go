package model

import (
	"sort"

	"github.com/Bitlatte/redefine/internal/schema"
)

// Post is a blog entry prepared for rendering.
type Post struct {
	schema.BlogPost
	Slug      string
	Permalink string
	Body      []byte
	// Byline is the authors entry whose name matches the post's author, if any.
	Byline *schema.Author
}

// Policy is a policies entry prepared for rendering.
type Policy struct {
	schema.PolicyPage
	Slug      string
	Permalink string
	Body      []byte
}

// SiteData holds all site-wide data, including configuration and content.
type SiteData struct {
	Title    string
	BaseURL  string
	FeedURL  string
	Posts    []*Post
	Policies []*Policy
	Authors  map[string]schema.Author
}

// SortPosts orders posts newest first; posts published on the same date
// keep their current order.
func SortPosts(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishDate.After(posts[j].PublishDate)
	})
}
