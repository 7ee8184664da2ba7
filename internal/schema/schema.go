// Package schema declares the content collections of the site and validates
// raw front matter against them.
package schema

import (
	"fmt"
	"sort"
	"time"
)

// Collection is the name of a content collection. It matches the directory
// the entries live in under the content root.
type Collection string

const (
	Authors  Collection = "authors"
	Blog     Collection = "blog"
	Policies Collection = "policies"
)

// DefaultAuthor is substituted when a blog post does not name an author.
const DefaultAuthor = "Redefine"

// Raw is an untyped record as decoded from a source file.
type Raw map[string]interface{}

// Image is a build-time handle for a referenced image file.
type Image struct {
	Src    string
	Width  int
	Height int
	Format string
}

// AssetResolver turns an image reference declared in content into an Image.
type AssetResolver interface {
	ResolveImage(ref string) (Image, error)
}

// Author is a validated authors entry.
type Author struct {
	Name  string
	Title string
	Image Image
}

// BlogPost is the validated front matter of a blog entry.
type BlogPost struct {
	Title       string
	Description string
	PublishDate time.Time
	Author      string
}

// PolicyPage is the validated front matter of a policies entry.
type PolicyPage struct {
	Title       string
	Description string
	UpdatedDate time.Time
}

// Validator checks a raw record and returns the typed record for its
// collection (Author, BlogPost or PolicyPage).
type Validator func(raw Raw, assets AssetResolver) (interface{}, error)

// Registry maps collection names to their validators.
type Registry struct {
	validators map[Collection]Validator
}

// NewRegistry returns the registry of the site's three collections.
func NewRegistry() *Registry {
	return &Registry{
		validators: map[Collection]Validator{
			Authors: func(raw Raw, assets AssetResolver) (interface{}, error) {
				return ValidateAuthor(raw, assets)
			},
			Blog: func(raw Raw, _ AssetResolver) (interface{}, error) {
				return ValidateBlogPost(raw)
			},
			Policies: func(raw Raw, _ AssetResolver) (interface{}, error) {
				return ValidatePolicyPage(raw)
			},
		},
	}
}

// Lookup returns the validator registered for name.
func (r *Registry) Lookup(name Collection) (Validator, bool) {
	v, ok := r.validators[name]
	return v, ok
}

// Names returns the registered collection names in lexical order.
func (r *Registry) Names() []Collection {
	names := make([]Collection, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate runs the validator registered for name against raw.
func (r *Registry) Validate(name Collection, raw Raw, assets AssetResolver) (interface{}, error) {
	v, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no schema registered for collection %q", name)
	}
	return v(raw, assets)
}
