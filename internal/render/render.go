// Package render turns the loaded collections into the static HTML pages of
// the site.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Bitlatte/redefine/internal/content"
	"github.com/Bitlatte/redefine/internal/feed"
	"github.com/Bitlatte/redefine/internal/model"
	"github.com/Bitlatte/redefine/internal/schema"
)

//go:embed templates/*.html
var embedded embed.FS

const (
	baseLayout      = "base.html"
	blogIndexLayout = "blog-index.html"
	postLayout      = "post.html"
	policyLayout    = "policy.html"
)

// Source is what the renderer reads content from.
type Source interface {
	Entries(ctx context.Context, name schema.Collection) ([]content.Entry, error)
	Assets() []content.Asset
}

type Options struct {
	OutputDir  string
	PublicDir  string
	LayoutsDir string
	Site       string
	SiteTitle  string
	Logger     *log.Logger
}

// Page is a rendered page, identified by its site-relative URL path.
type Page struct {
	Path    string
	LastMod time.Time
}

type Renderer struct {
	opts    Options
	log     *log.Logger
	md      goldmark.Markdown
	layouts map[string]*template.Template
}

func New(opts Options) (*Renderer, error) {
	site, err := url.Parse(opts.Site)
	if err != nil || !site.IsAbs() {
		return nil, fmt.Errorf("site %q is not an absolute URL", opts.Site)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	r := &Renderer{
		opts: opts,
		log:  logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
		layouts: make(map[string]*template.Template),
	}

	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string { return t.Format("January 2, 2006") },
		"isoDate":    func(t time.Time) string { return t.Format("2006-01-02") },
		"absURL": func(p string) string {
			ref, err := url.Parse(p)
			if err != nil {
				return p
			}
			return site.ResolveReference(ref).String()
		},
	}

	base := template.New(baseLayout).Funcs(funcs)
	if err := r.parseLayout(base, baseLayout); err != nil {
		return nil, err
	}
	for _, name := range []string{blogIndexLayout, postLayout, policyLayout} {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base layout: %w", err)
		}
		if err := r.parseLayout(t, name); err != nil {
			return nil, err
		}
		r.layouts[name] = t
	}
	return r, nil
}

// parseLayout parses name into t, preferring a file from the layouts
// directory over the embedded default.
func (r *Renderer) parseLayout(t *template.Template, name string) error {
	var src []byte
	if r.opts.LayoutsDir != "" {
		b, err := os.ReadFile(filepath.Join(r.opts.LayoutsDir, name))
		switch {
		case err == nil:
			src = b
			r.log.WithField("layout", name).Debug("Using layout override")
		case !os.IsNotExist(err):
			return fmt.Errorf("failed to read layout '%s': %w", name, err)
		}
	}
	if src == nil {
		b, err := embedded.ReadFile("templates/" + name)
		if err != nil {
			return fmt.Errorf("missing embedded layout '%s': %w", name, err)
		}
		src = b
	}

	target := t
	if t.Name() != name {
		target = t.New(name)
	}
	if _, err := target.Parse(string(src)); err != nil {
		return fmt.Errorf("failed to parse layout '%s': %w", name, err)
	}
	return nil
}

// Build cleans the output directory, copies static files and content
// assets into it, and renders every page.
func (r *Renderer) Build(ctx context.Context, src Source) ([]Page, error) {
	site, err := r.siteData(ctx, src)
	if err != nil {
		return nil, err
	}

	outputDir := r.opts.OutputDir
	r.log.WithField("dir", outputDir).Info("Cleaning output directory")
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if r.opts.PublicDir != "" {
		if _, err := os.Stat(r.opts.PublicDir); err == nil {
			if err := copyDirContents(r.opts.PublicDir, outputDir); err != nil {
				return nil, fmt.Errorf("failed to copy public files: %w", err)
			}
		} else {
			r.log.WithField("dir", r.opts.PublicDir).Debug("Public directory not found, skipping copy")
		}
	}
	for _, a := range src.Assets() {
		if err := copyFile(a.Path, filepath.Join(outputDir, filepath.FromSlash(a.Src))); err != nil {
			return nil, fmt.Errorf("failed to publish asset %s: %w", a.Src, err)
		}
	}

	var pages []Page

	var newest time.Time
	if len(site.Posts) > 0 {
		newest = site.Posts[0].PublishDate
	}
	if err := r.writePage(blogIndexLayout, "/blog/", &model.PageData{
		Site:      site,
		PageTitle: "Blog",
		Permalink: "/blog/",
	}); err != nil {
		return nil, err
	}
	pages = append(pages, Page{Path: "/blog/", LastMod: newest})

	for _, p := range site.Posts {
		html, err := r.markdown(p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to convert markdown for post '%s': %w", p.Slug, err)
		}
		if err := r.writePage(postLayout, p.Permalink, &model.PageData{
			Site:        site,
			PageTitle:   p.Title,
			Description: p.Description,
			Permalink:   p.Permalink,
			Content:     html,
			Post:        p,
		}); err != nil {
			return nil, err
		}
		pages = append(pages, Page{Path: p.Permalink, LastMod: p.PublishDate})
	}

	for _, p := range site.Policies {
		html, err := r.markdown(p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to convert markdown for policy '%s': %w", p.Slug, err)
		}
		if err := r.writePage(policyLayout, p.Permalink, &model.PageData{
			Site:        site,
			PageTitle:   p.Title,
			Description: p.Description,
			Permalink:   p.Permalink,
			Content:     html,
			Policy:      p,
		}); err != nil {
			return nil, err
		}
		pages = append(pages, Page{Path: p.Permalink, LastMod: p.UpdatedDate})
	}

	r.log.WithFields(log.Fields{
		"pages":    len(pages),
		"posts":    len(site.Posts),
		"policies": len(site.Policies),
	}).Info("Pages rendered")
	return pages, nil
}

func (r *Renderer) siteData(ctx context.Context, src Source) (*model.SiteData, error) {
	site := &model.SiteData{
		Title:   r.opts.SiteTitle,
		BaseURL: r.opts.Site,
		FeedURL: "/rss.xml",
		Authors: make(map[string]schema.Author),
	}

	authors, err := src.Entries(ctx, schema.Authors)
	if err != nil {
		return nil, fmt.Errorf("failed to read authors: %w", err)
	}
	for _, e := range authors {
		a, ok := e.Data.(schema.Author)
		if !ok {
			return nil, fmt.Errorf("authors entry %q holds %T", e.ID, e.Data)
		}
		site.Authors[a.Name] = a
	}

	posts, err := src.Entries(ctx, schema.Blog)
	if err != nil {
		return nil, fmt.Errorf("failed to read blog posts: %w", err)
	}
	for _, e := range posts {
		bp, ok := e.Data.(schema.BlogPost)
		if !ok {
			return nil, fmt.Errorf("blog entry %q holds %T", e.ID, e.Data)
		}
		if e.Slug == "" {
			return nil, fmt.Errorf("blog entry %q has an empty slug", e.ID)
		}
		p := &model.Post{BlogPost: bp, Slug: e.Slug, Permalink: feed.PostLink(e.Slug), Body: e.Body}
		if a, ok := site.Authors[bp.Author]; ok {
			p.Byline = &a
		}
		site.Posts = append(site.Posts, p)
	}
	model.SortPosts(site.Posts)

	policies, err := src.Entries(ctx, schema.Policies)
	if err != nil {
		return nil, fmt.Errorf("failed to read policies: %w", err)
	}
	for _, e := range policies {
		pp, ok := e.Data.(schema.PolicyPage)
		if !ok {
			return nil, fmt.Errorf("policies entry %q holds %T", e.ID, e.Data)
		}
		if e.Slug == "" {
			return nil, fmt.Errorf("policies entry %q has an empty slug", e.ID)
		}
		site.Policies = append(site.Policies, &model.Policy{
			PolicyPage: pp, Slug: e.Slug, Permalink: PolicyLink(e.Slug), Body: e.Body,
		})
	}
	return site, nil
}

// PolicyLink is the site-relative URL of a policy page.
func PolicyLink(slug string) string {
	return "/policies/" + slug + "/"
}

func (r *Renderer) markdown(body []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) writePage(layout, permalink string, data *model.PageData) error {
	outputPath := filepath.Join(r.opts.OutputDir, filepath.FromSlash(permalink), "index.html")
	if rel, err := filepath.Rel(r.opts.OutputDir, outputPath); err != nil || !filepath.IsLocal(rel) {
		return fmt.Errorf("permalink '%s' resolves outside the output directory", permalink)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", permalink, err)
	}

	var buf bytes.Buffer
	if err := r.layouts[layout].ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s' for '%s': %w", layout, permalink, err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	r.log.WithFields(log.Fields{"path": outputPath, "layout": layout}).Debug("Page generated")
	return nil
}
