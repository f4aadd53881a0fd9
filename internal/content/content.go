// Package content renders the markdown pages linked from the header and
// formats product descriptions.
package content

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*.md
var embeddedPages embed.FS

// ErrNotFound is returned for unknown slugs.
var ErrNotFound = errors.New("content: page not found")

// Page is a rendered markdown page.
type Page struct {
	Slug           string
	Title          string
	Summary        string
	Body           template.HTML
	UpdatedAt      time.Time
	SEODescription string
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

// Library loads pages from a file system of <slug>.md files and caches the
// rendered result.
type Library struct {
	fsys   fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.RWMutex
	pages map[string]Page
}

// New reads pages from fsys. A nil fsys uses the embedded pages.
func New(fsys fs.FS) *Library {
	if fsys == nil {
		sub, err := fs.Sub(embeddedPages, "pages")
		if err != nil {
			panic(err)
		}
		fsys = sub
	}
	return &Library{
		fsys:   fsys,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer)),
		policy: newPolicy(),
		pages:  make(map[string]Page),
	}
}

func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "ul", "ol", "li")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// Get returns the page for slug.
func (l *Library) Get(ctx context.Context, slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	l.mu.RLock()
	page, ok := l.pages[slug]
	l.mu.RUnlock()
	if ok {
		return page, nil
	}

	page, err := l.load(slug)
	if err != nil {
		return Page{}, err
	}
	l.mu.Lock()
	l.pages[slug] = page
	l.mu.Unlock()
	return page, nil
}

func (l *Library) load(slug string) (Page, error) {
	data, err := fs.ReadFile(l.fsys, slug+".md")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("content: read %s: %w", slug, err)
	}

	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", slug, err)
		}
	}
	rendered, err := l.render(body)
	if err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", slug, err)
	}

	page := Page{
		Slug:           slug,
		Title:          strings.TrimSpace(front.Title),
		Summary:        strings.TrimSpace(front.Summary),
		Body:           rendered,
		UpdatedAt:      parseDate(front.UpdatedAt),
		SEODescription: strings.TrimSpace(front.SEO.Description),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.SEODescription == "" {
		page.SEODescription = page.Summary
	}
	return page, nil
}

// Markdown renders an inline snippet such as a product description.
func (l *Library) Markdown(src string) template.HTML {
	out, err := l.render(src)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return out
}

func (l *Library) render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := l.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimSpace(l.policy.Sanitize(buf.String()))), nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return path.Clean(slug)
}
