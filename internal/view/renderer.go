// Package view renders storefront pages from typed contexts and hydrates the
// resulting markup.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed templates
var embeddedTemplates embed.FS

// Options configures a Renderer.
type Options struct {
	// Templates overrides the embedded template tree, e.g. os.DirFS in dev.
	Templates fs.FS
	// Reload reparses templates on every render.
	Reload bool
}

// Renderer executes the page, layout and fragment templates.
type Renderer struct {
	fsys   fs.FS
	reload bool
	cache  *template.Template
}

// NewRenderer parses templates once up front so broken templates fail at
// startup.
func NewRenderer(opts Options) (*Renderer, error) {
	fsys := opts.Templates
	if fsys == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	r := &Renderer{fsys: fsys, reload: opts.Reload}
	t, err := parseTemplates(fsys)
	if err != nil {
		return nil, err
	}
	r.cache = t
	return r, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("view: no templates found")
	}
	return template.New("_root").Funcs(funcMap()).ParseFS(fsys, files...)
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.reload {
		return parseTemplates(r.fsys)
	}
	return r.cache, nil
}

type pageData struct {
	State State
	Data  Context
}

type layoutData struct {
	State State
	Mount template.HTML
}

// Render executes the page template of c and returns the mount markup.
func (r *Renderer) Render(state State, c Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("view: nil context")
	}
	t, err := r.templates()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	name := "page_" + c.TemplateName()
	if err := t.ExecuteTemplate(&buf, name, pageData{State: state, Data: c}); err != nil {
		return "", fmt.Errorf("view: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// Document writes the full page around mount.
func (r *Renderer) Document(w io.Writer, state State, mount template.HTML) error {
	return r.execute(w, "base", layoutData{State: state, Mount: mount})
}

// Fragment writes the title, the mount markup and out-of-band swaps for a
// boosted navigation.
func (r *Renderer) Fragment(w io.Writer, state State, mount template.HTML) error {
	return r.execute(w, "fragment", layoutData{State: state, Mount: mount})
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("view: execute %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
