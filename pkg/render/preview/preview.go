// Package preview renders the structural HTML skeleton of a synthesized form
// with pongo2. The output carries ids, names, classes and values only; styling
// belongs to the embedding application.
package preview

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-entityform/pkg/form"
)

//go:embed templates/*.tpl
var embedded embed.FS

// DefaultTemplate is the template rendered by Render.
const DefaultTemplate = "form.html.tpl"

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	name      string
}

// WithTemplates loads templates from files instead of the embedded set.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplateName selects the template rendered for every form.
func WithTemplateName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// Renderer renders forms to HTML.
type Renderer struct {
	mu   sync.Mutex
	set  *pongo2.TemplateSet
	name string
	tpl  *pongo2.Template
}

// New constructs a Renderer. The template is compiled eagerly so a broken
// template fails here rather than on first render.
func New(options ...Option) (*Renderer, error) {
	templates, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("preview: embedded templates: %w", err)
	}
	cfg := &config{templates: templates, name: DefaultTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	r := &Renderer{
		set:  pongo2.NewSet("entityform-preview", pongo2.NewFSLoader(cfg.templates)),
		name: cfg.name,
	}
	tpl, err := r.set.FromFile(cfg.name)
	if err != nil {
		return nil, fmt.Errorf("preview: load template %q: %w", cfg.name, err)
	}
	r.tpl = tpl
	return r, nil
}

// Render returns the HTML of f.
func (r *Renderer) Render(f *form.Form) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo writes the HTML of f to w.
func (r *Renderer) RenderTo(w io.Writer, f *form.Form) error {
	if r == nil || r.tpl == nil {
		return errors.New("preview: renderer is nil")
	}
	if f == nil {
		return errors.New("preview: form is nil")
	}
	view, err := r.view(f)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.tpl.ExecuteWriter(pongo2.Context{"form": view}, w); err != nil {
		return fmt.Errorf("preview: execute template %q: %w", r.name, err)
	}
	return nil
}

func (r *Renderer) view(f *form.Form) (formView, error) {
	out := formView{}
	if t := f.Type(); t != nil {
		out.Type = t.Name()
	}
	for _, row := range f.Rows() {
		rv := newRowView(row)
		if nested, ok := row.Widget.(*form.Form); ok {
			html, err := r.Render(nested)
			if err != nil {
				return formView{}, fmt.Errorf("preview: nested %q: %w", row.Name, err)
			}
			rv.Nested = html
		}
		out.Rows = append(out.Rows, rv)
	}
	return out, nil
}
