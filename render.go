package viewsets

import (
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/PaulWay/viewsets/internal/naming"
)

// Renderer renders a named template to w. Configure one on the router with
// WithRenderer to enable Context.Render.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// TemplateRenderer renders html/template templates loaded from a filesystem.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses every .html template under base in fsys.
// Template names are paths relative to base, so with base "templates" the
// file templates/widget/retrieve.html is rendered as "widget/retrieve.html".
func NewTemplateRenderer(fsys fs.FS, base string) (*TemplateRenderer, error) {
	if base != "" && base != "." {
		sub, err := fs.Sub(fsys, base)
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	root := template.New("")
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		_, err = root.New(p).Parse(string(src))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: root}, nil
}

// Render implements Renderer.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	tmpl := t.templates.Lookup(name)
	if tmpl == nil {
		return Errorf(CodeInternal, "no template named %q", name)
	}
	return tmpl.Execute(w, data)
}

// defaultTemplateName maps a view-set action to its conventional template.
func defaultTemplateName(basename, action string) string {
	return path.Join(basename, naming.Kebab(action)+".html")
}
