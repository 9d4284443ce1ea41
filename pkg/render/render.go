// Package render renders HTML pages from a set of templates sharing one layout.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	chirender "github.com/go-chi/render"
)

const layoutName = "layout.html"

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every *.html file under dir in fsys. Each page is parsed together with layout.html,
// which must define the "layout" template and call {{template "content" .}}.
func New(fsys fs.FS, dir string) (*Renderer, error) {
	const op = "render.New"

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list templates: %w", op, err)
	}

	layout := path.Join(dir, layoutName)
	pages := make(map[string]*template.Template, len(files))

	for _, file := range files {
		name := path.Base(file)
		if name == layoutName {
			continue
		}

		t, err := template.ParseFS(fsys, layout, file)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse %s: %w", op, name, err)
		}

		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Page writes the named page with the given status.
func (rr *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data any) error {
	const op = "render.Renderer.Page"

	t, ok := rr.pages[name]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, name)
	}

	var buf bytes.Buffer

	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("%s: failed to execute %s: %w", op, name, err)
	}

	chirender.Status(r, status)
	chirender.HTML(w, r, buf.String())

	return nil
}
