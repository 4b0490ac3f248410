// Package view renders HTML pages from a template filesystem. Every page
// is parsed together with a shared layout, so pages only define the
// "content" block.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/shashiranjanraj/tailorshop/pkg/invoice"
)

const layoutFile = "layout.html"

// Page is the data every template receives.
type Page struct {
	Title    string
	Flashes  []string
	Username string
	Role     string
	Data     any
}

type Renderer struct {
	pages map[string]*template.Template
}

// Funcs available to every template.
var Funcs = template.FuncMap{
	"money": invoice.FormatAmount,
	"lower": strings.ToLower,
}

// New parses layout.html and every other *.html file in fsys. Page names
// are file names without the extension.
func New(fsys fs.FS) (*Renderer, error) {
	base, err := template.New(layoutFile).Funcs(Funcs).ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return r, nil
}

// Has reports whether a page called name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes page name into w with status 200. Execution happens
// into a buffer first so a template error never sends half a page.
func (r *Renderer) Render(w http.ResponseWriter, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
