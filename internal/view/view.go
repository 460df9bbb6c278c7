// Package view renders the storefront pages from embedded html/template files.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/shopify"
)

//go:embed templates
var templateFS embed.FS

const (
	PlaceholderImage    = "https://via.placeholder.com/300"
	DefaultVariantTitle = "Default Title"
)

var ErrUnknownPage = errors.New("unknown page")

// Page is the data every template receives. Data holds the page's own view model.
type Page struct {
	Title    string
	Path     string
	LoggedIn bool
	Cart     *domain.Cart
	CartOpen bool
	Flash    string
	Error    string
	Data     any
}

type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layout and partials once per page file.
func New() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).
			Funcs(Funcs()).
			ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the named page with status. The page is executed into a buffer;
// on a template error nothing is written.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":        func(m domain.Money) string { return m.String() },
		"imageURL":     imageURL,
		"imageAlt":     imageAlt,
		"gid":          shopify.ParseGID,
		"pathEscape":   url.PathEscape,
		"variantLabel": variantLabel,
		"trustedHTML":  trustedHTML,
		"add":          func(a, b int) int { return a + b },
	}
}

// trustedHTML marks product descriptions, which are authored in the store admin, as safe markup.
func trustedHTML(s string) template.HTML {
	return template.HTML(s)
}

func variantLabel(title string) string {
	if title == DefaultVariantTitle {
		return ""
	}
	return title
}

func imageURL(img *domain.Image) string {
	if img == nil || img.URL == "" {
		return PlaceholderImage
	}
	return img.URL
}

func imageAlt(img *domain.Image, fallback string) string {
	if img == nil || img.AltText == "" {
		return fallback
	}
	return img.AltText
}
