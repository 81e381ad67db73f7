package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type Flash struct {
	Kind    string
	Message string
}

type CartLine struct {
	Name     string
	Price    float64
	Quantity int
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

type Cart struct {
	Lines []CartLine
}

func (c Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// Page is the view model every template receives.
type Page struct {
	Title     string
	Account   *models.Account
	Flash     *Flash
	CSRFToken string

	Products []models.Product
	Product  *models.Product
	Action   string
	Cart     *Cart
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"imageURL": func(p string) string {
		if p == "" {
			return ""
		}
		return "/uploaded/" + p
	},
}

func New() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return r, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
