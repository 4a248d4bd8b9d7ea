// Package view renders the HTML pages.
//
// Pages are html/template files embedded in the binary, each parsed
// together with the shared base layout, and handed out as templ
// components so handlers render them the same way as any other component.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/a-h/templ"

	"github.com/citeshelf/citeshelf/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Page template names.
const (
	PageText  = "text.html"
	PageTexts = "texts.html"
	PageItem  = "item.html"
)

var pages = []string{PageText, PageTexts, PageItem}

// Renderer holds the parsed page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page with the base layout.
func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).ParseFS(templatesFS,
			"templates/base.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// MustNew is like New but panics on error. The templates are embedded, so
// an error here is a build defect.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// TextPage is the context of text.html.
type TextPage struct {
	Title     string
	Year      int
	Author    string
	NCitation int
	Abstract  string
	Venue     string
	Keywords  []string
}

// TextRow is one line of texts.html.
type TextRow struct {
	ID        string
	Title     string
	Year      int
	Author    string
	NCitation int
}

// TextsPage is the context of texts.html.
type TextsPage struct {
	Rows     []TextRow
	Skip     int
	Limit    int
	PrevSkip int
	NextSkip int
	HasPrev  bool
	HasNext  bool
}

// ItemPage is the context of item.html.
type ItemPage struct {
	ID string
}

// NewTextPage builds the text.html context from a text.
func NewTextPage(t *model.Text) TextPage {
	return TextPage{
		Title:     t.Title,
		Year:      t.Year,
		Author:    t.FirstAuthorName(),
		NCitation: t.NCitation,
		Abstract:  t.Abstract,
		Venue:     t.Venue,
		Keywords:  t.Keywords,
	}
}

// NewTextsPage builds the texts.html context. A full page suggests more
// rows may follow.
func NewTextsPage(texts []*model.Text, skip, limit int) TextsPage {
	rows := make([]TextRow, len(texts))
	for i, t := range texts {
		rows[i] = TextRow{
			ID:        t.ID,
			Title:     t.Title,
			Year:      t.Year,
			Author:    t.FirstAuthorName(),
			NCitation: t.NCitation,
		}
	}

	page := TextsPage{
		Rows:     rows,
		Skip:     skip,
		Limit:    limit,
		HasPrev:  skip > 0,
		HasNext:  limit > 0 && len(texts) == limit,
		NextSkip: skip + limit,
	}
	if page.HasPrev {
		page.PrevSkip = max(skip-limit, 0)
	}
	return page
}

// Text renders a single text.
func (r *Renderer) Text(t *model.Text) templ.Component {
	return templ.FromGoHTML(r.templates[PageText], NewTextPage(t))
}

// Texts renders a page of texts.
func (r *Renderer) Texts(texts []*model.Text, skip, limit int) templ.Component {
	return templ.FromGoHTML(r.templates[PageTexts], NewTextsPage(texts, skip, limit))
}

// Item renders the item page.
func (r *Renderer) Item(id string) templ.Component {
	return templ.FromGoHTML(r.templates[PageItem], ItemPage{ID: id})
}

// Static serves the embedded assets. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
