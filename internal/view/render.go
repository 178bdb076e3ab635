package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Fragment names accepted by Renderer.Fragment.
const (
	FragmentNational  = "national"
	FragmentLocations = "locations"
	FragmentImageTags = "image-tags"
	FragmentDetail    = "detail"
	FragmentPreview   = "preview"
)

// DetailRegion is the detail panel plus its heading.
type DetailRegion struct {
	Title string
	Body  Panel[DetailView]
}

// IdleDetail is the detail region before any city is selected or after close.
func IdleDetail() DetailRegion {
	return DetailRegion{Title: MsgDetailTitle, Body: Empty[DetailView](MsgDetailIdle)}
}

// Page is everything the full dashboard page shows.
type Page struct {
	Query     string
	National  Panel[NationalView]
	Locations Panel[LocationsView]
	Tags      []ImageTag
	Detail    DetailRegion
	Preview   Panel[PreviewView]
}

// Renderer turns view-models into HTML.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("dashboard").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Page writes the full dashboard page.
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", p)
}

// Fragment writes one region. data must be the view-model the fragment expects.
func (r *Renderer) Fragment(w io.Writer, name string, data any) error {
	if r.tmpl.Lookup(name) == nil {
		return fmt.Errorf("unknown fragment %q", name)
	}
	return r.tmpl.ExecuteTemplate(w, name, data)
}
