package presenter

import (
	"embed"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"

	"github.com/pkg/errors"

	"github.com/wichananm65/slopeselector/internal/usecase"
)

//go:embed templates
var templateFS embed.FS

// Renderer draws controller state as an HTML page or as terminal text.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse html templates")
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse text templates")
	}
	return &Renderer{html: html, text: text}, nil
}

func (r *Renderer) RenderHTML(w io.Writer, s usecase.State) error {
	return errors.Wrap(r.html.ExecuteTemplate(w, "layout", NewPageView(s)), "render html")
}

func (r *Renderer) RenderText(w io.Writer, s usecase.State) error {
	return errors.Wrap(r.text.ExecuteTemplate(w, "page", NewPageView(s)), "render text")
}
