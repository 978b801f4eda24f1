// Package web renders the HTML pages of the survey desk.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/survey"
)

//go:embed templates static
var files embed.FS

// Raw HTML in descriptions is escaped: WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var pageNames = []string{
	"home.html",
	"survey.html",
	"login.html",
	"admin.html",
	"responses.html",
	"analytics.html",
}

// Page is the data every template receives.
type Page struct {
	Session httpx.Session
	Title   string
	Success string
	Error   string
	Info    string
	Data    any
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"markdown":  renderMarkdown,
		"options":   survey.ParseOptions,
		"datetime":  func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
		"typeLabel": func(t model.QuestionType) string { return t.Label() },
		"percent": func(n, total int) int {
			if total == 0 {
				return 0
			}
			return n * 100 / total
		},
		"inc": func(i int) int { return i + 1 },
	}

	rd := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, errors.Wrapf(err, "web.parse %s", name)
		}
		rd.pages[name] = tpl
	}
	return rd, nil
}

// Render writes page with the given status, filling in the session of r.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	tpl, ok := rd.pages[name]
	if !ok {
		httpx.LogInternalError(w, "web.render", errors.Errorf("unknown page %s", name))
		return
	}
	page.Session = httpx.SessionFrom(r.Context())

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, page); err != nil {
		httpx.LogInternalError(w, "web.render."+name, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debugf("web.render.write: %s", err)
	}
}

// Static serves the embedded stylesheet and other assets.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
