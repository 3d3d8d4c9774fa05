// Package views holds the server-rendered pages. Every page is parsed
// together with the shared layout; HTMX requests receive only the page's
// "content" block.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/smart-harvest/internal/app/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*
var Assets embed.FS

// Page names.
const (
	PageLogin           = "login"
	PageDashboard       = "dashboard"
	PageOwnerDashboard  = "owner_dashboard"
	PageTasks           = "tasks"
	PageFertilizerPlans = "fertilizer_plans"
	PageBed             = "bed"
	PageWeather         = "weather"
	PageNotFound        = "not_found"
	PageError           = "error"
	PageStart           = "start"
	PageClientDashboard = "client_dashboard"
	PageClientRegister  = "client_register"
	PageClientFarm      = "client_farm"
	PageEndUserPortal   = "end_user_portal"
	partialSuffix       = ":partial"
)

var pages = []string{
	PageLogin, PageDashboard, PageOwnerDashboard, PageTasks,
	PageFertilizerPlans, PageBed, PageWeather, PageNotFound, PageError,
	PageStart, PageClientDashboard, PageClientRegister, PageClientFarm, PageEndUserPortal,
}

// Page is the data handed to every template.
type Page struct {
	Layout  models.Layout
	Content any
}

// Partial names the content-only rendering of page.
func Partial(page string) string {
	return page + partialSuffix
}

// Renderer implements gin's render.HTMLRender over the embedded pages.
type Renderer struct {
	templates map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// MustRenderer panics on a template error. The templates are embedded, so a
// failure here is a build defect.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Instance(name string, data any) render.Render {
	page, partial := strings.CutSuffix(name, partialSuffix)
	block := "layout"
	if partial {
		block = "content"
	}

	t, ok := r.templates[page]
	if !ok {
		t = r.templates[PageNotFound]
	}
	return render.HTML{Template: t, Name: block, Data: data}
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("Jan 2, 2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("Jan 2, 3:04 PM")
	},
	"label": func(s any) string {
		v := strings.ReplaceAll(fmt.Sprint(s), "-", " ")
		return cases.Title(language.English).String(v)
	},
	"active": func(current, name string) bool {
		return current == name
	},
}
