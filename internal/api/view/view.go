// Package view renders the HTML pages. Templates are embedded and parsed once;
// the parsed set is safe for concurrent use.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"ocpe/internal/api/middleware"
	"ocpe/internal/common/flash"
	"ocpe/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages that can be passed to Render.
const (
	PageIndex         = "index"
	PageSignup        = "signup"
	PageLogin         = "login"
	PageAccount       = "account"
	PageContests      = "contests"
	PageContest       = "contest"
	PageCreateProblem = "create_problem"
	PagePractice      = "practice"
	PageQuestion      = "question"
	PageNotFound      = "404"
)

var pageNames = []string{
	PageIndex, PageSignup, PageLogin, PageAccount, PageContests, PageContest,
	PageCreateProblem, PagePractice, PageQuestion, PageNotFound,
}

// Page is the data every template receives. Identity and Flashes are filled
// in by Render.
type Page struct {
	Title    string
	Identity model.Identity
	Flashes  []flash.Message
	Form     map[string]string
	Errors   map[string]string
	Content  interface{}
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"canPractice": func(id model.Identity) bool { return id.Can(model.CapViewPractice) },
	"canCreate":   func(id model.Identity) bool { return id.Can(model.CapCreateProblem) },
	"roles":       model.Roles,
}

func New() (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name with the given status. Pending flash messages are
// shown on this page and the flash cookie is cleared.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	t, ok := v.pages[name]
	if !ok {
		log.Printf("ERROR: unknown template %q", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page.Identity = middleware.IdentityFromContext(r.Context())
	page.Flashes = flash.Pop(r)
	if page.Form == nil {
		page.Form = map[string]string{}
	}
	if page.Errors == nil {
		page.Errors = map[string]string{}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		log.Printf("ERROR: rendering %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	flash.Save(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
