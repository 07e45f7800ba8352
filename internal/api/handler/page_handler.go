package handler

import (
	"fmt"
	"log"
	"net/http"

	"ocpe/internal/api/middleware"
	"ocpe/internal/api/view"
	"ocpe/internal/app/service"
	"ocpe/internal/common"

	"github.com/go-chi/chi/v5"
)

// PageHandler serves the home, account and contest pages.
type PageHandler struct {
	authService *service.AuthService
	view        *view.Renderer
}

func NewPageHandler(authService *service.AuthService, v *view.Renderer) *PageHandler {
	return &PageHandler{authService: authService, view: v}
}

func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/home", h.home)
	r.Get("/contests", h.contests)
	r.Get("/contest", h.contest)
	r.With(middleware.RequireLogin).Get("/account", h.account)
}

func (h *PageHandler) home(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageIndex, view.Page{})
}

func (h *PageHandler) contests(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageContests, view.Page{Title: "Contests"})
}

func (h *PageHandler) contest(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageContest, view.Page{Title: "Contest #"})
}

func (h *PageHandler) account(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	user, err := h.authService.GetAccount(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, view.PageAccount, view.Page{Title: "Account", Content: user})
}

// NotFound renders the 404 page; used for unmatched routes and missing problems.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(h.view, w, r)
}

func notFound(v *view.Renderer, w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusNotFound, view.PageNotFound, view.Page{Title: "404"})
}

// respondError writes a plain error response with the status err maps to.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
	} else {
		log.Printf("WARN: %s %s: %v", r.Method, r.URL.Path, err)
	}
	common.RespondWithError(w, status, "")
}

func invalidForm(err error) error {
	return fmt.Errorf("%w: invalid form submission: %v", common.ErrBadRequest, err)
}
