package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ocpe/internal/api/middleware"
	"ocpe/internal/api/view"
	"ocpe/internal/app/service"
	"ocpe/internal/common"
	"ocpe/internal/common/flash"
	"ocpe/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService  *service.ProblemService
	view            *view.Renderer
	createdRedirect string
}

// NewProblemHandler sends judges to createdRedirect after a problem is posted.
func NewProblemHandler(ps *service.ProblemService, v *view.Renderer, createdRedirect string) *ProblemHandler {
	if createdRedirect == "" {
		createdRedirect = "/login"
	}
	return &ProblemHandler{problemService: ps, view: v, createdRedirect: createdRedirect}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(judge chi.Router) {
		judge.Use(middleware.Guard(model.RoleJudge))
		judge.Get("/create_problem", h.createProblemForm)
		judge.Post("/create_problem", h.createProblem)
	})
	r.With(middleware.Guard(model.RoleContestant)).Get("/practice", h.practice)
	r.Get("/problem/{problemID}", h.getProblem)
}

func (h *ProblemHandler) createProblemForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageCreateProblem, view.Page{Title: "Problems"})
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidForm(err))
		return
	}
	form := map[string]string{}
	for _, key := range []string{"name", "title", "description", "test_input", "test_output", "score"} {
		form[key] = r.PostForm.Get(key)
	}

	req := service.CreateProblemRequest{
		Name:        form["name"],
		Title:       form["title"],
		Description: form["description"],
		TestInput:   form["test_input"],
		TestOutput:  form["test_output"],
	}
	var scoreErr string
	if raw := strings.TrimSpace(form["score"]); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			// Zero fails the service's score check, so nothing is stored.
			scoreErr = "Not a valid integer value."
			score = 0
		}
		req.Score = score
	}

	actor := middleware.IdentityFromContext(r.Context())
	_, err := h.problemService.CreateProblem(r.Context(), actor, req)
	if err != nil {
		if errors.Is(err, common.ErrForbidden) {
			flash.Add(r, flash.Danger, "Login as judge to access this page.")
			common.RedirectNext(w, r, "/")
			return
		}
		fields, ok := common.FieldErrors(err)
		if !ok {
			respondError(w, r, err)
			return
		}
		if scoreErr != "" {
			fields["score"] = scoreErr
		}
		h.view.Render(w, r, http.StatusOK, view.PageCreateProblem, view.Page{
			Title:  "Problems",
			Form:   form,
			Errors: fields,
		})
		return
	}

	flash.Add(r, flash.Success, "The problem has been added to practice section!")
	common.Redirect(w, r, h.createdRedirect)
}

func (h *ProblemHandler) practice(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problemService.ListProblems(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, view.PagePractice, view.Page{Title: "Practice", Content: problems})
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "problemID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		notFound(h.view, w, r)
		return
	}

	problem, err := h.problemService.GetProblem(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			notFound(h.view, w, r)
			return
		}
		respondError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, view.PageQuestion, view.Page{Title: "Problem " + raw, Content: problem})
}
