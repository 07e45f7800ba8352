package handler

import (
	"errors"
	"net/http"
	"time"

	"ocpe/internal/api/middleware"
	"ocpe/internal/api/view"
	"ocpe/internal/app/service"
	"ocpe/internal/common"
	"ocpe/internal/common/flash"
	"ocpe/internal/common/security"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler struct {
	authService  *service.AuthService
	view         *view.Renderer
	cookieSecure bool
}

func NewAuthHandler(authService *service.AuthService, v *view.Renderer, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, view: v, cookieSecure: cookieSecure}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(anon chi.Router) {
		anon.Use(middleware.RequireAnonymous)
		anon.Get("/signup", h.signupForm)
		anon.Post("/signup", h.signup)
		anon.Get("/login", h.loginForm)
		anon.Post("/login", h.login)
	})
	r.Get("/logout", h.logout)
}

func (h *AuthHandler) signupForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageSignup, view.Page{Title: "Signup"})
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidForm(err))
		return
	}
	req := service.SignupRequest{
		Username:        r.PostForm.Get("username"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
		Type:            r.PostForm.Get("type"),
	}

	_, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		fields, ok := common.FieldErrors(err)
		if !ok {
			respondError(w, r, err)
			return
		}
		h.view.Render(w, r, http.StatusOK, view.PageSignup, view.Page{
			Title:  "Signup",
			Form:   map[string]string{"username": req.Username, "email": req.Email, "type": req.Type},
			Errors: fields,
		})
		return
	}

	flash.Add(r, flash.Success, "Your account has been created! You are now able to log in")
	common.Redirect(w, r, "/login")
}

func (h *AuthHandler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageLogin, view.Page{Title: "Login", Content: r.URL.RequestURI()})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidForm(err))
		return
	}
	req := service.LoginRequest{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Remember: r.PostForm.Get("remember") != "",
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		page := view.Page{
			Title:   "Login",
			Content: r.URL.RequestURI(),
			Form:    map[string]string{"email": req.Email},
		}
		if req.Remember {
			page.Form["remember"] = "y"
		}
		switch fields, isValidation := common.FieldErrors(err); {
		case isValidation:
			page.Errors = fields
		case errors.Is(err, common.ErrUnauthorized):
			flash.Add(r, flash.Danger, "Login Unsuccessful. Please check email and password")
		default:
			respondError(w, r, err)
			return
		}
		h.view.Render(w, r, http.StatusOK, view.PageLogin, page)
		return
	}

	cookie := &http.Cookie{
		Name:     security.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if res.Persistent {
		cookie.MaxAge = int(res.TTL.Seconds())
		cookie.Expires = time.Now().Add(res.TTL)
	}
	http.SetCookie(w, cookie)
	common.RedirectNext(w, r, "/")
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if sc, err := security.SessionClaimsFrom(claims); err == nil {
			if err := h.authService.Logout(r.Context(), sc.SessionID); err != nil {
				respondError(w, r, err)
				return
			}
		}
	}

	if _, err := r.Cookie(security.SessionCookie); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     security.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	flash.Add(r, flash.Success, "Logout Successful!")
	common.RedirectNext(w, r, "/")
}
