package common

import (
	"net/http"
	"net/url"
	"strings"

	"ocpe/internal/common/flash"
)

// RespondWithError writes a plain-text error page. Used for failures that have
// no template of their own.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	if message == "" {
		message = http.StatusText(code)
	}
	http.Error(w, message, code)
}

// Redirect persists pending flash messages and issues a 302.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	flash.Save(w, r)
	http.Redirect(w, r, target, http.StatusFound)
}

// RedirectNext redirects to the request's local "next" parameter, or fallback.
func RedirectNext(w http.ResponseWriter, r *http.Request, fallback string) {
	Redirect(w, r, NextTarget(r, fallback))
}

// NextTarget returns the "next" query parameter when it is a local path.
func NextTarget(r *http.Request, fallback string) string {
	if next := r.URL.Query().Get("next"); IsLocalPath(next) {
		return next
	}
	return fallback
}

// IsLocalPath accepts "/path?query" style targets on this host only.
func IsLocalPath(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
