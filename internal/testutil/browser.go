package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const browserOrigin = "http://ocpe.test"

// Browser drives a handler like a user agent: cookies set by one response are
// sent with the next request. Redirects are not followed.
type Browser struct {
	t       *testing.T
	handler http.Handler
	jar     *cookiejar.Jar
	origin  *url.URL
}

func NewBrowser(t *testing.T, h http.Handler) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	origin, _ := url.Parse(browserOrigin)
	return &Browser{t: t, handler: h, jar: jar, origin: origin}
}

func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.Do(httptest.NewRequest(http.MethodGet, browserOrigin+path, nil))
}

func (b *Browser) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, browserOrigin+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// Do sends req with the jar's cookies and stores the cookies it sets.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.jar.Cookies(b.origin) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	b.jar.SetCookies(b.origin, rec.Result().Cookies())
	return rec
}

// Cookie returns the jar's current value for name, or nil.
func (b *Browser) Cookie(name string) *http.Cookie {
	for _, c := range b.jar.Cookies(b.origin) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SetCookie plants a cookie as if a response had set it.
func (b *Browser) SetCookie(c *http.Cookie) {
	b.jar.SetCookies(b.origin, []*http.Cookie{c})
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302 to location.
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// ResponseCookie returns the cookie named name set by w, or nil.
func ResponseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
