package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"ocpe/internal/api/view"
	"ocpe/internal/app/service"
	"ocpe/internal/app/session"
	"ocpe/internal/common/flash"
	"ocpe/internal/common/security"
	"ocpe/internal/domain/repository"
	"ocpe/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
)

type testApp struct {
	db     *sqlx.DB
	mr     *miniredis.Miniredis
	router http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := testutil.SetupConfig(t)
	db := testutil.SetupTestDB(t, cfg)
	rdb, mr := testutil.SetupRedis(t)

	sessions := session.NewStore(rdb, cfg.SessionKeyPrefix)
	authService := service.NewAuthService(repository.NewSQLUserRepository(db), sessions, cfg.SessionTTL, cfg.RememberTTL)
	problemService := service.NewProblemService(repository.NewSQLProblemRepository(db))

	renderer, err := view.New()
	if err != nil {
		t.Fatalf("view.New() error: %v", err)
	}

	router := NewRouter(authService, problemService, renderer, RouterOptions{
		ProblemCreatedRedirect: cfg.ProblemCreatedRedirect,
	})
	return &testApp{db: db, mr: mr, router: router}
}

func (a *testApp) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := a.db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func signupForm(username, email, role string) url.Values {
	return url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
		"type":             {role},
	}
}

// signedIn returns a browser logged in as a fresh user of role, with no
// flash messages pending.
func (a *testApp) signedIn(t *testing.T, username, role string) *testutil.Browser {
	t.Helper()
	b := testutil.NewBrowser(t, a.router)
	email := username + "@example.com"
	testutil.AssertRedirect(t, b.PostForm("/signup", signupForm(username, email, role)), "/login")
	testutil.AssertRedirect(t, b.PostForm("/login", url.Values{"email": {email}, "password": {"secret1"}}), "/")
	b.Get("/")
	return b
}

func problemForm(name string) url.Values {
	return url.Values{
		"name":        {name},
		"title":       {"Sum of " + name},
		"description": {"Print a+b."},
		"test_input":  {"1 2"},
		"test_output": {"3"},
		"score":       {"100"},
	}
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("body does not contain %q:\n%s", want, body)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w := testutil.NewBrowser(t, app.router).Get("/health")
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Body.String() != "OK" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestStaticPages(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)

	pages := map[string]string{
		"/":         "Online Coding Practice Environment",
		"/home":     "Online Coding Practice Environment",
		"/contests": "<title>OCPE - Contests</title>",
		"/contest":  "<title>OCPE - Contest #</title>",
	}
	for path, marker := range pages {
		t.Run(path, func(t *testing.T) {
			w := b.Get(path)
			testutil.AssertStatus(t, w, http.StatusOK)
			assertContains(t, w.Body.String(), marker)
		})
	}
}

func TestUnmatchedRouteRendersNotFound(t *testing.T) {
	app := newTestApp(t)
	w := testutil.NewBrowser(t, app.router).Get("/no/such/page")
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assertContains(t, w.Body.String(), "The page you are looking for does not exist.")
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)

	testutil.AssertStatus(t, b.Get("/signup"), http.StatusOK)

	w := b.PostForm("/signup", signupForm("alice", "alice@example.com", "contestant"))
	testutil.AssertRedirect(t, w, "/login")
	if n := app.count(t, "users"); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
	var hash string
	if err := app.db.Get(&hash, `SELECT hashed_password FROM users WHERE email = 'alice@example.com'`); err != nil {
		t.Fatalf("load hash: %v", err)
	}
	if hash == "secret1" || !security.CheckPasswordHash("secret1", hash) {
		t.Error("password should be stored as a bcrypt hash")
	}

	w = b.Get("/login")
	testutil.AssertStatus(t, w, http.StatusOK)
	assertContains(t, w.Body.String(), "Your account has been created! You are now able to log in")

	w = b.PostForm("/login", url.Values{"email": {"alice@example.com"}, "password": {"secret1"}})
	testutil.AssertRedirect(t, w, "/")
	c := testutil.ResponseCookie(w, security.SessionCookie)
	if c == nil || c.Value == "" {
		t.Fatal("login should set the session cookie")
	}
	if c.MaxAge != 0 || !c.HttpOnly {
		t.Errorf("session cookie MaxAge = %d, HttpOnly = %v; want browser-session HttpOnly cookie", c.MaxAge, c.HttpOnly)
	}

	w = b.Get("/account")
	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assertContains(t, body, "alice")
	assertContains(t, body, "alice@example.com")
	assertContains(t, body, "contestant")

	testutil.AssertRedirect(t, b.Get("/signup"), "/")
	testutil.AssertRedirect(t, b.Get("/login"), "/")

	w = b.Get("/logout")
	testutil.AssertRedirect(t, w, "/")
	if b.Cookie(security.SessionCookie) != nil {
		t.Error("logout should clear the session cookie")
	}
	assertContains(t, b.Get("/").Body.String(), "Logout Successful!")

	testutil.AssertRedirect(t, b.Get("/account"), "/login?next=%2Faccount")
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	b := app.signedIn(t, "alice", "contestant")
	stolen := b.Cookie(security.SessionCookie)
	if stolen == nil {
		t.Fatal("expected a session cookie")
	}

	testutil.AssertRedirect(t, b.Get("/logout"), "/")

	replay := testutil.NewBrowser(t, app.router)
	replay.SetCookie(&http.Cookie{Name: stolen.Name, Value: stolen.Value, Path: "/"})
	testutil.AssertRedirect(t, replay.Get("/account"), "/login?next=%2Faccount")
}

func TestLogoutWhileAnonymous(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)
	testutil.AssertRedirect(t, b.Get("/logout?next=%2Fcontests"), "/contests")
	assertContains(t, b.Get("/contests").Body.String(), "Logout Successful!")
}

func TestLoginFailureIsGeneric(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)
	testutil.AssertRedirect(t, b.PostForm("/signup", signupForm("alice", "alice@example.com", "judge")), "/login")
	b.Get("/login")

	attempts := map[string]url.Values{
		"wrong password": {"email": {"alice@example.com"}, "password": {"nope-nope"}},
		"unknown email":  {"email": {"bob@example.com"}, "password": {"secret1"}},
	}
	for name, form := range attempts {
		t.Run(name, func(t *testing.T) {
			w := b.PostForm("/login", form)
			testutil.AssertStatus(t, w, http.StatusOK)
			body := w.Body.String()
			assertContains(t, body, "Login Unsuccessful. Please check email and password")
			if strings.Contains(body, "is-invalid") {
				t.Error("the failure should not point at a specific field")
			}
			if testutil.ResponseCookie(w, security.SessionCookie) != nil {
				t.Error("a failed login must not set a session cookie")
			}
		})
	}

	if keys := app.mr.Keys(); len(keys) != 0 {
		t.Errorf("failed logins created sessions: %v", keys)
	}
	testutil.AssertRedirect(t, b.Get("/account"), "/login?next=%2Faccount")
}

func TestLoginRememberMe(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)
	b.PostForm("/signup", signupForm("alice", "alice@example.com", "judge"))

	w := b.PostForm("/login", url.Values{"email": {"alice@example.com"}, "password": {"secret1"}, "remember": {"y"}})
	testutil.AssertRedirect(t, w, "/")
	c := testutil.ResponseCookie(w, security.SessionCookie)
	if c == nil {
		t.Fatal("expected a session cookie")
	}
	if want := 30 * 24 * 60 * 60; c.MaxAge != want {
		t.Errorf("MaxAge = %d, want %d", c.MaxAge, want)
	}
}

func TestLoginFollowsLocalNext(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		next string
		want string
	}{
		{"/practice", "/practice"},
		{"https://evil.example/", "/"},
		{"//evil.example", "/"},
	}
	for i, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			b := testutil.NewBrowser(t, app.router)
			email := string(rune('a'+i)) + "user@example.com"
			b.PostForm("/signup", signupForm(string(rune('a'+i))+"user", email, "contestant"))
			w := b.PostForm("/login?next="+url.QueryEscape(tt.next), url.Values{"email": {email}, "password": {"secret1"}})
			testutil.AssertRedirect(t, w, tt.want)
		})
	}
}

func TestSignupValidationAndDuplicates(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"bad role", signupForm("alice", "alice@example.com", "admin"), "Not a valid choice."},
		{"short password", func() url.Values {
			f := signupForm("alice", "alice@example.com", "judge")
			f.Set("password", "abc")
			f.Set("confirm_password", "abc")
			return f
		}(), "Field must be at least 6 characters long."},
		{"mismatch", func() url.Values {
			f := signupForm("alice", "alice@example.com", "judge")
			f.Set("confirm_password", "other-secret")
			return f
		}(), "Field must be equal to password."},
		{"password too long to hash", func() url.Values {
			f := signupForm("alice", "alice@example.com", "judge")
			f.Set("password", strings.Repeat("p", 73))
			f.Set("confirm_password", strings.Repeat("p", 73))
			return f
		}(), "Field cannot be longer than 72 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := b.PostForm("/signup", tt.form)
			testutil.AssertStatus(t, w, http.StatusOK)
			assertContains(t, w.Body.String(), tt.want)
			assertContains(t, w.Body.String(), `value="alice@example.com"`)
		})
	}
	if n := app.count(t, "users"); n != 0 {
		t.Fatalf("invalid signups created %d users", n)
	}

	testutil.AssertRedirect(t, b.PostForm("/signup", signupForm("alice", "alice@example.com", "judge")), "/login")
	w := b.PostForm("/signup", signupForm("alice2", "alice@example.com", "contestant"))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertContains(t, w.Body.String(), "An account with that username or email already exists.")
	if n := app.count(t, "users"); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
}

func TestGatesRedirectAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)

	for _, path := range []string{"/create_problem", "/practice", "/account"} {
		t.Run(path, func(t *testing.T) {
			testutil.AssertRedirect(t, b.Get(path), "/login?next="+url.QueryEscape(path))
		})
	}
	w := b.PostForm("/create_problem", problemForm("Two Sum"))
	testutil.AssertRedirect(t, w, "/login?next=%2Fcreate_problem")
	if n := app.count(t, "problems"); n != 0 {
		t.Errorf("anonymous post stored %d problems", n)
	}
	assertContains(t, b.Get("/login").Body.String(), "Please log in to access this page.")
}

func TestGatesRejectWrongRole(t *testing.T) {
	app := newTestApp(t)
	contestant := app.signedIn(t, "cal", "contestant")
	judge := app.signedIn(t, "judy", "judge")

	w := contestant.Get("/create_problem")
	testutil.AssertRedirect(t, w, "/")
	if testutil.ResponseCookie(w, flash.CookieName) == nil {
		t.Error("expected a flash message with the redirect")
	}
	assertContains(t, contestant.Get("/").Body.String(), "Login as judge to access this page.")

	testutil.AssertRedirect(t, contestant.PostForm("/create_problem", problemForm("Two Sum")), "/")
	if n := app.count(t, "problems"); n != 0 {
		t.Errorf("contestant post stored %d problems", n)
	}

	testutil.AssertRedirect(t, judge.Get("/practice?next=%2Fcontests"), "/contests")
	assertContains(t, judge.Get("/contests").Body.String(), "Login as contestant to access this page.")
}

func TestCreateProblemAndPractice(t *testing.T) {
	app := newTestApp(t)
	judge := app.signedIn(t, "judy", "judge")
	contestant := app.signedIn(t, "cal", "contestant")

	testutil.AssertStatus(t, judge.Get("/create_problem"), http.StatusOK)

	for _, name := range []string{"Two Sum", "Three Sum"} {
		testutil.AssertRedirect(t, judge.PostForm("/create_problem", problemForm(name)), "/login")
	}
	if n := app.count(t, "problems"); n != 2 {
		t.Fatalf("problems = %d, want 2", n)
	}
	assertContains(t, judge.Get("/").Body.String(), "The problem has been added to practice section!")

	first := contestant.Get("/practice")
	testutil.AssertStatus(t, first, http.StatusOK)
	body := first.Body.String()
	two, three := strings.Index(body, "Two Sum"), strings.Index(body, "Three Sum")
	if two < 0 || three < 0 || two > three {
		t.Errorf("practice list should show problems in id order:\n%s", body)
	}

	second := contestant.Get("/practice")
	if first.Body.String() != second.Body.String() {
		t.Error("repeated /practice requests over an unchanged store should render identically")
	}

	var id int64
	if err := app.db.Get(&id, `SELECT id FROM problems WHERE code = 'two-sum'`); err != nil {
		t.Fatalf("load id: %v", err)
	}
	anon := testutil.NewBrowser(t, app.router)
	w := anon.Get("/problem/" + strconv.FormatInt(id, 10))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertContains(t, w.Body.String(), "Sum of Two Sum")
	assertContains(t, w.Body.String(), "<title>OCPE - Problem "+strconv.FormatInt(id, 10)+"</title>")
}

func TestCreateProblemInvalid(t *testing.T) {
	app := newTestApp(t)
	judge := app.signedIn(t, "judy", "judge")

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"non-numeric score", "score", "abc", "Not a valid integer value."},
		{"score out of range", "score", "1001", "Must be at most 1000."},
		{"score overflowing int", "score", "99999999999999999999", "Not a valid integer value."},
		{"name too long", "name", strings.Repeat("n", 101), "Field cannot be longer than 100 characters."},
		{"missing title", "title", "", "This field is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := problemForm("Two Sum")
			form.Set(tt.key, tt.value)
			w := judge.PostForm("/create_problem", form)
			testutil.AssertStatus(t, w, http.StatusOK)
			assertContains(t, w.Body.String(), tt.want)
		})
	}
	if n := app.count(t, "problems"); n != 0 {
		t.Errorf("invalid posts stored %d problems", n)
	}

	testutil.AssertRedirect(t, judge.PostForm("/create_problem", problemForm("Two Sum")), "/login")
	judge.Get("/")
	w := judge.PostForm("/create_problem", problemForm("two sum"))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertContains(t, w.Body.String(), "A problem with this name already exists.")
}

func TestMalformedFormIsBadRequest(t *testing.T) {
	app := newTestApp(t)
	judge := app.signedIn(t, "judy", "judge")

	for _, path := range []string{"/signup", "/login", "/create_problem"} {
		t.Run(path, func(t *testing.T) {
			b := testutil.NewBrowser(t, app.router)
			if path == "/create_problem" {
				b = judge
			}
			req := httptest.NewRequest(http.MethodPost, "http://ocpe.test"+path, strings.NewReader("name=%zz"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			testutil.AssertStatus(t, b.Do(req), http.StatusBadRequest)
		})
	}
	if n := app.count(t, "problems"); n != 0 {
		t.Errorf("malformed posts stored %d problems", n)
	}
}

func TestMissingProblemIsNotFound(t *testing.T) {
	app := newTestApp(t)
	b := testutil.NewBrowser(t, app.router)

	for _, path := range []string{"/problem/999999", "/problem/abc", "/problem/0"} {
		t.Run(path, func(t *testing.T) {
			w := b.Get(path)
			testutil.AssertStatus(t, w, http.StatusNotFound)
			assertContains(t, w.Body.String(), "The page you are looking for does not exist.")
		})
	}
}
