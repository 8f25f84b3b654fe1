package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/recipe-community/internal/cache"
	"github.com/msomdec/recipe-community/internal/events"
	"github.com/msomdec/recipe-community/internal/handler"
	"github.com/msomdec/recipe-community/internal/repository/sqlite"
	"github.com/msomdec/recipe-community/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

type testApp struct {
	services handler.Services
	hub      *events.Hub
	db       *sqlite.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := events.NewHub()
	photos := service.NewPhotoService(db.Photos(), db.FileStore(), "/static/default-avatar.png")
	return &testApp{
		services: handler.Services{
			Auth:     service.NewAuthService(db.Users(), testJWTSecret, 4),
			Posts:    service.NewPostService(db.Posts(), photos, hub),
			Feed:     service.NewFeedService(db.Posts()),
			Social:   service.NewSocialService(db.Follows(), db.Users(), cache.NewMemory(), time.Minute, hub),
			Profiles: service.NewProfileService(db.Users(), db.Follows(), db.Recipes(), db.Posts(), photos),
			Recipes:  service.NewRecipeService(db.Recipes(), photos),
			Photos:   photos,
			Events:   hub,
		},
		hub: hub,
		db:  db,
	}
}

func newTestServer(t *testing.T, opts handler.Options) (*httptest.Server, *testApp) {
	t.Helper()
	app := newTestApp(t)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, app.services, opts)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, app
}

// apiClient is a cookie-carrying JSON client against a test server.
type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *apiClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &apiClient{t: t, base: srv.URL, http: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

// do sends body as JSON (when non-nil), decodes the response into out (when
// non-nil) and returns the status code.
func (c *apiClient) do(method, path string, body, out any) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// upload posts a multipart form with the given fields and a "photo" file.
func (c *apiClient) upload(path string, fields map[string]string, photo []byte, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			c.t.Fatalf("write field: %v", err)
		}
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "dish.png")
		if err != nil {
			c.t.Fatalf("create form file: %v", err)
		}
		fw.Write(photo)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *apiClient) send(req *http.Request, out any) int {
	c.t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", req.Method, req.URL.Path, err)
		}
	}
	return resp.StatusCode
}

// signUp registers and logs in a user, returning its ID.
func (c *apiClient) signUp(email, name string) int64 {
	c.t.Helper()
	creds := map[string]string{
		"email": email, "displayName": name,
		"password": "password123", "confirmPassword": "password123",
	}
	if code := c.do(http.MethodPost, "/api/auth/register", creds, nil); code != http.StatusCreated {
		c.t.Fatalf("register %s: expected 201, got %d", email, code)
	}
	var me struct {
		User handler.UserDTO `json:"user"`
	}
	if code := c.do(http.MethodPost, "/api/auth/login", creds, &me); code != http.StatusOK {
		c.t.Fatalf("login %s: expected 200, got %d", email, code)
	}
	return me.User.ID
}

func registerAndLogin(t *testing.T, auth *service.AuthService, email, name string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := auth.Register(ctx, email, name, "password123", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func TestRequireAuth_ValidJWT(t *testing.T) {
	auth := newTestApp(t).services.Auth
	token := registerAndLogin(t, auth, "valid@example.com", "Valid User")

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := handler.UserFromContext(r.Context()); user != nil {
			gotUser = user.DisplayName
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUser != "Valid User" {
		t.Fatalf("expected user 'Valid User', got %q", gotUser)
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	auth := newTestApp(t).services.Auth
	token := registerAndLogin(t, auth, "tamper@example.com", "Tamper")

	tests := []struct {
		name   string
		cookie string
	}{
		{"missing cookie", ""},
		{"invalid token", "invalid.jwt.token"},
		{"tampered token", token[:len(token)-1] + "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("inner handler should not be called")
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			handler.RequireAuth(auth, inner).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected JSON error, got %q", ct)
			}
		})
	}
}

func TestOptionalAuth_WithToken(t *testing.T) {
	auth := newTestApp(t).services.Auth
	token := registerAndLogin(t, auth, "opt@example.com", "Optional")

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := handler.UserFromContext(r.Context()); user != nil {
			gotUser = user.DisplayName
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.OptionalAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUser != "Optional" {
		t.Fatalf("expected user 'Optional', got %q", gotUser)
	}
}

func TestOptionalAuth_WithoutToken(t *testing.T) {
	auth := newTestApp(t).services.Auth

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if handler.UserFromContext(r.Context()) != nil {
			t.Error("expected nil user in context for unauthenticated request")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.OptionalAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK || !called {
		t.Fatalf("expected inner handler to run, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := service.NewTokenBucket(0.001, 2)
	t.Cleanup(limiter.Close)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RateLimit(limiter, inner)

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	for i := range 2 {
		if w := do("10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	w := do("10.0.0.1:5678")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the bucket is empty, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if w := do("10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Fatalf("other clients should be unaffected, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := handler.SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected a Content-Security-Policy")
	}
}

func TestLogRequests_PassesThroughFlusher(t *testing.T) {
	h := handler.LogRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("expected wrapped writer to implement http.Flusher")
		}
		w.WriteHeader(http.StatusAccepted)
		f.Flush()
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if !w.Flushed {
		t.Fatal("expected flush to reach the underlying writer")
	}
}
