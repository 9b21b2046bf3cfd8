package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

type stubUsers map[uint]models.User

func (s stubUsers) Get(ctx context.Context, id uint) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, services.NotFoundError{Resource: "User"}
	}
	return &u, nil
}

func newUser(id, univ uint, role string) models.User {
	u := models.User{UniversityID: univ, Role: role, Email: "x@example.edu"}
	u.ID = id
	return u
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("mw-secret", time.Hour)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c), "univ": CurrentUniversityID(c)})
	})

	w := serve(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", w.Code)
	}
	body := errorOf(t, w)
	if body["error"] != "No token, authorization denied" || body["request_id"] == "" {
		t.Fatalf("no token body: %v", body)
	}

	w = serve(r, "garbage")
	if w.Code != http.StatusUnauthorized || errorOf(t, w)["message"] != "Token is not valid" {
		t.Fatalf("bad token: %d %s", w.Code, w.Body.String())
	}

	token, _, err := tokens.Generate(newUser(7, 3, models.RoleStudent))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	w = serve(r, token)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"user":7`) || !strings.Contains(w.Body.String(), `"univ":3`) {
		t.Fatalf("valid token: %d %s", w.Code, w.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokenManager("mw-secret", time.Hour)
	users := stubUsers{
		1: newUser(1, 5, models.RoleAdmin),
		2: newUser(2, 5, models.RoleStudent),
	}
	ran := 0
	r := gin.New()
	r.GET("/", RequireAdmin(tokens, users), func(c *gin.Context) {
		ran++
		c.JSON(http.StatusOK, gin.H{"univ": CurrentUniversityID(c)})
	})

	tokenFor := func(u models.User) string {
		tok, _, err := tokens.Generate(u)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return tok
	}

	// A stale token claiming another university still resolves to the stored one.
	admin := users[1]
	admin.UniversityID = 99
	w := serve(r, tokenFor(admin))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"univ":5`) {
		t.Fatalf("admin: %d %s", w.Code, w.Body.String())
	}

	if ran != 1 {
		t.Fatalf("handler ran %d times for admin", ran)
	}

	w = serve(r, tokenFor(users[2]))
	if w.Code != http.StatusForbidden || errorOf(t, w)["error"] != "Access denied: Admins only" {
		t.Fatalf("student: %d %s", w.Code, w.Body.String())
	}
	if ran != 1 {
		t.Fatalf("handler ran for a student")
	}

	w = serve(r, tokenFor(newUser(42, 5, models.RoleAdmin)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: %d %s", w.Code, w.Body.String())
	}

	w = serve(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
	if ran != 1 {
		t.Fatalf("handler ran %d times, want 1", ran)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := serve(r, "")
	minted := w.Header().Get(RequestIDHeader)
	if minted == "" || w.Body.String() != minted {
		t.Fatalf("minted id %q, body %q", minted, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("caller id not reused: %q", w.Header().Get(RequestIDHeader))
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.edu"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.edu" {
		t.Fatalf("allow origin = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials not allowed for explicit origin")
	}
}

func TestAccessLogTagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), AccessLog(&buf))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "log-me")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	out := buf.String()
	if !strings.Contains(out, "log-me") || !strings.Contains(out, "/ping") {
		t.Fatalf("access log missing request: %q", out)
	}
	if strings.Contains(out, "/api/health") {
		t.Fatalf("health check was logged: %q", out)
	}
}
