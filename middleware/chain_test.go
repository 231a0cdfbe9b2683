package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authgate-dev/authgate"
	"github.com/authgate-dev/authgate/userstore/memory"
)

func newTestEngine(t *testing.T) (*authgate.Engine, *memory.Store) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := authgate.DefaultConfig()
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte("test-secret")
	cfg.Session.TTL = time.Hour
	cfg.Password.Memory = 16 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	store := memory.New()
	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})).
		WithUserStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, store
}

func bearerToken(t *testing.T, engine *authgate.Engine, role authgate.Role) string {
	t.Helper()

	email := "user@example.com"
	if role == authgate.RoleAdmin {
		email = "admin@example.com"
	}
	resp, err := engine.Register(context.Background(), authgate.RegisterRequest{
		Email:    email,
		Password: "new-password-123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, _ := resp.Credential.Token()
	return token
}

// echoIdentity answers 200 with the resolved username, or "anonymous".
func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFromContext(r.Context()); ok {
			_, _ = w.Write([]byte(id.Username))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func testDispatcher(engine *authgate.Engine) *Dispatcher {
	return NewDispatcher(echoIdentity(),
		&Pipeline{
			Prefix:   "/api/",
			Resolver: NewBearerResolver(engine),
			Rules: []Rule{
				{Prefix: "/api/v1/auth/", Access: AccessPublic},
				{Prefix: "/api/v1/admin/", Access: AccessAdmin},
			},
			DefaultAccess: AccessAuthenticated,
		},
		&Pipeline{
			Prefix:   "/",
			Resolver: NewSessionResolver(engine),
			Rules: []Rule{
				{Prefix: "/ui/auth/", Access: AccessPublic},
				{Prefix: "/ui/admin/", Access: AccessAdmin},
				{Prefix: "/ui/", Access: AccessAuthenticated},
				{Prefix: "/css/", Access: AccessPublic},
				{Prefix: "/login", Access: AccessPublic},
				{Prefix: "/register", Access: AccessPublic},
				{Prefix: "/", Access: AccessPublic},
			},
			DefaultAccess: AccessAuthenticated,
		},
	)
}

func TestPublicRuleAdmitsAnonymous(t *testing.T) {
	engine, _ := newTestEngine(t)
	d := testDispatcher(engine)

	for _, path := range []string{"/api/v1/auth/register", "/ui/auth/session/login", "/css/site.css", "/login", "/register", "/"} {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Body.String() != "anonymous" {
			t.Fatalf("%s: expected anonymous, got %s", path, rec.Body.String())
		}
	}
}

func TestAuthenticatedRuleRejectsAnonymous(t *testing.T) {
	engine, _ := newTestEngine(t)
	d := testDispatcher(engine)

	for _, path := range []string{"/api/v1/orders", "/ui/dashboard", "/unknown/page"} {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestBearerTokenAuthenticatesAPIRequest(t *testing.T) {
	engine, _ := newTestEngine(t)
	d := testDispatcher(engine)
	token := bearerToken(t, engine, authgate.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user@example.com" {
		t.Fatalf("expected identity in handler, got %s", rec.Body.String())
	}
}

func TestAdminRuleChecksRole(t *testing.T) {
	engine, _ := newTestEngine(t)
	d := testDispatcher(engine)

	userToken := bearerToken(t, engine, authgate.RoleUser)
	adminToken := bearerToken(t, engine, authgate.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER on admin path, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for ADMIN, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestInvalidBearerTokenLeavesRequestAnonymous(t *testing.T) {
	engine, _ := newTestEngine(t)
	d := testDispatcher(engine)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestLongestPrefixSelectsPipeline(t *testing.T) {
	engine, _ := newTestEngine(t)
	d := testDispatcher(engine)
	token := bearerToken(t, engine, authgate.RoleUser)

	// A session cookie must not authenticate an /api/ request even though the
	// catch-all pipeline would accept it.
	sid, err := engine.RegisterSession(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sid})
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected cookie to be ignored on /api/, got %d", rec.Code)
	}

	// And a bearer token must still work there.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRuleMatchingSemantics(t *testing.T) {
	cases := []struct {
		rule Rule
		path string
		want bool
	}{
		{Rule{Prefix: "/"}, "/", true},
		{Rule{Prefix: "/"}, "/anything", false},
		{Rule{Prefix: "/login"}, "/login", true},
		{Rule{Prefix: "/login"}, "/login/extra", false},
		{Rule{Prefix: "/css/"}, "/css/site.css", true},
		{Rule{Prefix: "/css/"}, "/cssx", false},
		{Rule{Prefix: "/ui/admin/"}, "/ui/admin/users", true},
		{Rule{Prefix: "/ui/admin/"}, "/ui/adminx", false},
	}
	for _, c := range cases {
		if got := c.rule.match(c.path); got != c.want {
			t.Fatalf("rule %q path %q: expected %v, got %v", c.rule.Prefix, c.path, c.want, got)
		}
	}
}

func TestNoPipelineMatchIs404(t *testing.T) {
	engine, _ := newTestEngine(t)

	d := NewDispatcher(echoIdentity(),
		&Pipeline{
			Prefix:        "/api/",
			Resolver:      NewBearerResolver(engine),
			DefaultAccess: AccessPublic,
		},
	)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
