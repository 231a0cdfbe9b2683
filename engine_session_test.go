package authgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func createTestAccount(t *testing.T, engine *Engine, email string) {
	t.Helper()

	if _, err := engine.CreateAccount(context.Background(), RegisterRequest{
		Firstname: "Alice",
		Lastname:  "Smith",
		Email:     email,
		Password:  "new-password-123",
	}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
}

func TestSessionLoginIssuesSessionCredential(t *testing.T) {
	store := newMockUserStore()
	engine, _ := newTestEngine(t, testEngineConfig(), store)
	createTestAccount(t, engine, "alice@example.com")

	resp, err := engine.SessionLogin(context.Background(), AuthenticationRequest{
		Email:    "alice@example.com",
		Password: "new-password-123",
	})
	if err != nil {
		t.Fatalf("SessionLogin failed: %v", err)
	}

	if resp.Credential.Kind() != KindSession {
		t.Fatalf("expected session credential, got %s", resp.Credential.Kind())
	}
	sid, ok := resp.Credential.SessionID()
	if !ok || sid == "" {
		t.Fatal("expected a non-empty session id")
	}
	if _, ok := resp.Credential.Token(); ok {
		t.Fatal("session credential must not expose a bearer token")
	}
	if resp.Firstname != "Alice" || resp.Lastname != "Smith" {
		t.Fatalf("unexpected response %+v", resp)
	}

	id, ok := engine.ResolveSession(context.Background(), sid)
	if !ok {
		t.Fatal("expected session to resolve")
	}
	if id.Username != "alice@example.com" || !id.HasRole(RoleUser) {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestSessionRegisterEstablishesSession(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())

	resp, err := engine.SessionRegister(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "new-password-123",
	})
	if err != nil {
		t.Fatalf("SessionRegister failed: %v", err)
	}

	sid, ok := resp.Credential.SessionID()
	if !ok {
		t.Fatal("expected a session credential")
	}
	if _, ok := engine.ResolveSession(context.Background(), sid); !ok {
		t.Fatal("expected fresh registration to be logged in")
	}
}

func TestSessionLoginWrongPasswordRejected(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())
	createTestAccount(t, engine, "alice@example.com")

	_, err := engine.SessionLogin(context.Background(), AuthenticationRequest{
		Email:    "alice@example.com",
		Password: "wrong-password-1",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterSessionEmptyUsernameRejected(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())

	if _, err := engine.RegisterSession(context.Background(), ""); !errors.Is(err, ErrUsernameRequired) {
		t.Fatalf("expected ErrUsernameRequired, got %v", err)
	}
}

func TestResolveSessionUnknownID(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())

	if _, ok := engine.ResolveSession(context.Background(), "forged-session-id"); ok {
		t.Fatal("expected forged session id to not resolve")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSessionMissing] != 1 {
		t.Fatalf("expected session missing counter 1, got %d", snap.Counters[MetricSessionMissing])
	}
}

func TestResolveSessionVanishedAccount(t *testing.T) {
	store := newMockUserStore()
	engine, _ := newTestEngine(t, testEngineConfig(), store)
	createTestAccount(t, engine, "alice@example.com")

	sid, err := engine.RegisterSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	store.mu.Lock()
	delete(store.users, "alice@example.com")
	store.mu.Unlock()

	if _, ok := engine.ResolveSession(context.Background(), sid); ok {
		t.Fatal("expected session of a deleted account to not resolve")
	}
}

func TestSessionLogoutInvalidates(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())
	createTestAccount(t, engine, "alice@example.com")

	sid, err := engine.RegisterSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	engine.SessionLogout(context.Background(), sid)

	if _, ok := engine.ResolveSession(context.Background(), sid); ok {
		t.Fatal("expected logged-out session to not resolve")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSessionInvalidated] != 1 {
		t.Fatalf("expected invalidated counter 1, got %d", snap.Counters[MetricSessionInvalidated])
	}
}

func TestSessionRefreshSlidesExpiry(t *testing.T) {
	engine, mr := newTestEngine(t, testEngineConfig(), newMockUserStore())
	createTestAccount(t, engine, "alice@example.com")

	sid, err := engine.RegisterSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	mr.FastForward(40 * time.Minute)
	engine.SessionRefresh(context.Background(), sid)
	mr.FastForward(40 * time.Minute)

	if _, ok := engine.ResolveSession(context.Background(), sid); !ok {
		t.Fatal("expected refreshed session to survive")
	}
}

func TestSessionSurvivesRedisOutage(t *testing.T) {
	store := newMockUserStore()
	engine, mr := newTestEngine(t, testEngineConfig(), store)
	createTestAccount(t, engine, "alice@example.com")

	mr.Close()

	resp, err := engine.SessionLogin(context.Background(), AuthenticationRequest{
		Email:    "alice@example.com",
		Password: "new-password-123",
	})
	if err != nil {
		t.Fatalf("expected login to succeed during the outage, got %v", err)
	}

	sid, _ := resp.Credential.SessionID()
	id, ok := engine.ResolveSession(context.Background(), sid)
	if !ok || id.Username != "alice@example.com" {
		t.Fatalf("expected fallback session to resolve, ok=%v id=%+v", ok, id)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricStoreFallback] == 0 {
		t.Fatal("expected fallback counter to increment")
	}
}

func TestSingleSessionLoginSupersedes(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())
	createTestAccount(t, engine, "alice@example.com")

	login := func() string {
		t.Helper()
		resp, err := engine.SessionLogin(context.Background(), AuthenticationRequest{
			Email:    "alice@example.com",
			Password: "new-password-123",
		})
		if err != nil {
			t.Fatalf("SessionLogin failed: %v", err)
		}
		sid, _ := resp.Credential.SessionID()
		return sid
	}

	first := login()
	second := login()

	if _, ok := engine.ResolveSession(context.Background(), first); ok {
		t.Fatal("expected first session to be superseded by the second login")
	}
	if _, ok := engine.ResolveSession(context.Background(), second); !ok {
		t.Fatal("expected second session to resolve")
	}
}

func TestVerifyTokenGarbageRejected(t *testing.T) {
	engine, _ := newTestEngine(t, testEngineConfig(), newMockUserStore())

	if _, err := engine.VerifyToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricTokenRejected] != 1 {
		t.Fatalf("expected token rejected counter 1, got %d", snap.Counters[MetricTokenRejected])
	}
}
