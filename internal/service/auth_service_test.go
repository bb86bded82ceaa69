package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/model"
)

func newAuthFixture() (*AuthService, *memSessionStore) {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // min cost keeps the test fast
	}
	sessions := &memSessionStore{}
	svc := NewAuthService(cfg, &memCredentialStore{}, sessions, zerolog.Nop())
	return svc, sessions
}

func TestLoginSuccessPerRole(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	cases := []struct {
		role     model.Role
		username string
		password string
		display  string
	}{
		{model.RoleAdmin, "admin", "admin123", "Administrator"},
		{model.RoleTeacher, "teacher", "teacher123", "Teacher"},
		{model.RoleStudent, "student", "student123", "Student"},
	}

	for _, tc := range cases {
		token, session, err := svc.Login(ctx, tc.username, tc.password, tc.role)
		if err != nil {
			t.Fatalf("login %s: %v", tc.role, err)
		}
		if token == "" {
			t.Fatalf("login %s: empty token", tc.role)
		}
		if session.Role != tc.role || session.DisplayName != tc.display {
			t.Fatalf("login %s: session = %+v", tc.role, session)
		}
		if session.LoginAt.IsZero() {
			t.Fatalf("login %s: loginTimestamp not stamped", tc.role)
		}

		claims, err := svc.ValidateToken(token)
		if err != nil {
			t.Fatalf("validate %s: %v", tc.role, err)
		}
		if claims.Role != tc.role || claims.ID != session.JTI {
			t.Fatalf("claims mismatch: %+v vs session %+v", claims, session)
		}
	}
}

func TestLoginRoleIsPartOfLookupKey(t *testing.T) {
	svc, sessions := newAuthFixture()
	ctx := context.Background()

	// Correct admin credentials presented under the teacher role must fail.
	_, _, err := svc.Login(ctx, "admin", "admin123", model.RoleTeacher)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("cross-role login err = %v, want ErrInvalidCredentials", err)
	}
	if s, _ := sessions.Get(ctx); s != nil {
		t.Fatal("failed login must not establish a session")
	}

	// Wrong password and unknown role also fail cleanly.
	if _, _, err := svc.Login(ctx, "admin", "nope", model.RoleAdmin); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "admin", "admin123", model.Role("root")); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown role err = %v", err)
	}
}

func TestNewLoginReplacesSession(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	firstToken, first, err := svc.Login(ctx, "teacher", "teacher123", model.RoleTeacher)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, second, err := svc.Login(ctx, "admin", "admin123", model.RoleAdmin)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.JTI == second.JTI {
		t.Fatal("sessions must have distinct JTIs")
	}

	// The first token's session was replaced.
	firstClaims, err := svc.ValidateToken(firstToken)
	if err != nil {
		t.Fatalf("first token should still parse: %v", err)
	}
	if err := svc.CheckActiveSession(ctx, firstClaims.ID); !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("replaced session check = %v, want ErrSessionInvalidated", err)
	}
	if err := svc.CheckActiveSession(ctx, second.JTI); err != nil {
		t.Fatalf("active session check: %v", err)
	}
}

func TestLogoutCycle(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, session, err := svc.Login(ctx, "student", "student123", model.RoleStudent)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !svc.HasActiveSession(ctx) {
		t.Fatal("expected active session after login")
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.HasActiveSession(ctx) {
		t.Fatal("expected no session after logout")
	}
	if err := svc.CheckActiveSession(ctx, session.JTI); !errors.Is(err, ErrNoSession) {
		t.Fatalf("post-logout check = %v, want ErrNoSession", err)
	}

	// The cycle is repeatable.
	if _, _, err := svc.Login(ctx, "student", "student123", model.RoleStudent); err != nil {
		t.Fatalf("re-login: %v", err)
	}
}

func TestSessionResumeAcrossRestart(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	creds := &memCredentialStore{}
	sessions := &memSessionStore{}
	ctx := context.Background()

	first := NewAuthService(cfg, creds, sessions, zerolog.Nop())
	token, session, err := first.Login(ctx, "admin", "admin123", model.RoleAdmin)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// A fresh service over the same stores models a process restart: the
	// persisted session resumes without re-authentication.
	restarted := NewAuthService(cfg, creds, sessions, zerolog.Nop())
	claims, err := restarted.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate after restart: %v", err)
	}
	if err := restarted.CheckActiveSession(ctx, claims.ID); err != nil {
		t.Fatalf("resume check: %v", err)
	}
	resumed, err := restarted.ActiveSession(ctx)
	if err != nil || resumed == nil || resumed.JTI != session.JTI {
		t.Fatalf("resumed session = %+v, err = %v", resumed, err)
	}
}
