package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/store/memory"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestLoginBootstrapsDefault(t *testing.T) {
	ctx := context.Background()
	creds := memory.New()
	svc := NewService(creds, "", testLogger())

	if err := svc.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	c, _ := creds.GetAdminCredential(ctx)
	if c == nil || strings.Contains(c.PasswordHash, DefaultPassword) {
		t.Fatalf("credential not bootstrapped with a hash: %+v", c)
	}
	if err := svc.Login(ctx, "admin", DefaultPassword); err != nil {
		t.Fatalf("default password rejected: %v", err)
	}
	if err := svc.Login(ctx, "root", DefaultPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("other usernames must be rejected, got %v", err)
	}
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	ctx := context.Background()
	creds := memory.New()
	_ = creds.SaveAdminCredential(ctx, core.AdminCredential{Username: "admin", PasswordHash: LegacyHash("secret1")})
	svc := NewService(creds, "", testLogger())

	if err := svc.Login(ctx, "admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if err := svc.Login(ctx, "admin", "secret1"); err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}
	c, _ := creds.GetAdminCredential(ctx)
	if !strings.HasPrefix(c.PasswordHash, "$2") {
		t.Fatalf("hash not upgraded: %q", c.PasswordHash)
	}
	if err := svc.Login(ctx, "admin", "secret1"); err != nil {
		t.Fatalf("login after upgrade failed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), "start1", testLogger())

	tests := []struct {
		name                   string
		current, next, confirm string
		want                   error
	}{
		{"wrong current", "bad", "abcdef", "abcdef", ErrInvalidCredentials},
		{"too short", "start1", "abc", "abc", ErrPasswordTooShort},
		{"too long", "start1", strings.Repeat("가", 25), strings.Repeat("가", 25), ErrPasswordTooLong},
		{"mismatch", "start1", "abcdef", "abcdeg", ErrPasswordMismatch},
		{"ok", "start1", "abcdef", "abcdef", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.ChangePassword(ctx, tt.current, tt.next, tt.confirm); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
	if err := svc.Login(ctx, "admin", "abcdef"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if err := svc.Login(ctx, "admin", "start1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password still accepted")
	}
}

func TestSessions(t *testing.T) {
	s := NewSessions("test-secret", time.Hour, false)
	rec := httptest.NewRecorder()
	if err := s.Issue(rec); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || cookies[0].Name != CookieName {
		t.Fatalf("unexpected cookie %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if sub, err := s.Verify(req); err != nil || sub != core.AdminUsername {
		t.Fatalf("verify: %q %v", sub, err)
	}

	other := NewSessions("other-secret", time.Hour, false)
	if _, err := other.Verify(req); !errors.Is(err, ErrNoSession) {
		t.Fatal("token accepted with wrong secret")
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := s.Verify(req); !errors.Is(err, ErrNoSession) {
		t.Fatal("expired token accepted")
	}

	if _, err := s.Verify(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNoSession) {
		t.Fatal("request without cookie accepted")
	}
}
