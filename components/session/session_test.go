package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-metrics-admin/components/metrics"
)

func newTestManager(opts Options) *Manager {
	if opts.Secret == "" {
		opts.Secret = "test-secret"
	}
	return NewManager(opts)
}

func TestAuthenticateDemoCredentials(t *testing.T) {
	manager := newTestManager(Options{})

	admin, err := manager.Authenticate("admin", "admin")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if admin.Role != metrics.RoleAdmin || admin.UserID != "admin" {
		t.Fatalf("expected admin viewer, got %#v", admin)
	}

	user, err := manager.Authenticate("user", "user")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.Role != metrics.RoleUser {
		t.Fatalf("expected user role, got %#v", user)
	}
}

func TestAuthenticateRejectsBadPairs(t *testing.T) {
	manager := newTestManager(Options{})
	cases := [][2]string{
		{"admin", "wrong"},
		{"user", "admin"},
		{"nobody", "nobody"},
		{"", ""},
		{"Admin", "admin"},
	}
	for _, pair := range cases {
		viewer, err := manager.Authenticate(pair[0], pair[1])
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q/%q, got %v", pair[0], pair[1], err)
		}
		if viewer.Role != metrics.RoleNone {
			t.Fatalf("expected RoleNone on failure, got %#v", viewer)
		}
	}
}

func TestLoginRoundTrip(t *testing.T) {
	manager := newTestManager(Options{})
	token, viewer, err := manager.Login(context.Background(), "admin", "admin")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}

	decoded, err := manager.DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken returned error: %v", err)
	}
	if decoded != viewer {
		t.Fatalf("expected %#v, got %#v", viewer, decoded)
	}
}

func TestDecodeTokenFailsClosed(t *testing.T) {
	manager := newTestManager(Options{})
	for _, token := range []string{"", "garbage", "a.b.c"} {
		viewer, err := manager.DecodeToken(token)
		if !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("expected ErrMalformedToken for %q, got %v", token, err)
		}
		if viewer.Role != metrics.RoleNone || viewer.UserID != "" {
			t.Fatalf("expected anonymous viewer, got %#v", viewer)
		}
	}
}

func TestDecodeTokenRejectsForeignSignature(t *testing.T) {
	issuer := newTestManager(Options{Secret: "issuer-secret"})
	verifier := newTestManager(Options{Secret: "other-secret"})

	token, _, err := issuer.Login(context.Background(), "admin", "admin")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if _, err := verifier.DecodeToken(token); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for foreign signature, got %v", err)
	}
}

func TestDecodeTokenRejectsExpired(t *testing.T) {
	past := time.Now().UTC().Add(-24 * time.Hour)
	manager := newTestManager(Options{
		TokenTTL: time.Hour,
		Clock:    func() time.Time { return past },
	})
	token, _, err := manager.Login(context.Background(), "user", "user")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if _, err := manager.DecodeToken(token); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	manager := newTestManager(Options{})
	token, _, err := manager.Login(context.Background(), "user", "user")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	manager.Logout(token)
	if _, err := manager.DecodeToken(token); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected logged-out token rejected, got %v", err)
	}
	manager.Logout("not-a-token")
}

func TestFileTokenStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileTokenStore(path)

	if err := store.Save("jti-1", "admin"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reopened := NewFileTokenStore(path)
	active, err := reopened.Active("jti-1")
	if err != nil {
		t.Fatalf("Active returned error: %v", err)
	}
	if !active {
		t.Fatal("expected token to survive reopen")
	}

	if err := reopened.Delete("jti-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if active, _ := reopened.Active("jti-1"); active {
		t.Fatal("expected token removed")
	}
}
