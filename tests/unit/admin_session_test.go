package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	adminsession "ovation/contexts/identity-access/admin-session-service"
	domainerrors "ovation/contexts/identity-access/admin-session-service/domain/errors"
)

func sessionModule() *adminsession.Module {
	return adminsession.NewInMemoryModule("correct horse", []byte("unit-test-signing-secret"), time.Hour, nil)
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	module := sessionModule()

	if _, err := module.Sessions.Login(context.Background(), "battery staple"); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := module.Sessions.Login(context.Background(), ""); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
	if count := module.Store.SessionCount(); count != 0 {
		t.Fatalf("rejected logins must not store sessions, got %d", count)
	}
}

func TestAdminLoginIssuesValidatableToken(t *testing.T) {
	module := sessionModule()

	result, err := module.Sessions.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
	if err := module.Sessions.Validate(context.Background(), result.Token); err != nil {
		t.Fatalf("fresh token must validate: %v", err)
	}
}

func TestAdminLogoutRevokesSession(t *testing.T) {
	module := sessionModule()

	result, err := module.Sessions.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := module.Sessions.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if err := module.Sessions.Validate(context.Background(), result.Token); !errors.Is(err, domainerrors.ErrInvalidSession) {
		t.Fatalf("revoked token must not validate, got %v", err)
	}
}

func TestAdminSessionExpires(t *testing.T) {
	module := sessionModule()
	module.Store.SetNow(time.Now().UTC())

	result, err := module.Sessions.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := module.Sessions.Validate(context.Background(), result.Token); err != nil {
		t.Fatalf("token must validate before expiry: %v", err)
	}

	module.Store.AdvanceNow(2 * time.Hour)
	if err := module.Sessions.Validate(context.Background(), result.Token); !errors.Is(err, domainerrors.ErrInvalidSession) {
		t.Fatalf("expired session must not validate, got %v", err)
	}
	if count := module.Store.SessionCount(); count != 0 {
		t.Fatalf("expired session must be reaped on read, got %d", count)
	}
}

func TestAdminValidateRejectsGarbageTokens(t *testing.T) {
	module := sessionModule()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if err := module.Sessions.Validate(context.Background(), token); !errors.Is(err, domainerrors.ErrInvalidSession) {
			t.Fatalf("expected ErrInvalidSession for %q, got %v", token, err)
		}
	}

	// A token signed with a different secret is rejected on signature alone.
	other := adminsession.NewInMemoryModule("correct horse", []byte("different-secret"), time.Hour, nil)
	foreign, err := other.Sessions.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("login on second module failed: %v", err)
	}
	if err := module.Sessions.Validate(context.Background(), foreign.Token); !errors.Is(err, domainerrors.ErrInvalidSession) {
		t.Fatalf("foreign-signed token must not validate, got %v", err)
	}
}
