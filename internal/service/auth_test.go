package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkamau/blogapi/internal/apperror"
)

// =========================================================================
// Register TESTS
// =========================================================================

func TestRegister_NewUser(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestAuthService(t, users, sessions)

	result, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.ID == "" {
		t.Error("User.ID should be set after insert")
	}
	if result.User.Username != "alice" {
		t.Errorf("User.Username = %q, want %q", result.User.Username, "alice")
	}
	if result.Token == "" {
		t.Error("Register() returned empty Token")
	}
	if result.User.PasswordHash == "s3cret" {
		t.Error("password stored in plaintext")
	}
	if result.Session == nil || result.Session.ID == "" {
		t.Fatal("Register() returned no session")
	}
	if _, ok := sessions.sessions[result.Session.ID]; !ok {
		t.Error("session was not persisted")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, newFakeSessionRepo())

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), "other", "alice@example.com", "pw2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Register() error = %v, want ErrConflict", err)
	}
	if len(users.users) != 1 {
		t.Errorf("user count = %d, want 1 (conflict must not insert)", len(users.users))
	}
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"no username", "", "a@b.com", "pw"},
		{"no email", "alice", "", "pw"},
		{"no password", "alice", "a@b.com", ""},
		{"whitespace username", "   ", "a@b.com", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo()
			svc := newTestAuthService(t, users, newFakeSessionRepo())

			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Register() error = %v, want ErrValidation", err)
			}
			if len(users.users) != 0 {
				t.Error("validation failure must not insert a user")
			}
		})
	}
}

// =========================================================================
// Login TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestAuthService(t, users, sessions)

	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	user, session, err := svc.Login(context.Background(), "bob@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Username != "bob" {
		t.Errorf("user.Username = %q, want %q", user.Username, "bob")
	}
	if session.UserID != user.ID {
		t.Errorf("session.UserID = %q, want %q", session.UserID, user.ID)
	}
	if !session.Active(time.Now()) {
		t.Error("fresh session should be active")
	}
}

// Wrong password and unknown email must be indistinguishable: same error
// class, same message.
func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, newFakeSessionRepo())

	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, _, wrongPassword := svc.Login(context.Background(), "bob@example.com", "nope")
	_, _, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "nope")

	if !errors.Is(wrongPassword, apperror.ErrUnauthorized) {
		t.Fatalf("wrong password error = %v, want ErrUnauthorized", wrongPassword)
	}
	if !errors.Is(unknownEmail, apperror.ErrUnauthorized) {
		t.Fatalf("unknown email error = %v, want ErrUnauthorized", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPassword.Error(), unknownEmail.Error())
	}
}

// =========================================================================
// Session lifecycle TESTS
// =========================================================================

func TestLogout_RevokesSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestAuthService(t, users, sessions)

	result, err := svc.Register(context.Background(), "carol", "carol@example.com", "pw")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	userID, err := svc.ValidateSession(context.Background(), result.Session.ID)
	if err != nil {
		t.Fatalf("ValidateSession() before logout: %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("userID = %q, want %q", userID, result.User.ID)
	}

	if err := svc.Logout(context.Background(), result.Session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := svc.ValidateSession(context.Background(), result.Session.ID); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("ValidateSession() after logout = %v, want ErrUnauthorized", err)
	}
}

func TestLogout_UnknownSessionIsFine(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), newFakeSessionRepo())

	if err := svc.Logout(context.Background(), "never-existed"); err != nil {
		t.Fatalf("Logout() error = %v, want nil", err)
	}
}

func TestValidateSession_Expired(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := newTestAuthService(t, users, sessions)

	result, err := svc.Register(context.Background(), "dave", "dave@example.com", "pw")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Age the stored session past its expiry.
	sessions.sessions[result.Session.ID].ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := svc.ValidateSession(context.Background(), result.Session.ID); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("ValidateSession() = %v, want ErrUnauthorized", err)
	}
}

func TestValidateSession_Unknown(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), newFakeSessionRepo())

	if _, err := svc.ValidateSession(context.Background(), "no-such-session"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("ValidateSession() = %v, want ErrUnauthorized", err)
	}
}
