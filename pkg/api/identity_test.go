package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"chatLink/pkg/token"
)

func newTestIdentityService(users *fakeUserRepository) (IdentityService, *token.GuestTokens) {
	tokens := token.NewGuestTokens("test-secret", time.Hour)
	return NewIdentityService(users, tokens), tokens
}

func TestResolveAuthenticatedUserDerivesUsername(t *testing.T) {
	users := newFakeUserRepository()
	service, _ := newTestIdentityService(users)

	user, err := service.ResolveAuthenticatedUser(context.Background(), AuthEvent{UID: "uid-1", Email: "casey@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	if user.Username != "casey" {
		t.Errorf("username = %q, want %q", user.Username, "casey")
	}
	if user.Status != "online" {
		t.Errorf("status = %q, want online", user.Status)
	}
	if user.IsGuest {
		t.Error("authenticated user marked as guest")
	}

	stored, ok := users.users["uid-1"]
	if !ok {
		t.Fatal("user record was not written")
	}
	if stored.Email != "casey@example.com" {
		t.Errorf("stored email = %q", stored.Email)
	}
}

func TestResolveAuthenticatedUserOverwritesExisting(t *testing.T) {
	users := newFakeUserRepository(UserModel{UID: "uid-1", Email: "old@example.com", Username: "old", Status: "offline"})
	service, _ := newTestIdentityService(users)

	if _, err := service.ResolveAuthenticatedUser(context.Background(), AuthEvent{UID: "uid-1", Email: "new@example.com"}); err != nil {
		t.Fatal(err)
	}

	if users.users["uid-1"].Username != "new" {
		t.Errorf("username = %q, want %q", users.users["uid-1"].Username, "new")
	}
}

func TestResolveGuestUser(t *testing.T) {
	users := newFakeUserRepository()
	service, tokens := newTestIdentityService(users)

	user, signed, err := service.ResolveGuestUser(context.Background(), "  Casey  ")
	if err != nil {
		t.Fatal(err)
	}

	if !user.IsGuest {
		t.Error("guest user not marked as guest")
	}
	if user.Name != "Casey" {
		t.Errorf("name = %q, want Casey", user.Name)
	}
	if user.Id == "" {
		t.Fatal("guest id is empty")
	}
	if !strings.HasSuffix(user.Email, "@guest.chatlink.local") {
		t.Errorf("placeholder email = %q", user.Email)
	}
	if _, ok := users.users[user.Id]; !ok {
		t.Error("guest record was not written")
	}

	claims, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("guest token does not verify: %v", err)
	}
	if claims.Subject != user.Id {
		t.Errorf("token subject = %q, want %q", claims.Subject, user.Id)
	}
	if claims.GuestName != "Casey" {
		t.Errorf("token guest name = %q", claims.GuestName)
	}
}

func TestResolveGuestUserRejectsEmptyName(t *testing.T) {
	users := newFakeUserRepository()
	service, _ := newTestIdentityService(users)

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, _, err := service.ResolveGuestUser(context.Background(), name); err != ErrEmptyGuestName {
			t.Errorf("ResolveGuestUser(%q) err = %v, want ErrEmptyGuestName", name, err)
		}
	}
	if len(users.users) != 0 {
		t.Error("record written for rejected guest name")
	}
}

func TestGuestIDsDiffer(t *testing.T) {
	users := newFakeUserRepository()
	service, _ := newTestIdentityService(users)

	first, _, err := service.ResolveGuestUser(context.Background(), "Casey")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := service.ResolveGuestUser(context.Background(), "Casey")
	if err != nil {
		t.Fatal(err)
	}
	if first.Id == second.Id {
		t.Errorf("two guests share id %q", first.Id)
	}
}
