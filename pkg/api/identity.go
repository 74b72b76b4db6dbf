package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatLink/pkg/token"
)

var ErrEmptyGuestName = errors.New("guest name is empty")

type IdentityService interface {
	ResolveAuthenticatedUser(ctx context.Context, event AuthEvent) (User, error)
	ResolveGuestUser(ctx context.Context, name string) (User, string, error)
	GetUser(ctx context.Context, userId string) (User, error)
	SearchUsers(ctx context.Context, query string) ([]User, error)
}

type identityService struct {
	storage UserRepository
	tokens  *token.GuestTokens
}

func NewIdentityService(storage UserRepository, tokens *token.GuestTokens) IdentityService {
	return &identityService{storage: storage, tokens: tokens}
}

// ResolveAuthenticatedUser upserts the directory record for a verified
// sign-in. The username is derived from the email local-part.
func (i *identityService) ResolveAuthenticatedUser(ctx context.Context, event AuthEvent) (User, error) {
	username := event.Email
	if at := strings.Index(username, "@"); at > 0 {
		username = username[:at]
	}

	user := UserModel{
		UID:          event.UID,
		Email:        event.Email,
		Username:     username,
		Status:       "online",
		IsGuest:      false,
		LastActivity: time.Now(),
	}
	if err := i.storage.Upsert(ctx, user); err != nil {
		return User{}, err
	}

	return user.ConvertToDTO(), nil
}

// ResolveGuestUser synthesizes an identity for a display name entered on the
// guest prompt and signs a session token for it. The email is a placeholder;
// guests never receive mail.
func (i *identityService) ResolveGuestUser(ctx context.Context, name string) (User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, "", ErrEmptyGuestName
	}

	uid := "guest-" + NewID()
	guestName := name
	user := UserModel{
		UID:          uid,
		Email:        uid + "@guest.chatlink.local",
		Username:     name,
		Status:       "online",
		IsGuest:      true,
		GuestName:    &guestName,
		LastActivity: time.Now(),
	}
	if err := i.storage.Upsert(ctx, user); err != nil {
		return User{}, "", err
	}

	signed, err := i.tokens.Issue(uid, name)
	if err != nil {
		return User{}, "", err
	}

	return user.ConvertToDTO(), signed, nil
}

func (i *identityService) GetUser(ctx context.Context, userId string) (User, error) {
	users, err := i.storage.FindByIDs(ctx, []string{userId})
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, errors.New("user not found: " + userId)
	}
	return users[0].ConvertToDTO(), nil
}

func (i *identityService) SearchUsers(ctx context.Context, query string) ([]User, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is empty")
	}

	users, err := i.storage.SearchByUsername(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []User
	for _, user := range users {
		results = append(results, user.ConvertToDTO())
	}
	return results, nil
}
