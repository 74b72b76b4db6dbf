package api

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrInviteInvalid      = errors.New("invite is invalid or expired")
	ErrInviteExpired      = errors.New("invite has expired")
	ErrInviteLimitReached = errors.New("invite usage limit reached")
)

type InviteService interface {
	GenerateInvite(ctx context.Context, conversationId string, createdBy string, expiresInHours int, maxUses int) (Invite, error)
	ListInvites(ctx context.Context, conversationId string) ([]Invite, error)
	RedeemInvite(ctx context.Context, user User, code string) (string, error)
}

type inviteService struct {
	storage InviteRepository
	chats   ChatRepository
	baseURL string
}

func NewInviteService(storage InviteRepository, chats ChatRepository, baseURL string) InviteService {
	return &inviteService{storage: storage, chats: chats, baseURL: baseURL}
}

// GenerateInvite creates a fresh shareable invite for a conversation.
// expiresInHours <= 0 means the invite never expires, maxUses <= 0 means
// unlimited redemptions.
func (i *inviteService) GenerateInvite(ctx context.Context, conversationId string, createdBy string, expiresInHours int, maxUses int) (Invite, error) {
	now := time.Now()
	invite := InviteDoc{
		ConversationId: conversationId,
		CreatedBy:      createdBy,
		InviteCode:     NewInviteCode(),
		MaxUses:        maxUses,
		CurrentUses:    0,
		IsActive:       true,
		CreatedAt:      now,
	}
	if expiresInHours > 0 {
		invite.ExpiresAt = now.Add(time.Duration(expiresInHours) * time.Hour)
	}
	if maxUses < 0 {
		invite.MaxUses = 0
	}

	id := NewID()
	if err := i.storage.CreateInvite(ctx, id, invite); err != nil {
		return Invite{}, err
	}

	stored := StoredInvite{Id: id, InviteDoc: invite}
	dto := stored.ConvertToDTO()
	dto.Url = i.shareURL(invite.InviteCode)
	return dto, nil
}

func (i *inviteService) ListInvites(ctx context.Context, conversationId string) ([]Invite, error) {
	stored, err := i.storage.InvitesFor(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	invites := make([]Invite, 0, len(stored))
	for idx := range stored {
		dto := stored[idx].ConvertToDTO()
		dto.Url = i.shareURL(stored[idx].InviteCode)
		invites = append(invites, dto)
	}
	return invites, nil
}

// RedeemInvite turns a code into a membership. Expiry is checked against the
// clock even when isActive still reads true, since nothing deactivates stale
// invites server-side. The usage counter moves by read-then-write update, so
// concurrent redemptions can race past the cap; that exposure is inherited
// from the store's lack of cross-collection transactions and left in place.
func (i *inviteService) RedeemInvite(ctx context.Context, user User, code string) (string, error) {
	invite, err := i.storage.ActiveInviteByCode(ctx, code)
	if status.Code(err) == codes.NotFound {
		return "", ErrInviteInvalid
	}
	if err != nil {
		return "", err
	}

	if !invite.ExpiresAt.IsZero() && invite.ExpiresAt.Before(time.Now()) {
		return "", ErrInviteExpired
	}
	if invite.MaxUses > 0 && invite.CurrentUses >= invite.MaxUses {
		return "", ErrInviteLimitReached
	}

	alreadyMember, err := i.chats.IsMember(ctx, invite.ConversationId, user.Id)
	if err != nil {
		return "", err
	}
	if alreadyMember {
		return invite.ConversationId, nil
	}

	role := RoleMember
	if user.IsGuest {
		role = RoleGuest
	}
	member := MemberDoc{
		ConversationId: invite.ConversationId,
		UserId:         user.Id,
		Role:           role,
		JoinedAt:       time.Now(),
	}
	if err := i.chats.AddMember(ctx, NewID(), member); err != nil {
		return "", err
	}

	if err := i.storage.SetInviteUses(ctx, invite.Id, invite.CurrentUses+1); err != nil {
		return "", err
	}

	return invite.ConversationId, nil
}

func (i *inviteService) shareURL(code string) string {
	return i.baseURL + "/?invite=" + code
}
