package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	jsonPatch "github.com/evanphx/json-patch/v5"
)

var (
	ErrEmptyGroupName = errors.New("group name is empty")
	ErrNoMembers      = errors.New("no members selected")
)

type MembershipService interface {
	CreatePrivateChat(ctx context.Context, currentUser User, targetUserId string) (Conversation, error)
	CreateGroup(ctx context.Context, currentUser User, name string, description string, memberIds []string) (Conversation, error)
	UpdateConversation(ctx context.Context, conversationId string, patchJSON []byte) (Conversation, error)
}

type membershipService struct {
	storage ChatRepository
}

func NewMembershipService(storage ChatRepository) MembershipService {
	return &membershipService{storage: storage}
}

// CreatePrivateChat returns the existing private conversation between the two
// users when one exists, walking the caller's memberships one by one, and
// creates conversation plus both member records in a single batch otherwise.
func (m *membershipService) CreatePrivateChat(ctx context.Context, currentUser User, targetUserId string) (Conversation, error) {
	memberships, err := m.storage.MembershipsFor(ctx, currentUser.Id)
	if err != nil {
		return Conversation{}, err
	}

	for _, membership := range memberships {
		conversation, err := m.storage.GetConversation(ctx, membership.ConversationId)
		if err != nil {
			return Conversation{}, err
		}
		if conversation.Type != ConversationPrivate {
			continue
		}

		members, err := m.storage.MembersOf(ctx, conversation.Id)
		if err != nil {
			return Conversation{}, err
		}
		if len(members) != 2 {
			continue
		}
		for _, member := range members {
			if member.UserId == targetUserId {
				return conversation.ConvertToDTO(), nil
			}
		}
	}

	now := time.Now()
	conversationId := NewID()
	conversation := ConversationDoc{
		Type:          ConversationPrivate,
		CreatedBy:     currentUser.Id,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}

	ids := []string{NewID(), NewID()}
	members := []MemberDoc{
		{ConversationId: conversationId, UserId: currentUser.Id, Role: RoleMember, JoinedAt: now},
		{ConversationId: conversationId, UserId: targetUserId, Role: RoleMember, JoinedAt: now},
	}
	if err := m.storage.CreateConversationWithMembers(ctx, conversationId, conversation, ids, members); err != nil {
		return Conversation{}, err
	}

	stored := StoredConversation{Id: conversationId, ConversationDoc: conversation}
	return stored.ConvertToDTO(), nil
}

// CreateGroup writes the conversation, the creator's membership (admin, or
// guest when the creator is one) and one member row per selected user as a
// single batch. A failed batch can still leave nothing behind, but nothing
// compensates for failures in later calls of the flow.
func (m *membershipService) CreateGroup(ctx context.Context, currentUser User, name string, description string, memberIds []string) (Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Conversation{}, ErrEmptyGroupName
	}
	if len(memberIds) == 0 {
		return Conversation{}, ErrNoMembers
	}

	now := time.Now()
	conversationId := NewID()
	conversation := ConversationDoc{
		Type:          ConversationGroup,
		Name:          name,
		Description:   description,
		CreatedBy:     currentUser.Id,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}

	creatorRole := RoleAdmin
	if currentUser.IsGuest {
		creatorRole = RoleGuest
	}

	ids := []string{NewID()}
	members := []MemberDoc{
		{ConversationId: conversationId, UserId: currentUser.Id, Role: creatorRole, JoinedAt: now},
	}
	for _, memberId := range memberIds {
		if memberId == currentUser.Id {
			continue
		}
		ids = append(ids, NewID())
		members = append(members, MemberDoc{
			ConversationId: conversationId,
			UserId:         memberId,
			Role:           RoleMember,
			JoinedAt:       now,
		})
	}

	if err := m.storage.CreateConversationWithMembers(ctx, conversationId, conversation, ids, members); err != nil {
		return Conversation{}, err
	}

	stored := StoredConversation{Id: conversationId, ConversationDoc: conversation}
	return stored.ConvertToDTO(), nil
}

// UpdateConversation applies an RFC 6902 patch to the conversation's mutable
// metadata and refreshes updatedAt.
func (m *membershipService) UpdateConversation(ctx context.Context, conversationId string, patchJSON []byte) (Conversation, error) {
	patch, err := jsonPatch.DecodePatch(patchJSON)
	if err != nil {
		return Conversation{}, err
	}

	conversation, err := m.storage.GetConversation(ctx, conversationId)
	if err != nil {
		return Conversation{}, err
	}

	meta := ConversationMeta{
		Name:        conversation.Name,
		Description: conversation.Description,
		AvatarUrl:   conversation.AvatarUrl,
	}
	metaBinary, err := json.Marshal(meta)
	if err != nil {
		return Conversation{}, err
	}

	metaBinary, err = patch.Apply(metaBinary)
	if err != nil {
		return Conversation{}, err
	}
	if err := json.Unmarshal(metaBinary, &meta); err != nil {
		return Conversation{}, err
	}

	now := time.Now()
	if err := m.storage.SetConversationMeta(ctx, conversationId, meta, now); err != nil {
		return Conversation{}, err
	}

	conversation.Name = meta.Name
	conversation.Description = meta.Description
	conversation.AvatarUrl = meta.AvatarUrl
	conversation.UpdatedAt = now
	return conversation.ConvertToDTO(), nil
}
