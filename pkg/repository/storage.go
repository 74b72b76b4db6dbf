package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"chatLink/pkg/api"
	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Storage struct {
	client *firestore.Client
}

func NewStorage(client *firestore.Client) *Storage {
	return &Storage{client: client}
}

var _ api.ChatRepository = (*Storage)(nil)
var _ api.InviteRepository = (*Storage)(nil)

func (s *Storage) conversations() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Storage) members() *firestore.CollectionRef {
	return s.client.Collection("members")
}

func (s *Storage) messages() *firestore.CollectionRef {
	return s.client.Collection("messages")
}

func (s *Storage) invites() *firestore.CollectionRef {
	return s.client.Collection("invites")
}

func (s *Storage) MembershipsFor(ctx context.Context, userId string) ([]api.StoredMember, error) {
	snaps, err := s.members().Where("userId", "==", userId).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Listing memberships for user %s: %v", userId, err)
		return nil, err
	}
	return decodeMembers(snaps)
}

func (s *Storage) MembersOf(ctx context.Context, conversationId string) ([]api.StoredMember, error) {
	snaps, err := s.members().Where("conversationId", "==", conversationId).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Listing members of conversation %s: %v", conversationId, err)
		return nil, err
	}
	return decodeMembers(snaps)
}

func (s *Storage) IsMember(ctx context.Context, conversationId string, userId string) (bool, error) {
	snaps, err := s.members().
		Where("conversationId", "==", conversationId).
		Where("userId", "==", userId).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, err
	}
	return len(snaps) > 0, nil
}

func (s *Storage) AddMember(ctx context.Context, id string, member api.MemberDoc) error {
	_, err := s.members().Doc(id).Set(ctx, member)
	if err != nil {
		log.Printf("Adding member to conversation %s: %v", member.ConversationId, err)
	}
	return err
}

func (s *Storage) GetConversation(ctx context.Context, conversationId string) (api.StoredConversation, error) {
	var conversation api.StoredConversation

	snap, err := s.conversations().Doc(conversationId).Get(ctx)
	if err != nil {
		return conversation, err
	}
	if err := snap.DataTo(&conversation.ConversationDoc); err != nil {
		return conversation, err
	}
	conversation.Id = snap.Ref.ID
	return conversation, nil
}

// ConversationsByIDs fetches a set of conversation documents in one batched
// read and returns them ordered by lastMessageAt descending, the order the
// conversation list renders in.
func (s *Storage) ConversationsByIDs(ctx context.Context, conversationIds []string) ([]api.StoredConversation, error) {
	refs := make([]*firestore.DocumentRef, 0, len(conversationIds))
	for _, id := range conversationIds {
		refs = append(refs, s.conversations().Doc(id))
	}

	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		log.Printf("Fetching conversations by id: %v", err)
		return nil, err
	}

	var conversations []api.StoredConversation
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var conversation api.StoredConversation
		if err := snap.DataTo(&conversation.ConversationDoc); err != nil {
			return nil, err
		}
		conversation.Id = snap.Ref.ID
		conversations = append(conversations, conversation)
	}

	sort.Slice(conversations, func(a, b int) bool {
		return conversations[a].LastMessageAt.After(conversations[b].LastMessageAt)
	})
	return conversations, nil
}

func (s *Storage) CreateConversationWithMembers(ctx context.Context, conversationId string, conversation api.ConversationDoc, memberRecordIds []string, members []api.MemberDoc) error {
	batch := s.client.Batch()
	batch.Set(s.conversations().Doc(conversationId), conversation)
	for idx, member := range members {
		batch.Set(s.members().Doc(memberRecordIds[idx]), member)
	}

	if _, err := batch.Commit(ctx); err != nil {
		log.Printf("Creating conversation %s with %d members: %v", conversationId, len(members), err)
		return err
	}
	log.Printf("Created conversation %s with %d members", conversationId, len(members))
	return nil
}

func (s *Storage) SetConversationMeta(ctx context.Context, conversationId string, meta api.ConversationMeta, updatedAt time.Time) error {
	_, err := s.conversations().Doc(conversationId).Update(ctx, []firestore.Update{
		{Path: "name", Value: meta.Name},
		{Path: "description", Value: meta.Description},
		{Path: "avatarUrl", Value: meta.AvatarUrl},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		log.Printf("Updating conversation %s metadata: %v", conversationId, err)
	}
	return err
}

func (s *Storage) TouchConversation(ctx context.Context, conversationId string, at time.Time) error {
	_, err := s.conversations().Doc(conversationId).Update(ctx, []firestore.Update{
		{Path: "updatedAt", Value: at},
		{Path: "lastMessageAt", Value: at},
	})
	if err != nil {
		log.Printf("Refreshing conversation %s timestamps: %v", conversationId, err)
	}
	return err
}

func (s *Storage) LatestMessage(ctx context.Context, conversationId string) (*api.StoredMessage, error) {
	snaps, err := s.messages().
		Where("conversationId", "==", conversationId).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Fetching latest message of conversation %s: %v", conversationId, err)
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	var message api.StoredMessage
	if err := snaps[0].DataTo(&message.MessageDoc); err != nil {
		return nil, err
	}
	message.Id = snaps[0].Ref.ID
	return &message, nil
}

func (s *Storage) MessagesFor(ctx context.Context, conversationId string) ([]api.StoredMessage, error) {
	snaps, err := s.messages().
		Where("conversationId", "==", conversationId).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Listing messages of conversation %s: %v", conversationId, err)
		return nil, err
	}

	var messages []api.StoredMessage
	for _, snap := range snaps {
		var message api.StoredMessage
		if err := snap.DataTo(&message.MessageDoc); err != nil {
			return nil, err
		}
		message.Id = snap.Ref.ID
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *Storage) CreateMessage(ctx context.Context, id string, message api.MessageDoc) error {
	_, err := s.messages().Doc(id).Set(ctx, message)
	if err != nil {
		log.Printf("Creating message in conversation %s: %v", message.ConversationId, err)
		return err
	}
	log.Printf("Created message document %s", id)
	return nil
}

func (s *Storage) CreateInvite(ctx context.Context, id string, invite api.InviteDoc) error {
	_, err := s.invites().Doc(id).Set(ctx, invite)
	if err != nil {
		log.Printf("Creating invite for conversation %s: %v", invite.ConversationId, err)
	}
	return err
}

func (s *Storage) ActiveInviteByCode(ctx context.Context, code string) (api.StoredInvite, error) {
	var invite api.StoredInvite

	snaps, err := s.invites().
		Where("inviteCode", "==", code).
		Where("isActive", "==", true).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Looking up invite code %s: %v", code, err)
		return invite, err
	}
	if len(snaps) == 0 {
		return invite, status.Errorf(codes.NotFound, "no active invite for code %s", code)
	}

	if err := snaps[0].DataTo(&invite.InviteDoc); err != nil {
		return invite, err
	}
	invite.Id = snaps[0].Ref.ID
	return invite, nil
}

func (s *Storage) InvitesFor(ctx context.Context, conversationId string) ([]api.StoredInvite, error) {
	snaps, err := s.invites().
		Where("conversationId", "==", conversationId).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Listing invites of conversation %s: %v", conversationId, err)
		return nil, err
	}

	var invites []api.StoredInvite
	for _, snap := range snaps {
		var invite api.StoredInvite
		if err := snap.DataTo(&invite.InviteDoc); err != nil {
			return nil, err
		}
		invite.Id = snap.Ref.ID
		invites = append(invites, invite)
	}
	return invites, nil
}

func decodeMembers(snaps []*firestore.DocumentSnapshot) ([]api.StoredMember, error) {
	var members []api.StoredMember
	for _, snap := range snaps {
		var member api.StoredMember
		if err := snap.DataTo(&member.MemberDoc); err != nil {
			return nil, err
		}
		member.Id = snap.Ref.ID
		members = append(members, member)
	}
	return members, nil
}
