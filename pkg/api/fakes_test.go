package api

import (
	"context"
	"io"
	"io/ioutil"
	"sort"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeChatRepository struct {
	conversations map[string]ConversationDoc
	members       map[string]MemberDoc
	messages      map[string]MessageDoc

	conversationLookups int
	messageLookups      int
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{
		conversations: make(map[string]ConversationDoc),
		members:       make(map[string]MemberDoc),
		messages:      make(map[string]MessageDoc),
	}
}

func (f *fakeChatRepository) MembershipsFor(ctx context.Context, userId string) ([]StoredMember, error) {
	var memberships []StoredMember
	for id, member := range f.members {
		if member.UserId == userId {
			memberships = append(memberships, StoredMember{Id: id, MemberDoc: member})
		}
	}
	return memberships, nil
}

func (f *fakeChatRepository) MembersOf(ctx context.Context, conversationId string) ([]StoredMember, error) {
	var members []StoredMember
	for id, member := range f.members {
		if member.ConversationId == conversationId {
			members = append(members, StoredMember{Id: id, MemberDoc: member})
		}
	}
	sort.Slice(members, func(a, b int) bool { return members[a].JoinedAt.Before(members[b].JoinedAt) })
	return members, nil
}

func (f *fakeChatRepository) IsMember(ctx context.Context, conversationId string, userId string) (bool, error) {
	for _, member := range f.members {
		if member.ConversationId == conversationId && member.UserId == userId {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChatRepository) AddMember(ctx context.Context, id string, member MemberDoc) error {
	f.members[id] = member
	return nil
}

func (f *fakeChatRepository) GetConversation(ctx context.Context, conversationId string) (StoredConversation, error) {
	f.conversationLookups++
	conversation, ok := f.conversations[conversationId]
	if !ok {
		return StoredConversation{}, status.Errorf(codes.NotFound, "conversation %s not found", conversationId)
	}
	return StoredConversation{Id: conversationId, ConversationDoc: conversation}, nil
}

func (f *fakeChatRepository) ConversationsByIDs(ctx context.Context, conversationIds []string) ([]StoredConversation, error) {
	f.conversationLookups++
	var conversations []StoredConversation
	for _, id := range conversationIds {
		if conversation, ok := f.conversations[id]; ok {
			conversations = append(conversations, StoredConversation{Id: id, ConversationDoc: conversation})
		}
	}
	sort.Slice(conversations, func(a, b int) bool {
		return conversations[a].LastMessageAt.After(conversations[b].LastMessageAt)
	})
	return conversations, nil
}

func (f *fakeChatRepository) CreateConversationWithMembers(ctx context.Context, conversationId string, conversation ConversationDoc, memberRecordIds []string, members []MemberDoc) error {
	f.conversations[conversationId] = conversation
	for idx, member := range members {
		f.members[memberRecordIds[idx]] = member
	}
	return nil
}

func (f *fakeChatRepository) SetConversationMeta(ctx context.Context, conversationId string, meta ConversationMeta, updatedAt time.Time) error {
	conversation := f.conversations[conversationId]
	conversation.Name = meta.Name
	conversation.Description = meta.Description
	conversation.AvatarUrl = meta.AvatarUrl
	conversation.UpdatedAt = updatedAt
	f.conversations[conversationId] = conversation
	return nil
}

func (f *fakeChatRepository) TouchConversation(ctx context.Context, conversationId string, at time.Time) error {
	conversation := f.conversations[conversationId]
	conversation.UpdatedAt = at
	conversation.LastMessageAt = at
	f.conversations[conversationId] = conversation
	return nil
}

func (f *fakeChatRepository) LatestMessage(ctx context.Context, conversationId string) (*StoredMessage, error) {
	f.messageLookups++
	var latest *StoredMessage
	for id, message := range f.messages {
		if message.ConversationId != conversationId {
			continue
		}
		candidate := StoredMessage{Id: id, MessageDoc: message}
		if latest == nil || candidate.CreatedAt.After(latest.CreatedAt) {
			latest = &candidate
		}
	}
	return latest, nil
}

func (f *fakeChatRepository) MessagesFor(ctx context.Context, conversationId string) ([]StoredMessage, error) {
	f.messageLookups++
	var messages []StoredMessage
	for id, message := range f.messages {
		if message.ConversationId == conversationId {
			messages = append(messages, StoredMessage{Id: id, MessageDoc: message})
		}
	}
	sort.Slice(messages, func(a, b int) bool { return messages[a].CreatedAt.Before(messages[b].CreatedAt) })
	return messages, nil
}

func (f *fakeChatRepository) CreateMessage(ctx context.Context, id string, message MessageDoc) error {
	f.messages[id] = message
	return nil
}

type fakeUserRepository struct {
	users map[string]UserModel
}

func newFakeUserRepository(users ...UserModel) *fakeUserRepository {
	f := &fakeUserRepository{users: make(map[string]UserModel)}
	for _, user := range users {
		f.users[user.UID] = user
	}
	return f
}

func (f *fakeUserRepository) Upsert(ctx context.Context, user UserModel) error {
	f.users[user.UID] = user
	return nil
}

func (f *fakeUserRepository) FindByIDs(ctx context.Context, userIds []string) ([]*UserModel, error) {
	var users []*UserModel
	for _, id := range userIds {
		if user, ok := f.users[id]; ok {
			found := user
			users = append(users, &found)
		}
	}
	return users, nil
}

func (f *fakeUserRepository) SearchByUsername(ctx context.Context, query string) ([]*UserModel, error) {
	var users []*UserModel
	for _, user := range f.users {
		found := user
		users = append(users, &found)
	}
	return users, nil
}

type fakeInviteRepository struct {
	invites map[string]InviteDoc
}

func newFakeInviteRepository() *fakeInviteRepository {
	return &fakeInviteRepository{invites: make(map[string]InviteDoc)}
}

func (f *fakeInviteRepository) CreateInvite(ctx context.Context, id string, invite InviteDoc) error {
	f.invites[id] = invite
	return nil
}

func (f *fakeInviteRepository) ActiveInviteByCode(ctx context.Context, code string) (StoredInvite, error) {
	for id, invite := range f.invites {
		if invite.InviteCode == code && invite.IsActive {
			return StoredInvite{Id: id, InviteDoc: invite}, nil
		}
	}
	return StoredInvite{}, status.Errorf(codes.NotFound, "no active invite for code %s", code)
}

func (f *fakeInviteRepository) InvitesFor(ctx context.Context, conversationId string) ([]StoredInvite, error) {
	var invites []StoredInvite
	for id, invite := range f.invites {
		if invite.ConversationId == conversationId {
			invites = append(invites, StoredInvite{Id: id, InviteDoc: invite})
		}
	}
	return invites, nil
}

func (f *fakeInviteRepository) SetInviteUses(ctx context.Context, id string, uses int) error {
	invite := f.invites[id]
	invite.CurrentUses = uses
	f.invites[id] = invite
	return nil
}

type fakeBlobRepository struct {
	uploadedPath        string
	uploadedContentType string
	uploadedBytes       int64

	// when set, Upload signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (f *fakeBlobRepository) Upload(ctx context.Context, path string, contentType string, size int64, content io.Reader, onProgress func(percent int)) (string, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	data, err := ioutil.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.uploadedPath = path
	f.uploadedContentType = contentType
	f.uploadedBytes = int64(len(data))
	if onProgress != nil {
		onProgress(100)
	}
	return "https://blobs.test/" + path, nil
}
