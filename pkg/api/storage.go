package api

import (
	"context"
	"io"
	"time"
)

// ChatRepository covers the conversation, member and message collections of
// the document store. Implementations expose plain list/create/update calls;
// there are no transactions across collections.
type ChatRepository interface {
	MembershipsFor(ctx context.Context, userId string) ([]StoredMember, error)
	MembersOf(ctx context.Context, conversationId string) ([]StoredMember, error)
	IsMember(ctx context.Context, conversationId string, userId string) (bool, error)
	AddMember(ctx context.Context, id string, member MemberDoc) error

	GetConversation(ctx context.Context, conversationId string) (StoredConversation, error)
	ConversationsByIDs(ctx context.Context, conversationIds []string) ([]StoredConversation, error)
	CreateConversationWithMembers(ctx context.Context, conversationId string, conversation ConversationDoc, memberRecordIds []string, members []MemberDoc) error
	SetConversationMeta(ctx context.Context, conversationId string, meta ConversationMeta, updatedAt time.Time) error
	TouchConversation(ctx context.Context, conversationId string, at time.Time) error

	LatestMessage(ctx context.Context, conversationId string) (*StoredMessage, error)
	MessagesFor(ctx context.Context, conversationId string) ([]StoredMessage, error)
	CreateMessage(ctx context.Context, id string, message MessageDoc) error
}

// InviteRepository covers the invites collection.
type InviteRepository interface {
	CreateInvite(ctx context.Context, id string, invite InviteDoc) error
	ActiveInviteByCode(ctx context.Context, code string) (StoredInvite, error)
	InvitesFor(ctx context.Context, conversationId string) ([]StoredInvite, error)
	SetInviteUses(ctx context.Context, id string, uses int) error
}

// UserRepository is the user directory.
type UserRepository interface {
	Upsert(ctx context.Context, user UserModel) error
	FindByIDs(ctx context.Context, userIds []string) ([]*UserModel, error)
	SearchByUsername(ctx context.Context, query string) ([]*UserModel, error)
}

// BlobRepository uploads raw files and returns their public URL. onProgress,
// when non-nil, receives integer percentages as bytes go out.
type BlobRepository interface {
	Upload(ctx context.Context, path string, contentType string, size int64, content io.Reader, onProgress func(percent int)) (string, error)
}

// ConversationMeta is the patchable slice of a conversation document.
type ConversationMeta struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	AvatarUrl   string `json:"avatarUrl,omitempty"`
}
