package api

import (
	"time"
)

const (
	ConversationPrivate = "PRIVATE"
	ConversationGroup   = "GROUP"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

const (
	ContentText  = "TEXT"
	ContentFile  = "FILE"
	ContentImage = "IMAGE"
)

// AuthEvent is a verified sign-in delivered by the authenticator.
type AuthEvent struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type ConversationDoc struct {
	Type          string    `firestore:"type"`
	Name          string    `firestore:"name,omitempty"`
	Description   string    `firestore:"description,omitempty"`
	AvatarUrl     string    `firestore:"avatarUrl,omitempty"`
	CreatedBy     string    `firestore:"createdBy"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
	LastMessageAt time.Time `firestore:"lastMessageAt"`
}

type MemberDoc struct {
	ConversationId string    `firestore:"conversationId"`
	UserId         string    `firestore:"userId"`
	Role           string    `firestore:"role"`
	JoinedAt       time.Time `firestore:"joinedAt"`
}

type MessageDoc struct {
	ConversationId string    `firestore:"conversationId"`
	SenderId       string    `firestore:"senderId"`
	ContentType    string    `firestore:"contentType"`
	Body           string    `firestore:"body,omitempty"`
	FileUrl        string    `firestore:"fileUrl,omitempty"`
	FileName       string    `firestore:"fileName,omitempty"`
	FileSize       int64     `firestore:"fileSize,omitempty"`
	FileType       string    `firestore:"fileType,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt"`
}

type InviteDoc struct {
	ConversationId string    `firestore:"conversationId"`
	CreatedBy      string    `firestore:"createdBy"`
	InviteCode     string    `firestore:"inviteCode"`
	ExpiresAt      time.Time `firestore:"expiresAt,omitempty"`
	MaxUses        int       `firestore:"maxUses"`
	CurrentUses    int       `firestore:"currentUses"`
	IsActive       bool      `firestore:"isActive"`
	CreatedAt      time.Time `firestore:"createdAt"`
}

// Stored* pair a document with its collection id, the way query results come back.

type StoredConversation struct {
	Id string
	ConversationDoc
}

type StoredMember struct {
	Id string
	MemberDoc
}

type StoredMessage struct {
	Id string
	MessageDoc
}

type StoredInvite struct {
	Id string
	InviteDoc
}

// UserModel is a row of the user_account directory table.
type UserModel struct {
	UID          string
	Email        string
	Username     string
	DisplayName  *string
	PhotoUrl     *string
	Status       string
	IsGuest      bool
	GuestName    *string
	LastSeen     *time.Time
	LastActivity time.Time
}

func (u *UserModel) ConvertToDTO() User {
	name := u.Username
	if u.DisplayName != nil && *u.DisplayName != "" {
		name = *u.DisplayName
	}
	if u.IsGuest && u.GuestName != nil && *u.GuestName != "" {
		name = *u.GuestName
	}
	return User{
		Id:           u.UID,
		Email:        u.Email,
		Username:     u.Username,
		Name:         name,
		Avatar:       u.PhotoUrl,
		Status:       u.Status,
		IsGuest:      u.IsGuest,
		LastActivity: u.LastActivity,
	}
}

type User struct {
	Id           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Avatar       *string   `json:"avatar"`
	Status       string    `json:"status"`
	IsGuest      bool      `json:"isGuest"`
	LastActivity time.Time `json:"lastActivity"`
}

type Member struct {
	Id       string    `json:"id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
	User     User      `json:"user"`
}

type Message struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversationId"`
	SenderId       string    `json:"senderId"`
	Sender         *User     `json:"sender,omitempty"`
	ContentType    string    `json:"contentType"`
	Body           string    `json:"body,omitempty"`
	FileUrl        string    `json:"fileUrl,omitempty"`
	FileName       string    `json:"fileName,omitempty"`
	FileSize       int64     `json:"fileSize,omitempty"`
	FileType       string    `json:"fileType,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Conversation struct {
	Id            string    `json:"id"`
	Type          string    `json:"type"`
	Name          string    `json:"name,omitempty"`
	Description   string    `json:"description,omitempty"`
	AvatarUrl     string    `json:"avatarUrl,omitempty"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	LastMessage   *Message  `json:"lastMessage,omitempty"`
	Preview       string    `json:"preview,omitempty"`
	Members       []Member  `json:"members,omitempty"`
}

type Invite struct {
	Id             string     `json:"id"`
	ConversationId string     `json:"conversationId"`
	InviteCode     string     `json:"inviteCode"`
	Url            string     `json:"url"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	MaxUses        int        `json:"maxUses,omitempty"`
	CurrentUses    int        `json:"currentUses"`
	IsActive       bool       `json:"isActive"`
}

func (c *StoredConversation) ConvertToDTO() Conversation {
	return Conversation{
		Id:            c.Id,
		Type:          c.Type,
		Name:          c.Name,
		Description:   c.Description,
		AvatarUrl:     c.AvatarUrl,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		LastMessageAt: c.LastMessageAt,
	}
}

func (m *StoredMessage) ConvertToDTO() Message {
	return Message{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		SenderId:       m.SenderId,
		ContentType:    m.ContentType,
		Body:           m.Body,
		FileUrl:        m.FileUrl,
		FileName:       m.FileName,
		FileSize:       m.FileSize,
		FileType:       m.FileType,
		CreatedAt:      m.CreatedAt,
	}
}

func (i *StoredInvite) ConvertToDTO() Invite {
	dto := Invite{
		Id:             i.Id,
		ConversationId: i.ConversationId,
		InviteCode:     i.InviteCode,
		MaxUses:        i.MaxUses,
		CurrentUses:    i.CurrentUses,
		IsActive:       i.IsActive,
	}
	if !i.ExpiresAt.IsZero() {
		expiresAt := i.ExpiresAt
		dto.ExpiresAt = &expiresAt
	}
	return dto
}
