package api

import (
	"context"
)

type DirectoryService interface {
	GetConversations(ctx context.Context, userId string) ([]Conversation, error)
}

type directoryService struct {
	storage ChatRepository
	users   UserRepository
}

func NewDirectoryService(storage ChatRepository, users UserRepository) DirectoryService {
	return &directoryService{storage: storage, users: users}
}

// GetConversations builds the conversation list view for one user: their
// conversations ordered by last activity, each joined with a latest-message
// preview and, for groups, the resolved member roster. Any lookup failure
// aborts the whole load.
func (d *directoryService) GetConversations(ctx context.Context, userId string) ([]Conversation, error) {
	memberships, err := d.storage.MembershipsFor(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []Conversation{}, nil
	}

	conversationIds := make([]string, 0, len(memberships))
	for _, membership := range memberships {
		conversationIds = append(conversationIds, membership.ConversationId)
	}

	stored, err := d.storage.ConversationsByIDs(ctx, conversationIds)
	if err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(stored))
	for _, conversationDoc := range stored {
		conversation := conversationDoc.ConvertToDTO()

		latest, err := d.storage.LatestMessage(ctx, conversationDoc.Id)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			message := latest.ConvertToDTO()
			if sender, err := d.resolveUsers(ctx, []string{latest.SenderId}); err != nil {
				return nil, err
			} else if len(sender) == 1 {
				user := sender[latest.SenderId]
				message.Sender = &user
			}
			conversation.LastMessage = &message
			conversation.Preview = previewText(latest)
		}

		if conversationDoc.Type == ConversationGroup {
			members, err := d.storage.MembersOf(ctx, conversationDoc.Id)
			if err != nil {
				return nil, err
			}
			roster, err := d.resolveRoster(ctx, members)
			if err != nil {
				return nil, err
			}
			conversation.Members = roster
		}

		conversations = append(conversations, conversation)
	}

	return conversations, nil
}

func (d *directoryService) resolveRoster(ctx context.Context, members []StoredMember) ([]Member, error) {
	if len(members) == 0 {
		return nil, nil
	}

	userIds := make([]string, 0, len(members))
	for _, member := range members {
		userIds = append(userIds, member.UserId)
	}
	users, err := d.resolveUsers(ctx, userIds)
	if err != nil {
		return nil, err
	}

	roster := make([]Member, 0, len(members))
	for _, member := range members {
		roster = append(roster, Member{
			Id:       member.Id,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
			User:     users[member.UserId],
		})
	}
	return roster, nil
}

func (d *directoryService) resolveUsers(ctx context.Context, userIds []string) (map[string]User, error) {
	users, err := d.users.FindByIDs(ctx, userIds)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]User, len(users))
	for _, user := range users {
		resolved[user.UID] = user.ConvertToDTO()
	}
	return resolved, nil
}

// previewText is what the conversation list shows for the latest message.
// Attachments without body text get a labeled placeholder.
func previewText(message *StoredMessage) string {
	if message.Body != "" {
		return message.Body
	}
	if message.FileName != "" {
		return "📎 " + message.FileName
	}
	return "File"
}
