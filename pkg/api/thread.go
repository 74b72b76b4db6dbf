package api

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrSendInFlight  = errors.New("a send for this conversation is still in flight")
	ErrEmptyFileName = errors.New("file name is empty")
)

// Upload is an incoming attachment: the declared metadata plus the raw bytes.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type ThreadService interface {
	GetMessages(ctx context.Context, conversationId string) ([]Message, error)
	SendText(ctx context.Context, conversationId string, sender User, body string) (Message, error)
	SendAttachment(ctx context.Context, conversationId string, sender User, upload Upload, onProgress func(percent int)) (Message, error)
}

type threadService struct {
	storage ChatRepository
	users   UserRepository
	blobs   BlobRepository

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewThreadService(storage ChatRepository, users UserRepository, blobs BlobRepository) ThreadService {
	return &threadService{
		storage:  storage,
		users:    users,
		blobs:    blobs,
		inFlight: make(map[string]bool),
	}
}

// GetMessages lists a conversation's messages oldest first with senders
// resolved through one id-set lookup.
func (t *threadService) GetMessages(ctx context.Context, conversationId string) ([]Message, error) {
	stored, err := t.storage.MessagesFor(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return []Message{}, nil
	}

	seen := make(map[string]bool)
	var senderIds []string
	for _, message := range stored {
		if !seen[message.SenderId] {
			seen[message.SenderId] = true
			senderIds = append(senderIds, message.SenderId)
		}
	}
	users, err := t.users.FindByIDs(ctx, senderIds)
	if err != nil {
		return nil, err
	}
	senders := make(map[string]User, len(users))
	for _, user := range users {
		senders[user.UID] = user.ConvertToDTO()
	}

	messages := make([]Message, 0, len(stored))
	for idx := range stored {
		message := stored[idx].ConvertToDTO()
		if sender, ok := senders[message.SenderId]; ok {
			resolved := sender
			message.Sender = &resolved
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// SendText creates a text message and refreshes the conversation's activity
// timestamps. Empty and whitespace-only bodies are rejected before any write.
func (t *threadService) SendText(ctx context.Context, conversationId string, sender User, body string) (Message, error) {
	if strings.TrimSpace(body) == "" {
		return Message{}, ErrEmptyMessage
	}
	if !t.begin(conversationId) {
		return Message{}, ErrSendInFlight
	}
	defer t.end(conversationId)

	now := time.Now()
	message := MessageDoc{
		ConversationId: conversationId,
		SenderId:       sender.Id,
		ContentType:    ContentText,
		Body:           body,
		CreatedAt:      now,
	}

	id := NewID()
	if err := t.storage.CreateMessage(ctx, id, message); err != nil {
		return Message{}, err
	}
	if err := t.storage.TouchConversation(ctx, conversationId, now); err != nil {
		return Message{}, err
	}

	stored := StoredMessage{Id: id, MessageDoc: message}
	return stored.ConvertToDTO(), nil
}

// SendAttachment uploads the file under a conversation-scoped path and
// records a FILE or IMAGE message pointing at the resulting public URL.
// Classification goes by the declared media type alone.
func (t *threadService) SendAttachment(ctx context.Context, conversationId string, sender User, upload Upload, onProgress func(percent int)) (Message, error) {
	if upload.Name == "" {
		return Message{}, ErrEmptyFileName
	}
	if !t.begin(conversationId) {
		return Message{}, ErrSendInFlight
	}
	defer t.end(conversationId)

	now := time.Now()
	path := "attachments/" + conversationId + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + upload.Name
	fileUrl, err := t.blobs.Upload(ctx, path, upload.ContentType, upload.Size, upload.Content, onProgress)
	if err != nil {
		return Message{}, err
	}

	contentType := ContentFile
	if strings.HasPrefix(upload.ContentType, "image/") {
		contentType = ContentImage
	}

	message := MessageDoc{
		ConversationId: conversationId,
		SenderId:       sender.Id,
		ContentType:    contentType,
		FileUrl:        fileUrl,
		FileName:       upload.Name,
		FileSize:       upload.Size,
		FileType:       upload.ContentType,
		CreatedAt:      now,
	}

	id := NewID()
	if err := t.storage.CreateMessage(ctx, id, message); err != nil {
		return Message{}, err
	}
	if err := t.storage.TouchConversation(ctx, conversationId, now); err != nil {
		return Message{}, err
	}

	stored := StoredMessage{Id: id, MessageDoc: message}
	return stored.ConvertToDTO(), nil
}

// begin marks a conversation as having a send in flight; a second send for
// the same conversation is refused until the first finishes.
func (t *threadService) begin(conversationId string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight[conversationId] {
		return false
	}
	t.inFlight[conversationId] = true
	return true
}

func (t *threadService) end(conversationId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, conversationId)
}
