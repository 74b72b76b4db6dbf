package app

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"net/http"

	"chatLink/pkg/api"
	"github.com/go-chi/chi/v5"
)

// notification is the single error shape the client renders; no structured
// error codes travel past this boundary.
type notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) notify(w http.ResponseWriter, statusCode int, title string, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(notification{Title: title, Description: description}); err != nil {
		log.Println(err)
	}
}

func (s *Server) respond(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println(err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrEmptyGuestName),
		errors.Is(err, api.ErrEmptyGroupName),
		errors.Is(err, api.ErrNoMembers),
		errors.Is(err, api.ErrEmptyMessage),
		errors.Is(err, api.ErrEmptyFileName):
		s.notify(w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, api.ErrInviteInvalid):
		s.notify(w, http.StatusNotFound, "Invalid invite", "This invite link is invalid or has been revoked.")
	case errors.Is(err, api.ErrInviteExpired):
		s.notify(w, http.StatusGone, "Invite expired", "This invite link has expired.")
	case errors.Is(err, api.ErrInviteLimitReached):
		s.notify(w, http.StatusConflict, "Invite limit reached", "This invite has reached its usage limit.")
	case errors.Is(err, api.ErrSendInFlight):
		s.notify(w, http.StatusConflict, "Please wait", "The previous message is still being sent.")
	default:
		log.Println(err)
		s.notify(w, http.StatusInternalServerError, "Something went wrong", "Please try again.")
	}
}

func (s *Server) currentUser(r *http.Request) (api.User, error) {
	// UID from the verified token put on the context by the authenticator
	uid := r.Context().Value("UID").(string)
	return s.identityService.GetUser(r.Context(), uid)
}

type sessionResponse struct {
	User                 api.User `json:"user"`
	Token                string   `json:"token,omitempty"`
	JoinedConversationId string   `json:"joinedConversationId,omitempty"`
	InviteError          string   `json:"inviteError,omitempty"`
}

// CreateSession turns a verified sign-in into a directory record and, when
// the page captured a pending invite code, redeems it. A failed redemption
// does not fail the login.
func (s *Server) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := r.Context().Value("UID").(string)
		email, _ := r.Context().Value("email").(string)

		var request struct {
			InviteCode string `json:"inviteCode"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&request)
		}

		user, err := s.identityService.ResolveAuthenticatedUser(r.Context(), api.AuthEvent{UID: uid, Email: email})
		if err != nil {
			s.writeError(w, err)
			return
		}

		response := sessionResponse{User: user}
		if request.InviteCode != "" {
			conversationId, err := s.inviteService.RedeemInvite(r.Context(), user, request.InviteCode)
			if err != nil {
				response.InviteError = err.Error()
			} else {
				response.JoinedConversationId = conversationId
			}
		}

		s.respond(w, http.StatusOK, response)
	}
}

// GuestLogin synthesizes a guest identity from a display name, with the same
// optional pending-invite redemption as CreateSession.
func (s *Server) GuestLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Name       string `json:"name"`
			InviteCode string `json:"inviteCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "Could not read the request body.")
			return
		}

		user, signed, err := s.identityService.ResolveGuestUser(r.Context(), request.Name)
		if err != nil {
			s.writeError(w, err)
			return
		}

		response := sessionResponse{User: user, Token: signed}
		if request.InviteCode != "" {
			conversationId, err := s.inviteService.RedeemInvite(r.Context(), user, request.InviteCode)
			if err != nil {
				response.InviteError = err.Error()
			} else {
				response.JoinedConversationId = conversationId
			}
		}

		s.respond(w, http.StatusCreated, response)
	}
}

func (s *Server) SearchUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.identityService.SearchUsers(r.Context(), r.URL.Query().Get("query"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusOK, users)
	}
}

func (s *Server) GetConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := r.Context().Value("UID").(string)

		conversations, err := s.directoryService.GetConversations(r.Context(), uid)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusOK, conversations)
	}
}

// CreateConversation serves both the new-private-chat and new-group dialogs,
// switched on the requested type.
func (s *Server) CreateConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Type         string   `json:"type"`
			TargetUserId string   `json:"targetUserId"`
			Name         string   `json:"name"`
			Description  string   `json:"description"`
			MemberIds    []string `json:"memberIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "Could not read the request body.")
			return
		}

		currentUser, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		var conversation api.Conversation
		switch request.Type {
		case api.ConversationPrivate:
			if request.TargetUserId == "" {
				s.notify(w, http.StatusBadRequest, "Invalid input", "A target user is required for a private chat.")
				return
			}
			conversation, err = s.membershipService.CreatePrivateChat(r.Context(), currentUser, request.TargetUserId)
		case api.ConversationGroup:
			conversation, err = s.membershipService.CreateGroup(r.Context(), currentUser, request.Name, request.Description, request.MemberIds)
		default:
			s.notify(w, http.StatusBadRequest, "Invalid input", "Unknown conversation type.")
			return
		}
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.respond(w, http.StatusCreated, conversation)
	}
}

func (s *Server) UpdateConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationId := chi.URLParam(r, "conversationId")

		patchJSON, err := ioutil.ReadAll(r.Body)
		if err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "Could not read the request body.")
			return
		}

		conversation, err := s.membershipService.UpdateConversation(r.Context(), conversationId, patchJSON)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusOK, conversation)
	}
}

func (s *Server) GetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationId := chi.URLParam(r, "conversationId")

		messages, err := s.threadService.GetMessages(r.Context(), conversationId)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusOK, messages)
	}
}

func (s *Server) SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationId := chi.URLParam(r, "conversationId")

		var request struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "Could not read the request body.")
			return
		}

		sender, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		message, err := s.threadService.SendText(r.Context(), conversationId, sender, request.Body)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusCreated, message)
	}
}

func (s *Server) SendAttachment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationId := chi.URLParam(r, "conversationId")

		file, header, err := r.FormFile("file")
		if err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "No file was attached.")
			return
		}
		defer file.Close()

		sender, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		upload := api.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
		message, err := s.threadService.SendAttachment(r.Context(), conversationId, sender, upload, func(percent int) {
			log.Printf("Uploading %s to conversation %s: %d%%", header.Filename, conversationId, percent)
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusCreated, message)
	}
}

func (s *Server) CreateInvite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationId := chi.URLParam(r, "conversationId")
		uid := r.Context().Value("UID").(string)

		var request struct {
			ExpiresInHours int `json:"expiresInHours"`
			MaxUses        int `json:"maxUses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "Could not read the request body.")
			return
		}

		invite, err := s.inviteService.GenerateInvite(r.Context(), conversationId, uid, request.ExpiresInHours, request.MaxUses)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusCreated, invite)
	}
}

func (s *Server) ListInvites() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationId := chi.URLParam(r, "conversationId")

		invites, err := s.inviteService.ListInvites(r.Context(), conversationId)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respond(w, http.StatusOK, invites)
	}
}

// RedeemInvite joins the caller to the invite's conversation and hands back
// the reloaded conversation list so the client can select the new entry.
func (s *Server) RedeemInvite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.notify(w, http.StatusBadRequest, "Invalid input", "Could not read the request body.")
			return
		}

		user, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		conversationId, err := s.inviteService.RedeemInvite(r.Context(), user, request.Code)
		if err != nil {
			s.writeError(w, err)
			return
		}

		conversations, err := s.directoryService.GetConversations(r.Context(), user.Id)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.respond(w, http.StatusOK, struct {
			ConversationId string             `json:"conversationId"`
			Conversations  []api.Conversation `json:"conversations"`
		}{ConversationId: conversationId, Conversations: conversations})
	}
}
