package app

import (
	"chatLink/config"
	myMiddleware "chatLink/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) Routes() *chi.Mux {
	r := s.router
	r.Use(cors.Handler(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(myMiddleware.FirebaseConfig(config.SetupFirebase()))

	r.Post("/auth/guest", s.GuestLogin())

	r.Group(func(r chi.Router) {
		r.Use(myMiddleware.Authenticator(s.guestTokens))

		r.Post("/auth/session", s.CreateSession())

		r.Route("/chat", func(r chi.Router) {
			r.Get("/users", s.SearchUsers())
			r.Get("/conversations", s.GetConversations())
			r.Post("/conversations", s.CreateConversation())
			r.Patch("/conversations/{conversationId}", s.UpdateConversation())
			r.Get("/conversations/{conversationId}/messages", s.GetMessages())
			r.Post("/conversations/{conversationId}/messages", s.SendMessage())
			r.Post("/conversations/{conversationId}/attachments", s.SendAttachment())
			r.Get("/conversations/{conversationId}/invites", s.ListInvites())
			r.Post("/conversations/{conversationId}/invites", s.CreateInvite())
			r.Post("/invites/redeem", s.RedeemInvite())
		})
	})

	return r
}
