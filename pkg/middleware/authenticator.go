package middleware

import (
	"context"
	"net/http"
	"strings"

	"chatLink/pkg/token"
	"firebase.google.com/go/v4/auth"
)

// Authenticator accepts a Firebase ID token for signed-in users or a locally
// signed guest token, and puts the resolved identity on the request context.
func Authenticator(guestTokens *token.GuestTokens) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			firebaseAuth := r.Context().Value("auth").(*auth.Client)

			idToken := findToken(r, tokenFromHeader, tokenFromQuery)
			if idToken == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			if verified, err := firebaseAuth.VerifyIDToken(r.Context(), idToken); err == nil {
				ctx := context.WithValue(r.Context(), "UID", verified.UID)
				if email, ok := verified.Claims["email"].(string); ok {
					ctx = context.WithValue(ctx, "email", email)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := guestTokens.Verify(idToken)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), "UID", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromHeader(r *http.Request) string {
	// Get token from authorization header.
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:6]) == "BEARER" {
		return bearer[7:]
	}
	return ""
}

func tokenFromQuery(r *http.Request) string {
	// Get token from query param named "token".
	return r.URL.Query().Get("token")
}

func findToken(r *http.Request, findTokenFns ...func(r *http.Request) string) string {
	var tokenString string

	for _, fn := range findTokenFns {
		tokenString = fn(r)
		if tokenString != "" {
			break
		}
	}

	return tokenString
}
