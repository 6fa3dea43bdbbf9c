package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/pwalczk/contactbook/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of type contextKey, so only this
// package can read or write the authenticated account in the context.
type contextKey string

const accountKey contextKey = "account"

// AccountSource resolves an account by its ID. Satisfied by the sqlite
// account store; kept as a small local interface so the middleware doesn't
// depend on the full repository surface.
type AccountSource interface {
	GetByID(ctx context.Context, id string) (*model.Account, error)
}

// RequireAuth enforces authentication on protected routes.
//
// Per request it:
//  1. reads the bearer token from the Authorization header (missing → 401),
//  2. validates the token signature, issuer and expiry (invalid → 401),
//  3. loads the account the token was issued for (unknown → 401),
//  4. checks the presented token is the account's current session token,
//  5. attaches the account to the request context and calls the next handler.
//
// Step 4 is what makes logout effective: a signed token stays
// cryptographically valid until it expires, but once the stored session
// token is cleared (or replaced by a newer login) the stale token is
// rejected here.
func RequireAuth(tokens *TokenService, accounts AccountSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			accountID, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			account, err := accounts.GetByID(r.Context(), accountID)
			if err != nil {
				unauthorized(w)
				return
			}

			if account.SessionToken != tokenStr {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext retrieves the authenticated account from the request
// context. Returns (nil, false) when the request did not pass RequireAuth.
func AccountFromContext(ctx context.Context) (*model.Account, bool) {
	account, ok := ctx.Value(accountKey).(*model.Account)
	return account, ok && account != nil
}

// bearerToken reads the Authorization header. Both a bare token and the
// conventional "Bearer <token>" form are accepted.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
}
