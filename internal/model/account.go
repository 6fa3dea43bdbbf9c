// Package model defines the data structures used throughout the application.
package model

import "time"

// Subscription tiers an account can be on. The tier is set by billing,
// which lives outside this service; we only persist and report it.
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// Account represents a registered account.
//
// PasswordHash is the bcrypt digest of the password — the plaintext is never
// stored and the field is excluded from JSON so it can never leak through an
// API response.
//
// SessionToken mirrors the JWT issued at login. It is empty while the account
// is logged out; the auth middleware compares it against the presented token,
// so clearing it on logout invalidates tokens that are still unexpired.
//
// VerificationToken is a one-time value generated at signup. It is cleared in
// the same update that flips Verified to true, so at any point exactly one of
// "unverified with token" or "verified without token" holds.
type Account struct {
	ID                string    `json:"id"                db:"id"`
	Email             string    `json:"email"             db:"email"`
	PasswordHash      string    `json:"-"                 db:"password_hash"`
	Subscription      string    `json:"subscription"      db:"subscription"`
	SessionToken      string    `json:"-"                 db:"session_token"`
	AvatarURL         string    `json:"avatarURL"         db:"avatar_url"`
	Verified          bool      `json:"verified"          db:"verified"`
	VerificationToken string    `json:"verificationToken,omitempty" db:"verification_token"`
	CreatedAt         time.Time `json:"createdAt"         db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt"         db:"updated_at"`
}
