package dto

import (
	"time"

	"github.com/clubhub/club-gateway/internal/domain"
)

// LoginRequest payload for sign-in.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
	Remember        bool   `json:"remember"`
}

// RegisterRequest payload for account creation.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	ReferralCode    string `json:"referralCode,omitempty"`
	Remember        bool   `json:"remember"`
}

// OAuthCallbackRequest payload for the OAuth bridge.
type OAuthCallbackRequest struct {
	Provider string              `json:"provider"`
	Profile  domain.OAuthProfile `json:"profile"`
	IDToken  string              `json:"idToken,omitempty"`
	Remember bool                `json:"remember"`
}

// SessionResponse is the caller-visible session. It never carries the
// refresh token.
type SessionResponse struct {
	User        domain.Identity `json:"user"`
	DisplayName string          `json:"displayName"`
	AccessToken string          `json:"accessToken"`
	Roles       []string        `json:"roles"`
	Provider    string          `json:"provider"`
	Expires     time.Time       `json:"expires"`
}

// FromProjection converts the domain projection into the response shape.
func FromProjection(p domain.SessionProjection) SessionResponse {
	return SessionResponse{
		User:        p.User,
		DisplayName: p.User.DisplayName(),
		AccessToken: p.AccessToken,
		Roles:       p.Roles,
		Provider:    string(p.Provider),
		Expires:     p.Expires,
	}
}
