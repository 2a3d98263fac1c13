package auth

import (
	"time"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour // 604800s
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the server-side binding of a user to the single refresh token that is valid for them.
type Session struct {
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
}
