package model

import "time"

// User is a registered learner. Owns at most one cronograma.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginForm is the OAuth2 password-flow form (username carries the email).
type LoginForm struct {
	Username string `form:"username" binding:"required,max=255"`
	Password string `form:"password" binding:"required,max=128"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
