package auth

// RegisterRequest is the self-registration payload. Roles defaults to ROLE_USER.
type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// RefreshRequest carries the refresh token issued at login.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned by login and refresh. RefreshToken is empty when
// sessions are not configured.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
