package model

import "time"

// Session is the single process-wide authenticated identity. The JTI ties
// issued tokens to this session; a newer login replaces it.
type Session struct {
	JTI         string    `json:"jti"`
	Role        Role      `json:"role"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	LoginAt     time.Time `json:"login_at"`
}

// Credential is one entry of the external per-role credential table.
type Credential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	DisplayName  string `json:"display_name"`
}

// LoginRequest is the payload for authentication. Role is part of the
// credential lookup key, not inferred from the username.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required,min=1,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=admin teacher student"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}
