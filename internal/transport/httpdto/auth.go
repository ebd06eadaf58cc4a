package httpdto

// RegisterRequest is used for POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is used for POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after successful registration or login.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
