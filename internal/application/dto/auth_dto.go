package dto

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest entrada para POST /api/auth/refresh y /api/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserContext identidad resuelta a partir de un token.
type UserContext struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// TokenResponse par de tokens emitido por login o refresh.
type TokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"` // segundos de vida del access token
	User         UserContext `json:"user"`
}
