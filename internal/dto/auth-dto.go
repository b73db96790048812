package dto

import "github.com/SundayYogurt/visa_service/internal/domain"

// AuthResponse is the verified identity carried by an access token.
type AuthResponse struct {
	UserID uint        `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Iat    float64     `json:"iat"`
	Expiry float64     `json:"expiry"`
}

func (a AuthResponse) IsDirector() bool {
	return a.Role == domain.RoleDirector
}
