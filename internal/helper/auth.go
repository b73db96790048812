package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

type Auth struct {
	Secret string
	cache  *TokenCache
}

func SetupAuth(s string, cache *TokenCache) Auth {
	return Auth{
		Secret: s,
		cache:  cache,
	}
}

func (a Auth) GenerateToken(userID uint, email string, role domain.Role) (string, error) {
	if userID == 0 || email == "" || role == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

// VerifyToken checks signature and expiry. Results are memoised briefly in the token cache
// when one is configured.
func (a Auth) VerifyToken(tokenString string) (dto.AuthResponse, error) {
	tokenString, err := stripBearer(tokenString)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if a.cache == nil {
		return a.verify(tokenString)
	}
	return a.cache.Verify(tokenString, a.verify)
}

func (a Auth) verify(tokenString string) (dto.AuthResponse, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dto.AuthResponse{}, errors.New("token expired")
		}
		return dto.AuthResponse{}, errors.New("token parse error")
	}
	if !token.Valid {
		return dto.AuthResponse{}, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return dto.AuthResponse{}, errors.New("invalid user_id claim")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	switch domain.Role(role) {
	case domain.RoleStudent, domain.RoleAssociate, domain.RoleDirector:
	default:
		return dto.AuthResponse{}, errors.New("invalid role claim")
	}
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)

	return dto.AuthResponse{
		UserID: uint(userID),
		Email:  email,
		Role:   domain.Role(role),
		Iat:    iat,
		Expiry: exp,
	}, nil
}

func (a Auth) GetCurrentUser(ctx *fiber.Ctx) (dto.AuthResponse, error) {
	claims, ok := ctx.Locals("user").(dto.AuthResponse)
	if !ok {
		return dto.AuthResponse{}, errors.New("missing auth user in context")
	}
	return claims, nil
}

// stripBearer accepts both "Bearer <token>" and a bare token.
func stripBearer(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", errors.New("missing token")
	}
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}
	return tokenString, nil
}
