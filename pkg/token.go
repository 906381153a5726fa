package pkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	Subject string
	Role    string
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// roleClaimURI is the role claim name used by .NET token issuers.
const roleClaimURI = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

func ParseJwtToken(tokenString string, secretKey string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return TokenClaims{}, err
	}
	if !token.Valid {
		return TokenClaims{}, errors.New("invalid token")
	}

	var tokenClaims TokenClaims
	tokenClaims.Subject, _ = claims.GetSubject()
	if role, ok := claims["role"].(string); ok {
		tokenClaims.Role = role
	} else if role, ok := claims[roleClaimURI].(string); ok {
		tokenClaims.Role = role
	}
	if tokenClaims.Subject == "" {
		return TokenClaims{}, errors.New("invalid token claims: missing sub")
	}

	return tokenClaims, nil
}

// GenerateJwtToken signs an HS256 token with sub and role claims.
func GenerateJwtToken(claims TokenClaims, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secretKey))
}

func GetTokenFromHeaders(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing token")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("invalid token")
	}

	return strings.TrimSpace(token), nil
}
