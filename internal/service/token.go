package service

import (
	"time"

	"quorum/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "quorum-api"
	tokenAudience = "quorum-client"
	tokenTTL      = 24 * time.Hour
)

// TokenClaims is the authenticated identity carried by a verified token.
// IsAdmin reflects the role at issue time; role changes take effect on the
// next login.
type TokenClaims struct {
	UserID   uint
	Username string
	IsAdmin  bool
	JTI      string
}

// TokenService issues and verifies the signed bearer tokens used by the API.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a token for the user, valid for 24 hours.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// Verify parses and validates a token string, checking the signature,
// expiry, issuer and audience. Any failure maps to UNAUTHENTICATED; the
// caller never learns which check failed.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	out := &TokenClaims{UserID: uint(sub)}
	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}
	if isAdmin, ok := claims["is_admin"].(bool); ok {
		out.IsAdmin = isAdmin
	}
	if jti, ok := claims["jti"].(string); ok {
		out.JTI = jti
	}
	return out, nil
}
