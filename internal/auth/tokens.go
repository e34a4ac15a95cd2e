package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
)

// Claims are the ID token claims the quiz reads; names follow Google/Firebase ID tokens.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HMAC ID tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret, now: time.Now}
}

// NewTokenServiceWithClock is used by tests that need fixed timestamps.
func NewTokenServiceWithClock(secret []byte, now func() time.Time) *TokenService {
	return &TokenService{secret: secret, now: now}
}

// Issue creates a signed ID token for user valid for ttl.
func (s *TokenService) Issue(user domain.User, ttl time.Duration) (string, error) {
	if user.ID == "" {
		return "", errors.New("user id is required")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Name:    user.DisplayName,
		Picture: user.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its profile. Failures are *domain.AuthError.
func (s *TokenService) Verify(tokenString string) (domain.User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.User{}, &domain.AuthError{Message: err.Error(), Err: err}
	}
	if claims.Subject == "" {
		return domain.User{}, &domain.AuthError{Message: "token has no subject"}
	}

	return domain.User{
		ID:          claims.Subject,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}
