package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tasktracker/internal/domain"
)

// DefaultTokenTTL bounds how long a role change or removed account can go unnoticed.
const DefaultTokenTTL = time.Hour

// Claims is the signed payload of a bearer token.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	Verify(token string) (domain.Identity, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &tokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *tokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *tokenService) Verify(raw string) (domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.ExpiresAt == nil {
		return domain.Identity{}, fmt.Errorf("%w: token has no expiry", domain.ErrUnauthenticated)
	}
	role, ok := domain.ParseRole(string(claims.Role))
	if claims.UserID == "" || claims.Role == "" || !ok {
		return domain.Identity{}, fmt.Errorf("%w: incomplete claims", domain.ErrUnauthenticated)
	}

	return domain.Identity{ID: claims.UserID, Email: claims.Email, Role: role}, nil
}
