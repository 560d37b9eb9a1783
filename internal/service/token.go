package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
)

// Principal описывает владельца токена.
type Principal struct {
	ID   uuid.UUID
	Role valueobject.Role
	Name string
}

// AccessToken возвращается клиенту после входа.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type accessClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет access-токены.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue подписывает токен для principal.
func (m *TokenManager) Issue(p Principal) (*AccessToken, error) {
	now := m.now()
	exp := now.Add(m.ttl)

	claims := accessClaims{
		Role: string(p.Role),
		Name: p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("token manager: sign %w", err)
	}
	return &AccessToken{Token: signed, ExpiresAt: exp}, nil
}

// Parse проверяет подпись и срок действия и возвращает principal.
func (m *TokenManager) Parse(token string) (*Principal, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &Principal{ID: id, Role: valueobject.Role(claims.Role), Name: claims.Name}, nil
}
