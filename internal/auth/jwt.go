package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTConfig struct {
	Issuer         string
	AccessSecret   string
	RefreshSecret  string
	AccessTTLMin   int
	RefreshTTLDays int
}

type JWTManager struct {
	cfg JWTConfig
	now func() time.Time
}

type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Name   string    `json:"name,omitempty"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg, now: time.Now}
}

func (m *JWTManager) AccessTTL() time.Duration {
	return time.Duration(m.cfg.AccessTTLMin) * time.Minute
}

func (m *JWTManager) RefreshTTL() time.Duration {
	return time.Duration(m.cfg.RefreshTTLDays) * 24 * time.Hour
}

func (m *JWTManager) SignAccess(p Principal) (string, time.Time, error) {
	return m.sign(p, m.AccessTTL(), m.cfg.AccessSecret)
}

func (m *JWTManager) SignRefresh(p Principal) (string, time.Time, error) {
	return m.sign(p, m.RefreshTTL(), m.cfg.RefreshSecret)
}

func (m *JWTManager) sign(p Principal, ttl time.Duration, secret string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID: p.UserID,
		Name:   p.Name,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   p.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString([]byte(secret))
	return s, exp, err
}

func (m *JWTManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, []byte(m.cfg.AccessSecret))
}

func (m *JWTManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, []byte(m.cfg.RefreshSecret))
}

func (m *JWTManager) parse(tokenStr string, secret []byte) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(m.cfg.Issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Principal is the identity carried by a token.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

func (c *Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Name: c.Name, Role: c.Role}
}
