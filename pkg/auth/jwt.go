package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "pocket-ledger"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenTypeMismatch = errors.New("token type mismatch")
)

type Claims struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret        []byte
	tokenDuration time.Duration
	refreshExp    time.Duration
	now           func() time.Time
}

func NewJWTManager(secret string, tokenDuration, refreshExp time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		tokenDuration: tokenDuration,
		refreshExp:    refreshExp,
		now:           time.Now,
	}
}

// GenerateToken issues an access token
func (m *JWTManager) GenerateToken(userID, username, email string) (string, error) {
	return m.sign(Claims{UserID: userID, Username: username, Email: email, TokenType: TokenTypeAccess}, m.tokenDuration)
}

// GenerateRefreshToken issues a refresh token that only carries the user id
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.sign(Claims{UserID: userID, TokenType: TokenTypeRefresh}, m.refreshExp)
}

// ValidateToken parses an access token
func (m *JWTManager) ValidateToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess)
}

// ValidateRefreshToken parses a refresh token
func (m *JWTManager) ValidateRefreshToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh)
}

func (m *JWTManager) GetTokenDuration() time.Duration {
	return m.tokenDuration
}

func (m *JWTManager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) parse(tokenString string, tokenType TokenType) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrTokenTypeMismatch
	}
	return claims, nil
}
