package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the claims stored in a token
type TokenClaims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies the two token kinds. Implemented by
// PasetoService; an interface so handlers and middleware can be tested
// with a fake.
type TokenService interface {
	IssueAccessToken(userID uuid.UUID) (string, error)
	IssueRefreshToken(userID uuid.UUID) (string, error)
	VerifyAccessToken(tokenStr string) (*TokenClaims, error)
	VerifyRefreshToken(tokenStr string) (*TokenClaims, error)
}

// PasetoService signs and verifies PASETO v4.local tokens. Access and
// refresh tokens use independent symmetric keys, so a token of one kind
// can never pass verification as the other.
type PasetoService struct {
	accessKey       paseto.V4SymmetricKey
	refreshKey      paseto.V4SymmetricKey
	accessDuration  time.Duration
	refreshDuration time.Duration
}

func NewPasetoService(accessKey, refreshKey []byte, accessDuration, refreshDuration time.Duration) (*PasetoService, error) {
	if len(accessKey) != 32 {
		return nil, fmt.Errorf("access token key must be exactly 32 bytes, got %d", len(accessKey))
	}
	if len(refreshKey) != 32 {
		return nil, fmt.Errorf("refresh token key must be exactly 32 bytes, got %d", len(refreshKey))
	}

	ak, err := paseto.V4SymmetricKeyFromBytes(accessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create access key: %w", err)
	}
	rk, err := paseto.V4SymmetricKeyFromBytes(refreshKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh key: %w", err)
	}

	return &PasetoService{
		accessKey:       ak,
		refreshKey:      rk,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}, nil
}

// IssueAccessToken generates a short-lived access token for the user.
func (s *PasetoService) IssueAccessToken(userID uuid.UUID) (string, error) {
	return issue(s.accessKey, userID, s.accessDuration), nil
}

// IssueRefreshToken generates a long-lived refresh token for the user.
func (s *PasetoService) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return issue(s.refreshKey, userID, s.refreshDuration), nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *PasetoService) VerifyAccessToken(tokenStr string) (*TokenClaims, error) {
	return verify(s.accessKey, tokenStr)
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (s *PasetoService) VerifyRefreshToken(tokenStr string) (*TokenClaims, error) {
	return verify(s.refreshKey, tokenStr)
}

func issue(key paseto.V4SymmetricKey, userID uuid.UUID, duration time.Duration) string {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("user_id", userID.String())

	return token.V4Encrypt(key, nil)
}

func verify(key paseto.V4SymmetricKey, tokenStr string) (*TokenClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(key, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; distinguish expired from invalid
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	rawID, err := token.GetString("user_id")
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
