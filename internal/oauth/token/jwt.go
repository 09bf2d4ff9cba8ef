package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single failure outcome of verification.
// Expired, tampered, malformed and wrong-kind tokens all collapse to
// it so callers cannot build an oracle from the distinction.
var ErrInvalidToken = errors.New("invalid token")

const refreshTokenType = "refresh"

// Claims is the signed claim set for both token kinds. Access tokens
// carry the subject's profile and no type marker; refresh tokens carry
// type=refresh and nothing else beyond the subject id.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Subject identifies the resource owner an access token is minted for.
type Subject struct {
	ID    string
	Email string
	Name  string
}

// Service mints and verifies signed tokens. The signing key is fixed
// for the life of the process; distinct instances with distinct keys
// reject each other's tokens.
type Service struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService constructs a token service with explicit key and lifetimes.
func NewService(signingKey string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL exposes the configured access token lifetime for the
// expires_in field of token responses.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccess mints a short-lived access token for the subject.
func (s *Service) IssueAccess(subject Subject) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: subject.Email,
		Name:  subject.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	})
	return t.SignedString(s.signingKey)
}

// IssueRefresh mints a long-lived refresh token for the subject id.
func (s *Service) IssueRefresh(subjectID string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	return t.SignedString(s.signingKey)
}

// VerifyAccess validates signature and expiry and returns the claims.
// Refresh tokens are rejected: the bearer surface never accepts them.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	claims, err := s.verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry and requires the
// refresh marker. Access tokens presented here are rejected.
func (s *Service) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := s.verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
