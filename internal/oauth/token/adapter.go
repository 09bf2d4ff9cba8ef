package token

import (
	"github.com/waveer/oauth-gateway/internal/platform/middleware"
)

func toBearerClaims(claims *Claims) *middleware.BearerClaims {
	return &middleware.BearerClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}
}

// MiddlewareAdapter exposes the token service through the middleware's
// TokenVerifier interface.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) VerifyAccess(tokenString string) (*middleware.BearerClaims, error) {
	claims, err := a.service.VerifyAccess(tokenString)
	if err != nil {
		return nil, err
	}
	return toBearerClaims(claims), nil
}
