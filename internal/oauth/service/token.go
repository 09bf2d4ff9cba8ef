package service

import (
	"context"
	"errors"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/internal/oauth/token"
	"github.com/waveer/oauth-gateway/pkg/oautherrors"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// Token handles the token endpoint for both grants. Client id and
// secret must both match before any grant-specific work happens.
func (s *Service) Token(ctx context.Context, req models.TokenRequest) (*models.TokenResult, error) {
	if !s.clients.ValidateWithSecret(req.ClientID, req.ClientSecret) {
		return nil, oautherrors.New(oautherrors.CodeInvalidClient, "Invalid client credentials")
	}

	switch req.GrantType {
	case "":
		return nil, oautherrors.New(oautherrors.CodeInvalidRequest, "Missing grant_type")
	case string(models.GrantAuthorizationCode):
		return s.exchangeAuthorizationCode(ctx, req)
	case string(models.GrantRefreshToken):
		return s.refreshAccessToken(ctx, req.RefreshToken)
	default:
		return nil, oautherrors.New(oautherrors.CodeUnsupportedGrantType, "Unsupported grant type")
	}
}

// Refresh handles the dedicated refresh endpoint, which authenticates
// the client by id only.
func (s *Service) Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenResult, error) {
	if !s.clients.Validate(req.ClientID) {
		return nil, oautherrors.New(oautherrors.CodeInvalidClient, "Invalid client_id")
	}
	return s.refreshAccessToken(ctx, req.RefreshToken)
}

func (s *Service) exchangeAuthorizationCode(ctx context.Context, req models.TokenRequest) (*models.TokenResult, error) {
	if req.Code == "" {
		return nil, oautherrors.New(oautherrors.CodeInvalidRequest, "Missing authorization code")
	}

	authCode, err := s.codes.Redeem(ctx, req.Code, s.now())
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "code registry unavailable")
		}
		// Expired and unknown look identical to the client; the log
		// keeps the distinction.
		s.metrics.CodesRedeemed.WithLabelValues("invalid_grant").Inc()
		s.logger.WarnContext(ctx, "code redemption rejected",
			"client_id", req.ClientID,
			"reason", redemptionReason(err),
		)
		return nil, oautherrors.New(oautherrors.CodeInvalidGrant, "Invalid or expired authorization code")
	}

	if authCode.ClientID != req.ClientID {
		s.metrics.CodesRedeemed.WithLabelValues("invalid_grant").Inc()
		return nil, oautherrors.New(oautherrors.CodeInvalidGrant, "Invalid or expired authorization code")
	}
	// Exact match between the authorize-time and token-time redirect
	// targets is the interception defense; nothing may relax it.
	if authCode.RedirectURI != req.RedirectURI {
		s.metrics.CodesRedeemed.WithLabelValues("invalid_grant").Inc()
		return nil, oautherrors.New(oautherrors.CodeInvalidGrant, "Redirect URI mismatch")
	}

	profile, err := s.creds.FindByID(ctx, authCode.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, oautherrors.New(oautherrors.CodeInvalidGrant, "User not found")
		}
		s.metrics.CredentialFailures.Inc()
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "credential store unavailable")
	}

	accessToken, err := s.tokens.IssueAccess(token.Subject{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
	})
	if err != nil {
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "failed to sign access token")
	}
	refreshToken, err := s.tokens.IssueRefresh(profile.ID)
	if err != nil {
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "failed to sign refresh token")
	}

	s.metrics.CodesRedeemed.WithLabelValues("ok").Inc()
	s.metrics.TokensIssued.WithLabelValues(string(models.GrantAuthorizationCode)).Inc()
	s.logger.InfoContext(ctx, "authorization code redeemed",
		"client_id", req.ClientID,
		"user_id", profile.ID,
	)
	return &models.TokenResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// refreshAccessToken mints a new access token from a refresh token.
// The refresh token is not rotated: it stays valid until its natural
// expiry.
func (s *Service) refreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenResult, error) {
	if refreshToken == "" {
		return nil, oautherrors.New(oautherrors.CodeInvalidRequest, "Missing refresh token")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, oautherrors.New(oautherrors.CodeInvalidGrant, "Invalid refresh token")
	}

	profile, err := s.creds.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, oautherrors.New(oautherrors.CodeInvalidGrant, "User not found")
		}
		s.metrics.CredentialFailures.Inc()
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "credential store unavailable")
	}

	accessToken, err := s.tokens.IssueAccess(token.Subject{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
	})
	if err != nil {
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "failed to sign access token")
	}

	s.metrics.TokensIssued.WithLabelValues(string(models.GrantRefreshToken)).Inc()
	return &models.TokenResult{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func redemptionReason(err error) string {
	if errors.Is(err, sentinel.ErrExpired) {
		return "expired"
	}
	return "not_found"
}
