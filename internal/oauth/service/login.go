package service

import (
	"context"
	"errors"

	"github.com/waveer/oauth-gateway/internal/oauth/credentials"
	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/pkg/oautherrors"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// Login verifies the resource owner's credentials against a pending
// authorization request and issues an authorization code. The state
// entry is deleted exactly once, immediately after credentials verify;
// a failed password attempt leaves it valid so the login form can be
// redisplayed without restarting the flow.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	now := s.now()

	st, err := s.states.Consume(ctx, req.State, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "state registry unavailable")
		}
		s.metrics.Logins.WithLabelValues("invalid_state").Inc()
		return nil, oautherrors.New(oautherrors.CodeInvalidState, "Invalid or expired state parameter")
	}
	if req.ClientID != "" && req.ClientID != st.ClientID {
		s.metrics.Logins.WithLabelValues("invalid_state").Inc()
		return nil, oautherrors.New(oautherrors.CodeInvalidState, "State does not belong to this client")
	}

	profile, err := s.creds.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.Logins.WithLabelValues("invalid_credentials").Inc()
			return nil, oautherrors.New(oautherrors.CodeInvalidCredentials, "Invalid email or password")
		}
		s.metrics.CredentialFailures.Inc()
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "credential store unavailable")
	}
	if !credentials.Verify(req.Password, profile.PasswordHash) {
		s.metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, oautherrors.New(oautherrors.CodeInvalidCredentials, "Invalid email or password")
	}

	// Single point of state deletion in the whole flow.
	if err := s.states.Delete(ctx, req.State); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "failed to consume state")
	}

	authCode := &models.AuthorizationCode{
		Code:        models.NewOpaqueToken(),
		UserID:      profile.ID,
		ClientID:    st.ClientID,
		RedirectURI: st.RedirectURI,
		Scope:       st.Scope,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.codeTTL),
	}
	if err := s.codes.Create(ctx, authCode); err != nil {
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "failed to issue authorization code")
	}

	s.metrics.Logins.WithLabelValues("ok").Inc()
	s.metrics.CodesIssued.Inc()
	s.logger.InfoContext(ctx, "authorization code issued",
		"client_id", st.ClientID,
		"user_id", profile.ID,
	)
	return &models.LoginResult{
		RedirectURI: st.RedirectURI,
		Code:        authCode.Code,
		State:       req.State,
	}, nil
}
