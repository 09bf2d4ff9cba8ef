package service

import (
	"context"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/pkg/oautherrors"
)

const defaultScope = "profile email"

// Authorize starts an authorization attempt: it validates the client,
// records the pending request in the state registry, and returns the
// data the login page must echo back.
func (s *Service) Authorize(ctx context.Context, req models.AuthorizeRequest) (*models.AuthorizeResult, error) {
	if !s.clients.Validate(req.ClientID) {
		return nil, oautherrors.New(oautherrors.CodeInvalidClient, "Invalid client_id")
	}
	if req.ResponseType != "" && req.ResponseType != "code" {
		return nil, oautherrors.New(oautherrors.CodeInvalidRequest, "Unsupported response_type")
	}
	if req.RedirectURI == "" {
		return nil, oautherrors.New(oautherrors.CodeInvalidRequest, "Missing redirect_uri")
	}

	// The client's own state value keys the entry when supplied, so it
	// round-trips through the login redirect untouched. Absent one, a
	// fresh opaque token is generated.
	stateToken := req.State
	if stateToken == "" {
		stateToken = models.NewOpaqueToken()
	}
	scope := req.Scope
	if scope == "" {
		scope = defaultScope
	}

	now := s.now()
	st := &models.AuthState{
		Token:       stateToken,
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		Scope:       scope,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.stateTTL),
	}
	if err := s.states.Create(ctx, st); err != nil {
		return nil, oautherrors.Wrap(err, oautherrors.CodeServerError, "failed to record authorization request")
	}

	s.metrics.AuthorizeRequests.Inc()
	s.logger.InfoContext(ctx, "authorization request recorded",
		"client_id", req.ClientID,
		"redirect_uri", req.RedirectURI,
	)
	return &models.AuthorizeResult{State: stateToken, ClientID: req.ClientID}, nil
}
