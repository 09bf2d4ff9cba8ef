package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/waveer/oauth-gateway/internal/oauth/credentials"
	"github.com/waveer/oauth-gateway/internal/oauth/models"
	codestore "github.com/waveer/oauth-gateway/internal/oauth/store/code"
	statestore "github.com/waveer/oauth-gateway/internal/oauth/store/state"
	"github.com/waveer/oauth-gateway/internal/oauth/token"
	"github.com/waveer/oauth-gateway/internal/platform/metrics"
	"github.com/waveer/oauth-gateway/pkg/oautherrors"
)

const (
	testClientID     = "waveerchat_client_123"
	testClientSecret = "waveerchat_secret_xyz"
	testRedirectURI  = "https://app.example.com/callback"
)

// GrantSuite exercises the grant flows end to end against real
// in-memory registries; only the clock is injected.
type GrantSuite struct {
	suite.Suite
	svc     *Service
	states  *statestore.InMemoryStore
	creds   *credentials.InMemoryStore
	profile *credentials.Profile
	now     time.Time
}

func (s *GrantSuite) SetupTest() {
	s.now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s.states = statestore.NewMemory()
	s.creds = credentials.NewMemory()

	profile, err := s.creds.Seed("demo@example.com", "Demo User", "demo-password")
	s.Require().NoError(err)
	s.profile = profile

	s.svc = New(
		NewStaticClientRegistry(models.Client{ID: testClientID, Secret: testClientSecret}),
		s.states,
		codestore.NewMemory(),
		s.creds,
		token.NewService("test-signing-key", time.Hour, 168*time.Hour),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
		10*time.Minute,
		10*time.Minute,
		WithClock(func() time.Time { return s.now }),
	)
}

func TestGrantSuite(t *testing.T) {
	suite.Run(t, new(GrantSuite))
}

// authorize runs the authorize step with sensible defaults.
func (s *GrantSuite) authorize(state string) *models.AuthorizeResult {
	res, err := s.svc.Authorize(context.Background(), models.AuthorizeRequest{
		ClientID:     testClientID,
		RedirectURI:  testRedirectURI,
		ResponseType: "code",
		State:        state,
	})
	s.Require().NoError(err)
	return res
}

// login completes the login step for the seeded profile.
func (s *GrantSuite) login(state string) *models.LoginResult {
	res, err := s.svc.Login(context.Background(), models.LoginRequest{
		Email:    "demo@example.com",
		Password: "demo-password",
		State:    state,
		ClientID: testClientID,
	})
	s.Require().NoError(err)
	return res
}

func (s *GrantSuite) assertCode(err error, want oautherrors.Code) {
	s.Require().Error(err)
	s.Equal(want, oautherrors.GetCode(err))
}

func (s *GrantSuite) TestAuthorize() {
	ctx := context.Background()

	s.Run("echoes client-supplied state", func() {
		res := s.authorize("client_state_abc")
		s.Equal("client_state_abc", res.State)
		s.Equal(testClientID, res.ClientID)
	})

	s.Run("generates state when the client sends none", func() {
		res := s.authorize("")
		s.NotEmpty(res.State)
		s.Len(res.State, 64)
	})

	s.Run("rejects unknown client", func() {
		_, err := s.svc.Authorize(ctx, models.AuthorizeRequest{
			ClientID:    "nobody",
			RedirectURI: testRedirectURI,
		})
		s.assertCode(err, oautherrors.CodeInvalidClient)
	})

	s.Run("rejects unsupported response_type", func() {
		_, err := s.svc.Authorize(ctx, models.AuthorizeRequest{
			ClientID:     testClientID,
			RedirectURI:  testRedirectURI,
			ResponseType: "token",
		})
		s.assertCode(err, oautherrors.CodeInvalidRequest)
	})

	s.Run("rejects missing redirect_uri", func() {
		_, err := s.svc.Authorize(ctx, models.AuthorizeRequest{ClientID: testClientID})
		s.assertCode(err, oautherrors.CodeInvalidRequest)
	})
}

func (s *GrantSuite) TestLogin() {
	ctx := context.Background()

	s.Run("issues a code bound to the stored redirect target", func() {
		s.authorize("st_ok")
		res := s.login("st_ok")
		s.Equal(testRedirectURI, res.RedirectURI)
		s.Equal("st_ok", res.State)
		s.NotEmpty(res.Code)
	})

	s.Run("state survives a failed password and is spent by success", func() {
		s.authorize("st_retry")

		_, err := s.svc.Login(ctx, models.LoginRequest{
			Email:    "demo@example.com",
			Password: "wrong",
			State:    "st_retry",
		})
		s.assertCode(err, oautherrors.CodeInvalidCredentials)

		// Same state, correct password: the form retry works.
		s.login("st_retry")

		// But the successful login consumed it for good.
		_, err = s.svc.Login(ctx, models.LoginRequest{
			Email:    "demo@example.com",
			Password: "demo-password",
			State:    "st_retry",
		})
		s.assertCode(err, oautherrors.CodeInvalidState)
	})

	s.Run("rejects unknown state", func() {
		_, err := s.svc.Login(ctx, models.LoginRequest{
			Email:    "demo@example.com",
			Password: "demo-password",
			State:    "never_issued",
		})
		s.assertCode(err, oautherrors.CodeInvalidState)
	})

	s.Run("rejects expired state", func() {
		s.authorize("st_stale")
		s.now = s.now.Add(11 * time.Minute)
		_, err := s.svc.Login(ctx, models.LoginRequest{
			Email:    "demo@example.com",
			Password: "demo-password",
			State:    "st_stale",
		})
		s.assertCode(err, oautherrors.CodeInvalidState)
	})

	s.Run("rejects state borrowed by another client", func() {
		s.authorize("st_owned")
		_, err := s.svc.Login(ctx, models.LoginRequest{
			Email:    "demo@example.com",
			Password: "demo-password",
			State:    "st_owned",
			ClientID: "some_other_client",
		})
		s.assertCode(err, oautherrors.CodeInvalidState)
	})

	s.Run("unknown email reads as bad credentials", func() {
		s.authorize("st_ghost")
		_, err := s.svc.Login(ctx, models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "demo-password",
			State:    "st_ghost",
		})
		s.assertCode(err, oautherrors.CodeInvalidCredentials)
	})
}

// exchange runs the token endpoint for an issued code.
func (s *GrantSuite) exchange(code, redirectURI string) (*models.TokenResult, error) {
	return s.svc.Token(context.Background(), models.TokenRequest{
		GrantType:    string(models.GrantAuthorizationCode),
		Code:         code,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURI:  redirectURI,
	})
}

func (s *GrantSuite) TestTokenExchange() {
	s.Run("returns both tokens for a valid code", func() {
		s.authorize("st_x1")
		login := s.login("st_x1")

		res, err := s.exchange(login.Code, testRedirectURI)
		s.Require().NoError(err)
		s.Equal("Bearer", res.TokenType)
		s.Equal(3600, res.ExpiresIn)
		s.NotEmpty(res.AccessToken)
		s.NotEmpty(res.RefreshToken)
	})

	s.Run("second redemption of the same code fails", func() {
		s.authorize("st_x2")
		login := s.login("st_x2")

		_, err := s.exchange(login.Code, testRedirectURI)
		s.Require().NoError(err)

		_, err = s.exchange(login.Code, testRedirectURI)
		s.assertCode(err, oautherrors.CodeInvalidGrant)
	})

	s.Run("expired code fails like an unknown one", func() {
		s.authorize("st_x3")
		login := s.login("st_x3")
		s.now = s.now.Add(11 * time.Minute)

		_, err := s.exchange(login.Code, testRedirectURI)
		s.assertCode(err, oautherrors.CodeInvalidGrant)
	})

	s.Run("redirect_uri must match the authorize-time value exactly", func() {
		s.authorize("st_x4")
		login := s.login("st_x4")

		_, err := s.exchange(login.Code, testRedirectURI+"/")
		s.assertCode(err, oautherrors.CodeInvalidGrant)
	})

	s.Run("rejects wrong client secret before touching the code", func() {
		s.authorize("st_x5")
		login := s.login("st_x5")

		_, err := s.svc.Token(context.Background(), models.TokenRequest{
			GrantType:    string(models.GrantAuthorizationCode),
			Code:         login.Code,
			ClientID:     testClientID,
			ClientSecret: "wrong",
			RedirectURI:  testRedirectURI,
		})
		s.assertCode(err, oautherrors.CodeInvalidClient)

		// Failed client auth must not have burned the code.
		_, err = s.exchange(login.Code, testRedirectURI)
		s.Require().NoError(err)
	})

	s.Run("rejects missing grant_type and code", func() {
		_, err := s.svc.Token(context.Background(), models.TokenRequest{
			ClientID:     testClientID,
			ClientSecret: testClientSecret,
		})
		s.assertCode(err, oautherrors.CodeInvalidRequest)

		_, err = s.svc.Token(context.Background(), models.TokenRequest{
			GrantType:    string(models.GrantAuthorizationCode),
			ClientID:     testClientID,
			ClientSecret: testClientSecret,
		})
		s.assertCode(err, oautherrors.CodeInvalidRequest)
	})

	s.Run("rejects unsupported grant type", func() {
		_, err := s.svc.Token(context.Background(), models.TokenRequest{
			GrantType:    "password",
			ClientID:     testClientID,
			ClientSecret: testClientSecret,
		})
		s.assertCode(err, oautherrors.CodeUnsupportedGrantType)
	})
}

func (s *GrantSuite) TestRefresh() {
	ctx := context.Background()

	issueTokens := func(state string) *models.TokenResult {
		s.authorize(state)
		login := s.login(state)
		res, err := s.exchange(login.Code, testRedirectURI)
		s.Require().NoError(err)
		return res
	}

	s.Run("mints a new access token without rotating the refresh token", func() {
		issued := issueTokens("st_r1")

		res, err := s.svc.Refresh(ctx, models.RefreshRequest{
			RefreshToken: issued.RefreshToken,
			ClientID:     testClientID,
		})
		s.Require().NoError(err)
		s.NotEmpty(res.AccessToken)
		s.Empty(res.RefreshToken)
		s.Equal(3600, res.ExpiresIn)

		// The original refresh token is still good.
		_, err = s.svc.Refresh(ctx, models.RefreshRequest{
			RefreshToken: issued.RefreshToken,
			ClientID:     testClientID,
		})
		s.Require().NoError(err)
	})

	s.Run("works through the token endpoint with full client auth", func() {
		issued := issueTokens("st_r2")

		res, err := s.svc.Token(ctx, models.TokenRequest{
			GrantType:    string(models.GrantRefreshToken),
			RefreshToken: issued.RefreshToken,
			ClientID:     testClientID,
			ClientSecret: testClientSecret,
		})
		s.Require().NoError(err)
		s.NotEmpty(res.AccessToken)
		s.Empty(res.RefreshToken)
	})

	s.Run("rejects an access token presented as a refresh token", func() {
		issued := issueTokens("st_r3")

		_, err := s.svc.Refresh(ctx, models.RefreshRequest{
			RefreshToken: issued.AccessToken,
			ClientID:     testClientID,
		})
		s.assertCode(err, oautherrors.CodeInvalidGrant)
	})

	s.Run("rejects unknown client and missing token", func() {
		_, err := s.svc.Refresh(ctx, models.RefreshRequest{ClientID: "nobody", RefreshToken: "x"})
		s.assertCode(err, oautherrors.CodeInvalidClient)

		_, err = s.svc.Refresh(ctx, models.RefreshRequest{ClientID: testClientID})
		s.assertCode(err, oautherrors.CodeInvalidRequest)
	})
}
