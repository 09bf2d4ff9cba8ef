package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/internal/oauth/service/mocks"
	"github.com/waveer/oauth-gateway/internal/oauth/token"
	"github.com/waveer/oauth-gateway/internal/platform/metrics"
	"github.com/waveer/oauth-gateway/pkg/oautherrors"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// FailureSuite checks that registry outages surface as server_error
// instead of leaking into grant-validation responses.
type FailureSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	states *mocks.MockStateStore
	codes  *mocks.MockCodeStore
	creds  *mocks.MockCredentialStore
	svc    *Service
}

func (s *FailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.states = mocks.NewMockStateStore(s.ctrl)
	s.codes = mocks.NewMockCodeStore(s.ctrl)
	s.creds = mocks.NewMockCredentialStore(s.ctrl)

	s.svc = New(
		NewStaticClientRegistry(models.Client{ID: testClientID, Secret: testClientSecret}),
		s.states,
		s.codes,
		s.creds,
		token.NewService("test-signing-key", time.Hour, 168*time.Hour),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
		10*time.Minute,
		10*time.Minute,
	)
}

func TestFailureSuite(t *testing.T) {
	suite.Run(t, new(FailureSuite))
}

func unavailable() error {
	return fmt.Errorf("redis: connection refused: %w", sentinel.ErrUnavailable)
}

func (s *FailureSuite) TestAuthorizeStateWriteFails() {
	s.states.EXPECT().Create(gomock.Any(), gomock.Any()).Return(unavailable())

	_, err := s.svc.Authorize(context.Background(), models.AuthorizeRequest{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
	})
	s.Equal(oautherrors.CodeServerError, oautherrors.GetCode(err))
}

func (s *FailureSuite) TestLoginStateRegistryDown() {
	s.states.EXPECT().Consume(gomock.Any(), "st", gomock.Any()).Return(nil, unavailable())

	_, err := s.svc.Login(context.Background(), models.LoginRequest{
		Email:    "demo@example.com",
		Password: "demo-password",
		State:    "st",
	})
	s.Equal(oautherrors.CodeServerError, oautherrors.GetCode(err))
}

func (s *FailureSuite) TestLoginCredentialStoreDown() {
	now := time.Now()
	s.states.EXPECT().Consume(gomock.Any(), "st", gomock.Any()).Return(&models.AuthState{
		Token:       "st",
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(10 * time.Minute),
	}, nil)
	s.creds.EXPECT().FindByEmail(gomock.Any(), "demo@example.com").Return(nil, unavailable())

	_, err := s.svc.Login(context.Background(), models.LoginRequest{
		Email:    "demo@example.com",
		Password: "demo-password",
		State:    "st",
	})
	s.Equal(oautherrors.CodeServerError, oautherrors.GetCode(err))
}

func (s *FailureSuite) TestExchangeCodeRegistryDown() {
	s.codes.EXPECT().Redeem(gomock.Any(), "code_abc", gomock.Any()).Return(nil, unavailable())

	_, err := s.svc.Token(context.Background(), models.TokenRequest{
		GrantType:    string(models.GrantAuthorizationCode),
		Code:         "code_abc",
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURI:  testRedirectURI,
	})
	s.Equal(oautherrors.CodeServerError, oautherrors.GetCode(err))
}
