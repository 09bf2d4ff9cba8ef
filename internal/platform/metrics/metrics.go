package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	RequestDuration    *prometheus.HistogramVec
	AuthorizeRequests  prometheus.Counter
	Logins             *prometheus.CounterVec
	CodesIssued        prometheus.Counter
	CodesRedeemed      *prometheus.CounterVec
	TokensIssued       *prometheus.CounterVec
	SweeperDeletions   *prometheus.CounterVec
	CredentialFailures prometheus.Counter
}

// New creates all gateway metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oauth_gateway_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		AuthorizeRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "oauth_gateway_authorize_requests_total",
			Help: "Total authorize requests that created a state entry",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_gateway_logins_total",
			Help: "Login attempts by result (ok, invalid_state, invalid_credentials)",
		}, []string{"result"}),
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "oauth_gateway_authorization_codes_issued_total",
			Help: "Authorization codes issued after successful login",
		}),
		CodesRedeemed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_gateway_authorization_codes_redeemed_total",
			Help: "Code redemption attempts by result (ok, invalid_grant)",
		}, []string{"result"}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_gateway_tokens_issued_total",
			Help: "Tokens issued by grant (authorization_code, refresh_token)",
		}, []string{"grant"}),
		SweeperDeletions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_gateway_sweeper_deletions_total",
			Help: "Expired registry entries removed by the background sweep",
		}, []string{"registry"}),
		CredentialFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "oauth_gateway_credential_store_failures_total",
			Help: "Transport failures talking to the credential store",
		}),
	}
}
