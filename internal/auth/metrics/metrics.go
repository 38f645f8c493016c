package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the authorization flow.
// Tracks code and token issuance counts and critical path durations.
type Metrics struct {
	CodesIssued        prometheus.Counter
	TokensIssued       *prometheus.CounterVec
	RedeemFailures     *prometheus.CounterVec
	ClientAuthFailures prometheus.Counter
	CodeReplays        prometheus.Counter
	AuthorizeDuration  prometheus.Histogram
	IssueDuration      prometheus.Histogram
}

// New registers the auth collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "unique_authorization_codes_issued_total",
			Help: "Total number of authorization codes issued",
		}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unique_tokens_issued_total",
			Help: "Total number of tokens minted, by kind",
		}, []string{"kind"}),
		RedeemFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unique_code_redeem_failures_total",
			Help: "Authorization code redemptions that failed, by reason",
		}, []string{"reason"}),
		ClientAuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "unique_client_auth_failures_total",
			Help: "Token requests rejected because client authentication failed",
		}),
		CodeReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "unique_code_replays_total",
			Help: "Redemption attempts on an already used authorization code",
		}),
		AuthorizeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "unique_authorize_duration_seconds",
			Help:    "Duration of CreateAuthorization (consent, code and link in one transaction)",
			Buckets: latencyBuckets,
		}),
		IssueDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "unique_token_issue_duration_seconds",
			Help:    "Duration of token issuance (token endpoint critical path)",
			Buckets: latencyBuckets,
		}),
	}
}

func (m *Metrics) IncrementCodesIssued() {
	m.CodesIssued.Inc()
}

func (m *Metrics) IncrementTokensIssued(kind string) {
	m.TokensIssued.WithLabelValues(kind).Inc()
}

// IncrementRedeemFailure records a failed redemption. reason is one of
// not_found, already_used, expired, mismatch or pkce.
func (m *Metrics) IncrementRedeemFailure(reason string) {
	m.RedeemFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementClientAuthFailure() {
	m.ClientAuthFailures.Inc()
}

func (m *Metrics) IncrementCodeReplay() {
	m.CodeReplays.Inc()
}

// ObserveAuthorize records the duration of a CreateAuthorization call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAuthorize(start time.Time) {
	m.AuthorizeDuration.Observe(time.Since(start).Seconds())
}

// ObserveIssue records the duration of a token issuance.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}
