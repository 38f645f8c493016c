// Package service implements the OIDC authorization code flow: resolving the
// browser session, recording consent, issuing single-use codes and exchanging
// them for signed tokens.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"unique/internal/auth/device"
	"unique/internal/auth/metrics"
	"unique/internal/auth/models"
	"unique/pkg/attrs"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/requestcontext"
)

const tracerName = "unique/internal/auth/service"

// Stores groups the persistence collaborators of the flow.
type Stores struct {
	Users          UserStore
	Apps           AppStore
	Sessions       SessionStore
	Auths          AuthStore
	Consents       ConsentStore
	Codes          CodeStore
	Authorizations AuthorizationStore
	Tokens         TokenStore
	Pending        PendingStore
}

func (s Stores) validate() error {
	if s.Users == nil || s.Apps == nil || s.Sessions == nil || s.Auths == nil ||
		s.Consents == nil || s.Codes == nil || s.Authorizations == nil ||
		s.Tokens == nil || s.Pending == nil {
		return errors.New("auth service: every store is required")
	}
	return nil
}

// Config holds issuance parameters. A zero SessionTTL selects
// models.DefaultSessionTTL.
type Config struct {
	Issuer            string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	IDTokenTTL        time.Duration
	SessionTTL        time.Duration
	RequireClientAuth bool
}

// Service orchestrates the authorization and token endpoints.
type Service struct {
	users          UserStore
	apps           AppStore
	sessions       SessionStore
	auths          AuthStore
	consents       ConsentStore
	codes          CodeStore
	authorizations AuthorizationStore
	tokens         TokenStore
	pending        PendingStore

	tx     Transactor
	signer TokenSigner
	cfg    Config

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	device         *device.Service
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithDeviceService enables session device-drift detection.
func WithDeviceService(d *device.Service) Option {
	return func(s *Service) {
		s.device = d
	}
}

// New constructs a Service.
func New(stores Stores, tx Transactor, signer TokenSigner, cfg Config, opts ...Option) (*Service, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}
	if tx == nil || signer == nil {
		return nil, errors.New("auth service: transactor and signer are required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("auth service: issuer is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 || cfg.IDTokenTTL <= 0 {
		return nil, errors.New("auth service: token lifetimes must be positive")
	}
	if cfg.SessionTTL < 0 {
		return nil, errors.New("auth service: session lifetime must not be negative")
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = models.DefaultSessionTTL
	}

	s := &Service{
		users:          stores.Users,
		apps:           stores.Apps,
		sessions:       stores.Sessions,
		auths:          stores.Auths,
		consents:       stores.Consents,
		codes:          stores.Codes,
		authorizations: stores.Authorizations,
		tokens:         stores.Tokens,
		pending:        stores.Pending,
		tx:             tx,
		signer:         signer,
		cfg:            cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s, nil
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

// logAudit writes an audit log line and forwards the event to the publisher.
// Recognised attribute keys: user_id, client_id, decision, reason.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)

	if s.auditPublisher == nil {
		return
	}
	fields := attrs.Index(attributes)
	userID := fields.Get("user_id")
	ua := requestcontext.UserAgent(ctx)
	deviceLabel := ""
	if ua != "" {
		deviceLabel = device.ParseUserAgent(ua)
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   userID,
		ClientID:  fields.Get("client_id"),
		Action:    string(event),
		Decision:  fields.Get("decision"),
		Reason:    fields.Get("reason"),
		Device:    deviceLabel,
		IP:        requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// codePrefix is the only part of a code token that may be logged.
func codePrefix(token string) string {
	if len(token) <= 6 {
		return token
	}
	return token[:6]
}
