package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"impactledger/internal/platform/metrics"
	"impactledger/internal/registry/models"
	"impactledger/internal/registry/store"
	id "impactledger/pkg/domain"
	dErrors "impactledger/pkg/domain-errors"
	"impactledger/pkg/platform/audit"
	"impactledger/pkg/platform/sentinel"
	"impactledger/pkg/requestcontext"
)

// UnknownDelegatePolicy selects what GetTotalImpact returns for a delegate
// that was never registered.
type UnknownDelegatePolicy int

const (
	// UnknownDelegateNotFound fails the query with CodeNotFound.
	UnknownDelegateNotFound UnknownDelegatePolicy = iota
	// UnknownDelegateZero reports a total of zero.
	UnknownDelegateZero
)

const (
	opRegisterDelegate = "register_delegate"
	opIssueCredential  = "issue_credential"
	opTotalImpact      = "get_total_impact"
)

// CredentialCache is a read-through cache for immutable credentials.
type CredentialCache interface {
	FindCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	SaveCredential(ctx context.Context, credential *models.Credential) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the delegate registry and credential ledger. All mutations run
// inside one store transaction spanning both collections.
type Service struct {
	store         store.Store
	authorizer    Authorizer
	unknownPolicy UnknownDelegatePolicy
	cache         CredentialCache
	auditor       AuditPublisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

type Option func(s *Service)

func WithUnknownDelegatePolicy(p UnknownDelegatePolicy) Option {
	return func(s *Service) {
		s.unknownPolicy = p
	}
}

func WithCredentialCache(c CredentialCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(st store.Store, authorizer Authorizer, opts ...Option) *Service {
	s := &Service{
		store:      st,
		authorizer: authorizer,
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer("impactledger/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterDelegate stores a new delegate and returns its ID. Any caller may register.
func (s *Service) RegisterDelegate(ctx context.Context, caller id.AccountID, name, specialization string) (_ id.DelegateID, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.RegisterDelegate")
	defer func() { s.finish(ctx, span, opRegisterDelegate, time.Now(), err) }()

	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	delegate, err := models.NewDelegate(name, specialization, caller, requestcontext.Now(ctx))
	if err != nil {
		return 0, toValidation(err)
	}

	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		next, err := tx.NextDelegateID(ctx)
		if err != nil {
			return err
		}
		delegate.ID = next
		return tx.InsertDelegate(ctx, delegate)
	})
	if err != nil {
		return 0, s.translate(err, "failed to register delegate")
	}

	span.SetAttributes(attribute.String("delegate.id", delegate.ID.String()))
	s.logger.InfoContext(ctx, "delegate registered",
		"delegate_id", delegate.ID,
		"registered_by", caller,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementDelegatesRegistered()
	}
	s.emit(ctx, audit.Event{
		Action:     audit.ActionDelegateRegistered,
		Timestamp:  delegate.RegisteredAt,
		ActorID:    caller,
		DelegateID: delegate.ID,
	})
	return delegate.ID, nil
}

// IssueCredential records a credential for an existing delegate and adds its
// score to the delegate's running total. Only the administrator may issue.
// Checks run in order: authorization, input, delegate existence, overflow.
func (s *Service) IssueCredential(ctx context.Context, caller id.AccountID, delegateID id.DelegateID, title, description string, impactScore uint64) (_ id.CredentialID, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.IssueCredential", trace.WithAttributes(
		attribute.String("delegate.id", delegateID.String()),
	))
	defer func() { s.finish(ctx, span, opIssueCredential, time.Now(), err) }()

	if err := s.authorizer.CanIssue(ctx, caller); err != nil {
		s.logger.WarnContext(ctx, "credential issuance denied",
			"caller", caller,
			"delegate_id", delegateID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return 0, err
	}
	credential, err := models.NewCredential(delegateID, title, description, impactScore, caller, requestcontext.Now(ctx))
	if err != nil {
		return 0, toValidation(err)
	}

	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		delegate, err := tx.FindDelegate(ctx, delegateID)
		if err != nil {
			return err
		}
		if err := delegate.CanAddImpact(impactScore); err != nil {
			return err
		}
		next, err := tx.NextCredentialID(ctx)
		if err != nil {
			return err
		}
		credential.ID = next
		if err := tx.InsertCredential(ctx, credential); err != nil {
			return err
		}
		delegate.ApplyImpact(impactScore)
		return tx.UpdateTotalImpact(ctx, delegateID, delegate.TotalImpact)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "delegate not found")
		}
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return 0, toValidation(err)
		}
		return 0, s.translate(err, "failed to issue credential")
	}

	span.SetAttributes(attribute.String("credential.id", credential.ID.String()))
	s.logger.InfoContext(ctx, "credential issued",
		"credential_id", credential.ID,
		"delegate_id", delegateID,
		"impact_score", impactScore,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCredentialsIssued(impactScore)
	}
	if s.cache != nil {
		if err := s.cache.SaveCredential(ctx, credential); err != nil && !errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.WarnContext(ctx, "failed to cache credential", "credential_id", credential.ID, "error", err)
		}
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionCredentialIssued,
		Timestamp:    credential.IssuedAt,
		ActorID:      caller,
		DelegateID:   delegateID,
		CredentialID: credential.ID,
		ImpactScore:  impactScore,
	})
	return credential.ID, nil
}

// GetTotalImpact returns the delegate's running total of impact scores.
func (s *Service) GetTotalImpact(ctx context.Context, delegateID id.DelegateID) (_ uint64, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.GetTotalImpact", trace.WithAttributes(
		attribute.String("delegate.id", delegateID.String()),
	))
	defer func() { s.finish(ctx, span, opTotalImpact, time.Now(), err) }()

	delegate, err := s.store.FindDelegate(ctx, delegateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if s.unknownPolicy == UnknownDelegateZero {
				return 0, nil
			}
			return 0, dErrors.New(dErrors.CodeNotFound, "delegate not found")
		}
		return 0, s.translate(err, "failed to load delegate")
	}
	return delegate.TotalImpact, nil
}

// TotalImpacts returns totals for the given delegates; unknown IDs are omitted.
func (s *Service) TotalImpacts(ctx context.Context, delegateIDs []id.DelegateID) (map[id.DelegateID]uint64, error) {
	totals, err := s.store.TotalImpacts(ctx, delegateIDs)
	if err != nil {
		return nil, s.translate(err, "failed to load totals")
	}
	return totals, nil
}

func (s *Service) GetDelegate(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	delegate, err := s.store.FindDelegate(ctx, delegateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "delegate not found")
		}
		return nil, s.translate(err, "failed to load delegate")
	}
	return delegate, nil
}

func (s *Service) ListDelegates(ctx context.Context) ([]*models.Delegate, error) {
	delegates, err := s.store.ListDelegates(ctx)
	if err != nil {
		return nil, s.translate(err, "failed to list delegates")
	}
	return delegates, nil
}

// GetCredential reads through the credential cache when one is configured.
func (s *Service) GetCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	if s.cache != nil {
		cached, err := s.cache.FindCredential(ctx, credentialID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) && !errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.WarnContext(ctx, "credential cache lookup failed", "credential_id", credentialID, "error", err)
		}
	}

	credential, err := s.store.FindCredential(ctx, credentialID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, s.translate(err, "failed to load credential")
	}

	if s.cache != nil {
		if err := s.cache.SaveCredential(ctx, credential); err != nil && !errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.WarnContext(ctx, "failed to cache credential", "credential_id", credentialID, "error", err)
		}
	}
	return credential, nil
}

func (s *Service) ListCredentials(ctx context.Context, delegateID id.DelegateID) ([]*models.Credential, error) {
	credentials, err := s.store.ListCredentialsByDelegate(ctx, delegateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "delegate not found")
		}
		return nil, s.translate(err, "failed to list credentials")
	}
	return credentials, nil
}

// emit publishes an audit event. The ledger mutation has already committed,
// so failures are logged and counted but never returned.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"delegate_id", event.DelegateID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementAuditFailures()
		}
	}
}

// finish closes the span and records duration and rejection metrics.
func (s *Service) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	defer span.End()
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
	if err == nil {
		return
	}
	code := dErrors.CodeOf(err)
	span.SetStatus(codes.Error, string(code))
	if code == dErrors.CodeInternal {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "ledger operation failed", "operation", op, "error", err)
	}
	if s.metrics != nil {
		s.metrics.IncrementRejections(op, string(code))
	}
}

// translate converts store failures that are not domain outcomes.
func (s *Service) translate(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent ledger update, retry")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// toValidation converts invariant violations to validation errors for API responses.
func toValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}
