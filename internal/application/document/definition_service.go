package document

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries   = 5
	defaultRetryBackoff = 20 * time.Millisecond
	defaultLockTTL      = 5 * time.Second
)

// Locker serializes number issuance across service instances.
// TryLock never blocks; a lock held elsewhere reports acquired=false.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, key, token string) error
}

// NumberingOptions tunes number issuance
type NumberingOptions struct {
	// MaxRetries is how many times a lost race is retried before the conflict is returned
	MaxRetries   int
	RetryBackoff time.Duration
	LockTTL      time.Duration
}

func (o NumberingOptions) withDefaults() NumberingOptions {
	if o.MaxRetries < 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	if o.LockTTL <= 0 {
		o.LockTTL = defaultLockTTL
	}
	return o
}

// DefinitionService handles document definition operations and number issuance
type DefinitionService struct {
	repo           document.DefinitionRepository
	opts           NumberingOptions
	locker         Locker
	metrics        *telemetry.LedgerMetrics
	eventPublisher shared.EventPublisher
}

// NewDefinitionService creates a new DefinitionService
func NewDefinitionService(repo document.DefinitionRepository, opts NumberingOptions) *DefinitionService {
	return &DefinitionService{
		repo: repo,
		opts: opts.withDefaults(),
	}
}

// SetLocker installs a distributed lock taken around each issuance attempt
func (s *DefinitionService) SetLocker(locker Locker) {
	s.locker = locker
}

// SetLedgerMetrics sets the metrics recorder
func (s *DefinitionService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetEventPublisher sets the event publisher
func (s *DefinitionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new document definition
func (s *DefinitionService) Create(ctx context.Context, req CreateDefinitionRequest) (*DefinitionResponse, error) {
	module, err := document.ParseModule(req.Module)
	if err != nil {
		return nil, err
	}

	def, err := document.NewDefinition(req.Name, req.Code, req.Prefix, module)
	if err != nil {
		return nil, err
	}
	if len(req.Configuration) > 0 {
		if err := def.UpdateConfiguration(req.Configuration); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, def); err != nil {
		// Code and prefix are each unique per tenant
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, document.ErrDuplicateDefinition
		}
		return nil, err
	}
	s.publish(ctx, def)

	logger.L(ctx).Info("document definition created",
		zap.String("definition_id", def.ID.String()),
		zap.String("code", def.Code),
		zap.String("module", def.Module.String()),
	)

	response := ToDefinitionResponse(def)
	return &response, nil
}

// GetByID retrieves a definition by ID
func (s *DefinitionService) GetByID(ctx context.Context, id uuid.UUID) (*DefinitionResponse, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDefinitionResponse(def)
	return &response, nil
}

// List retrieves definitions with filtering and pagination
func (s *DefinitionService) List(ctx context.Context, filter DefinitionListFilter) ([]DefinitionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if filter.Module != "" {
		module, err := document.ParseModule(filter.Module)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["module"] = module.String()
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}

	defs, total, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DefinitionResponse, len(defs))
	for i := range defs {
		responses[i] = ToDefinitionResponse(&defs[i])
	}
	return responses, total, nil
}

// UpdateConfiguration replaces the configuration of a definition
func (s *DefinitionService) UpdateConfiguration(ctx context.Context, id uuid.UUID, req UpdateConfigurationRequest) (*DefinitionResponse, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := def.UpdateConfiguration(req.Configuration); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, def); err != nil {
		return nil, err
	}
	response := ToDefinitionResponse(def)
	return &response, nil
}

// Deactivate stops a definition from issuing numbers. Issued numbers stay valid.
func (s *DefinitionService) Deactivate(ctx context.Context, id uuid.UUID) (*DefinitionResponse, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def.Deactivate()
	if err := s.repo.SaveWithLock(ctx, def); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("document definition deactivated",
		zap.String("definition_id", def.ID.String()),
		zap.String("code", def.Code),
	)

	response := ToDefinitionResponse(def)
	return &response, nil
}

// IssueNumber reserves the next number of a definition.
//
// Each attempt goes through DefinitionRepository.NextNumber, which either
// persists the increment or reports shared.ErrConcurrencyConflict. Only that
// conflict is retried, up to MaxRetries times with linear backoff. When ctx
// carries a transaction the increment commits or rolls back with it.
func (s *DefinitionService) IssueNumber(ctx context.Context, definitionID uuid.UUID) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document_definition", "issue_number",
		telemetry.SpanAttrDefinitionID, definitionID.String(),
	)
	defer span.End()

	tenantID, err := tenancy.Require(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := s.backoff(ctx, attempt); err != nil {
				telemetry.RecordError(span, err)
				return "", err
			}
		}

		number, err := s.tryIssue(ctx, definitionID)
		if err == nil {
			telemetry.SetAttributes(span,
				telemetry.SpanAttrDocumentNumber, number,
				telemetry.SpanAttrAttempt, attempt+1,
			)
			s.metrics.RecordNumberIssued(ctx, tenantID, definitionID)
			return number, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			telemetry.RecordError(span, err)
			return "", err
		}

		lastErr = err
		s.metrics.RecordNumberConflict(ctx, tenantID)
		telemetry.AddEvent(span, "number_conflict", telemetry.SpanAttrAttempt, attempt+1)
		logger.L(ctx).Debug("document number conflict, retrying",
			zap.String("definition_id", definitionID.String()),
			zap.Int("attempt", attempt+1),
		)
	}

	logger.L(ctx).Warn("document number retries exhausted",
		zap.String("definition_id", definitionID.String()),
		zap.Int("max_retries", s.opts.MaxRetries),
	)
	telemetry.RecordError(span, lastErr)
	return "", lastErr
}

func (s *DefinitionService) tryIssue(ctx context.Context, definitionID uuid.UUID) (string, error) {
	if s.locker == nil {
		return s.repo.NextNumber(ctx, definitionID)
	}

	key := numberingLockKey(ctx, definitionID)
	token, acquired, err := s.locker.TryLock(ctx, key, s.opts.LockTTL)
	if err != nil {
		return "", err
	}
	if !acquired {
		return "", shared.ErrConcurrencyConflict
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			logger.L(ctx).Warn("failed to release numbering lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return s.repo.NextNumber(ctx, definitionID)
}

func (s *DefinitionService) backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt) * s.opts.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *DefinitionService) publish(ctx context.Context, def *document.Definition) {
	events := def.GetDomainEvents()
	def.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish definition events", zap.Error(err))
	}
}

// numberingLockKey is unique per tenant namespace and definition
func numberingLockKey(ctx context.Context, definitionID uuid.UUID) string {
	ns := tenancy.PublicNamespace
	if scope, ok := tenancy.FromContext(ctx); ok {
		ns = scope.Namespace()
	}
	return "numbering:" + ns + ":" + definitionID.String()
}
