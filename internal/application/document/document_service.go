package document

import (
	"context"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NumberIssuer reserves document numbers
type NumberIssuer interface {
	IssueNumber(ctx context.Context, definitionID uuid.UUID) (string, error)
}

// DocumentService handles the document lifecycle and the transaction registry it feeds
type DocumentService struct {
	definitions    document.DefinitionRepository
	headers        document.HeaderRepository
	registry       document.RegistryRepository
	numbers        NumberIssuer
	uow            shared.UnitOfWork
	metrics        *telemetry.LedgerMetrics
	eventPublisher shared.EventPublisher
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	definitions document.DefinitionRepository,
	headers document.HeaderRepository,
	registry document.RegistryRepository,
	numbers NumberIssuer,
	uow shared.UnitOfWork,
) *DocumentService {
	return &DocumentService{
		definitions: definitions,
		headers:     headers,
		registry:    registry,
		numbers:     numbers,
		uow:         uow,
	}
}

// SetLedgerMetrics sets the metrics recorder
func (s *DocumentService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetEventPublisher sets the event publisher
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create issues a number and stores a draft document with its initial lines.
// The number and the document commit together, so a failed create leaves no gap.
func (s *DocumentService) Create(ctx context.Context, createdBy uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create",
		telemetry.SpanAttrDefinitionID, req.DefinitionID.String(),
	)
	defer span.End()

	var header *document.Header
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		number, err := s.numbers.IssueNumber(ctx, req.DefinitionID)
		if err != nil {
			return err
		}

		h, err := document.NewHeader(req.DefinitionID, number, req.WarehouseID, req.ThirdPartyID, createdBy)
		if err != nil {
			return err
		}
		for _, line := range req.Lines {
			if _, err := h.AddLine(line.toInput()); err != nil {
				return err
			}
		}

		if err := s.headers.Create(ctx, h); err != nil {
			return err
		}
		header = h
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, header)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, header.ID.String(),
		telemetry.SpanAttrDocumentNumber, header.DocumentNumber,
	)
	logger.L(ctx).Info("document created",
		zap.String("document_id", header.ID.String()),
		zap.String("document_number", header.DocumentNumber),
		zap.Int("lines", header.LineCount()),
	)

	response := ToDocumentResponse(header)
	return &response, nil
}

// GetByID retrieves a document with its lines
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	h, err := s.headers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(h)
	return &response, nil
}

// GetByNumber retrieves a document by its number
func (s *DocumentService) GetByNumber(ctx context.Context, number string) (*DocumentResponse, error) {
	h, err := s.headers.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(h)
	return &response, nil
}

// List retrieves documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, filter DocumentListFilter) ([]DocumentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		From:     filter.From,
		To:       filter.To,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		status := document.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown document status")
		}
		domainFilter.Filters["status"] = status.String()
	}
	if filter.DefinitionID != nil {
		domainFilter.Filters["definition_id"] = *filter.DefinitionID
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ThirdPartyID != nil {
		domainFilter.Filters["third_party_id"] = *filter.ThirdPartyID
	}

	headers, total, err := s.headers.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DocumentResponse, len(headers))
	for i := range headers {
		responses[i] = toDocumentListItem(&headers[i])
	}
	return responses, total, nil
}

// AddLine appends a line to a draft document
func (s *DocumentService) AddLine(ctx context.Context, id uuid.UUID, req LineRequest) (*DocumentResponse, error) {
	h, err := s.headers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := h.AddLine(req.toInput()); err != nil {
		return nil, err
	}
	if err := s.headers.SaveWithLock(ctx, h); err != nil {
		return nil, err
	}
	response := ToDocumentResponse(h)
	return &response, nil
}

// Activate moves a draft document to ACTIVE and writes its ledger rows.
// The status change and the rows commit in one transaction; a concurrent
// activation loses on the version check and writes nothing.
func (s *DocumentService) Activate(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "activate",
		telemetry.SpanAttrDocumentID, id.String(),
	)
	defer span.End()
	start := time.Now()

	var (
		header *document.Header
		module document.Module
		rows   int
	)
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		h, err := s.headers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		def, err := s.definitions.FindByID(ctx, h.DefinitionID)
		if err != nil {
			return err
		}

		if err := h.Activate(); err != nil {
			return err
		}
		if err := s.headers.SaveWithLock(ctx, h); err != nil {
			return err
		}

		entries := document.BuildRegistryEntries(h, def.Module)
		if err := s.registry.Append(ctx, entries); err != nil {
			return err
		}

		header, module, rows = h, def.Module, len(entries)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, header)
	txType := document.TransactionTypeFor(module)
	if tenantID, err := tenancy.Require(ctx); err == nil {
		s.metrics.RecordDocumentActivated(ctx, tenantID, module.String(), txType.String(), rows, time.Since(start))
	}
	logger.L(ctx).Info("document activated",
		zap.String("document_id", header.ID.String()),
		zap.String("document_number", header.DocumentNumber),
		zap.String("transaction_type", txType.String()),
		zap.Int("registry_rows", rows),
	)

	response := ToDocumentResponse(header)
	return &response, nil
}

// Cancel cancels a draft document. Cancelling a cancelled document returns it unchanged.
func (s *DocumentService) Cancel(ctx context.Context, id uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	h, err := s.headers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Status == document.StatusCancelled {
		response := ToDocumentResponse(h)
		return &response, nil
	}

	if err := h.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.headers.SaveWithLock(ctx, h); err != nil {
		return nil, err
	}
	s.publish(ctx, h)

	logger.L(ctx).Info("document cancelled",
		zap.String("document_id", h.ID.String()),
		zap.String("document_number", h.DocumentNumber),
		zap.String("reason", h.CancelReason),
	)

	response := ToDocumentResponse(h)
	return &response, nil
}

// RebuildRegistry replaces the ledger rows of an ACTIVE document with rows
// derived again from its lines.
func (s *DocumentService) RebuildRegistry(ctx context.Context, id uuid.UUID) (*RebuildRegistryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "rebuild_registry",
		telemetry.SpanAttrDocumentID, id.String(),
	)
	defer span.End()

	result := &RebuildRegistryResponse{HeaderID: id}
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		h, err := s.headers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if h.Status != document.StatusActive {
			return shared.NewInvalidStateError("Only active documents have registry rows")
		}
		def, err := s.definitions.FindByID(ctx, h.DefinitionID)
		if err != nil {
			return err
		}

		removed, err := s.registry.DeleteByHeader(ctx, h.ID)
		if err != nil {
			return err
		}
		entries := document.BuildRegistryEntries(h, def.Module)
		if err := s.registry.Append(ctx, entries); err != nil {
			return err
		}

		result.Removed = removed
		result.Written = len(entries)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("registry rebuilt",
		zap.String("document_id", id.String()),
		zap.Int64("removed", result.Removed),
		zap.Int("written", result.Written),
	)
	return result, nil
}

// ListRegistry queries ledger rows
func (s *DocumentService) ListRegistry(ctx context.Context, filter RegistryListFilter) ([]RegistryEntryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	rf, err := filter.toDomain()
	if err != nil {
		return nil, 0, err
	}
	page := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}

	entries, total, err := s.registry.Find(ctx, rf, page)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RegistryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToRegistryEntryResponse(e)
	}
	return responses, total, nil
}

// SummarizeRegistry totals ledger rows per transaction type
func (s *DocumentService) SummarizeRegistry(ctx context.Context, filter RegistryListFilter) ([]RegistryTotalResponse, error) {
	rf, err := filter.toDomain()
	if err != nil {
		return nil, err
	}

	totals, err := s.registry.Summarize(ctx, rf)
	if err != nil {
		return nil, err
	}

	responses := make([]RegistryTotalResponse, len(totals))
	for i, t := range totals {
		responses[i] = RegistryTotalResponse{
			Type:     t.Type.String(),
			Entries:  t.Entries,
			Quantity: t.Quantity,
			Value:    t.Value,
		}
	}
	return responses, nil
}

func (f RegistryListFilter) toDomain() (document.RegistryFilter, error) {
	rf := document.RegistryFilter{
		HeaderID:    f.HeaderID,
		WarehouseID: f.WarehouseID,
		From:        f.From,
		To:          f.To,
	}
	if f.Type != "" {
		rf.Type = document.TransactionType(f.Type)
		if !rf.Type.IsValid() {
			return rf, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Unknown transaction type")
		}
	}
	return rf, nil
}

func (s *DocumentService) publish(ctx context.Context, h *document.Header) {
	events := h.GetDomainEvents()
	h.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish document events", zap.Error(err))
	}
}
