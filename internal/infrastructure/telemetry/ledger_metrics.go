package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor gets no meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerMetrics counts business events of the ledger. A nil *LedgerMetrics
// records nothing, so services can run without metrics.
type LedgerMetrics struct {
	numbersIssued      *Counter
	numberConflicts    *Counter
	documentsActivated *Counter
	registryRows       *Counter
	sessionsClosed     *Counter
	varianceAlerts     *Counter
	activationDuration *Histogram
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	counters := []struct {
		dst         **Counter
		name        string
		description string
		unit        string
	}{
		{&m.numbersIssued, "ledger_document_numbers_issued_total", "Document numbers issued", "{numbers}"},
		{&m.numberConflicts, "ledger_document_number_conflicts_total", "Numbering attempts lost to a concurrent writer", "{conflicts}"},
		{&m.documentsActivated, "ledger_documents_activated_total", "Documents activated", "{documents}"},
		{&m.registryRows, "ledger_registry_rows_written_total", "Transaction registry rows written", "{rows}"},
		{&m.sessionsClosed, "ledger_cash_sessions_closed_total", "Cash sessions closed", "{sessions}"},
		{&m.varianceAlerts, "ledger_cash_variance_alerts_total", "Closed sessions with a WARNING or CRITICAL variance", "{alerts}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	m.activationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_document_activation_duration_seconds",
		Description: "Time to activate a document and write its registry rows",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordNumberIssued counts one issued document number.
func (m *LedgerMetrics) RecordNumberIssued(ctx context.Context, tenantID, definitionID uuid.UUID) {
	if m == nil {
		return
	}
	m.numbersIssued.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrDefinitionID.String(definitionID.String()))
}

// RecordNumberConflict counts one lost numbering race.
func (m *LedgerMetrics) RecordNumberConflict(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.numberConflicts.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordDocumentActivated counts an activation and the registry rows it wrote.
func (m *LedgerMetrics) RecordDocumentActivated(ctx context.Context, tenantID uuid.UUID, module, txType string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	tenant := AttrTenantID.String(tenantID.String())
	m.documentsActivated.Inc(ctx, tenant, AttrModule.String(module))
	m.registryRows.Add(ctx, int64(rows), tenant, AttrTransactionType.String(txType))
	m.activationDuration.RecordDuration(ctx, elapsed, AttrModule.String(module))
}

// RecordSessionClosed counts a confirmed close.
func (m *LedgerMetrics) RecordSessionClosed(ctx context.Context, tenantID uuid.UUID, level string) {
	if m == nil {
		return
	}
	m.sessionsClosed.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrVarianceLevel.String(level))
}

// RecordVarianceAlert counts a close whose variance needs attention.
func (m *LedgerMetrics) RecordVarianceAlert(ctx context.Context, tenantID uuid.UUID, level string) {
	if m == nil {
		return
	}
	m.varianceAlerts.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrVarianceLevel.String(level))
}
