// Package metrics contadores Prometheus del ledger de inventario.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ appinv.Metrics = (*LedgerMetrics)(nil)

// LedgerMetrics implementa inventory.Metrics.
type LedgerMetrics struct {
	entries         *prometheus.CounterVec
	operations      *prometheus.CounterVec
	reconciliations prometheus.Counter
	invalidRecords  prometheus.Gauge
	checkedRecords  prometheus.Gauge
}

// NewLedgerMetrics registra los colectores en reg (prometheus.DefaultRegisterer en main).
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	f := promauto.With(reg)
	return &LedgerMetrics{
		entries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stock_ledger",
			Name:      "history_entries_total",
			Help:      "Entradas de historia confirmadas por tipo de cambio",
		}, []string{"change_type"}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stock_ledger",
			Name:      "operations_total",
			Help:      "Operaciones del coordinador por resultado",
		}, []string{"operation", "result"}),
		reconciliations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stock_ledger",
			Name:      "reconciliations_total",
			Help:      "Ejecuciones de validación de integridad",
		}),
		invalidRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "stock_ledger",
			Name:      "reconciliation_invalid_records",
			Help:      "Registros con discrepancia en la última conciliación",
		}),
		checkedRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "stock_ledger",
			Name:      "reconciliation_checked_records",
			Help:      "Registros revisados en la última conciliación",
		}),
	}
}

func (m *LedgerMetrics) EntryCommitted(changeType entity.ChangeType) {
	m.entries.WithLabelValues(string(changeType)).Inc()
}

// OperationFinished etiqueta el resultado con el código de dominio (ok si no hubo error).
func (m *LedgerMetrics) OperationFinished(operation string, err error) {
	m.operations.WithLabelValues(operation, result(err)).Inc()
}

func (m *LedgerMetrics) ReconciliationFinished(checked, invalid int) {
	m.reconciliations.Inc()
	m.checkedRecords.Set(float64(checked))
	m.invalidRecords.Set(float64(invalid))
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.CodeOf(err)
}
