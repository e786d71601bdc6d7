package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics содержит метрики операций сервиса продаж.
type SalesMetrics struct {
	// Счётчики операций
	salesCreated   prometheus.Counter
	salesUpdated   prometheus.Counter
	salesDeleted   prometheus.Counter
	itemsCancelled prometheus.Counter

	// Счётчик опубликованных доменных событий по типам
	eventsPublished *prometheus.CounterVec

	// Гистограмма времени выполнения операций
	operationDuration *prometheus.HistogramVec
}

// NewSalesMetrics создаёт метрики в default-регистраторе Prometheus.
func NewSalesMetrics() *SalesMetrics {
	return newSalesMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSalesMetricsWithRegisterer(registerer prometheus.Registerer) *SalesMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SalesMetrics{
		salesCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Total number of sales created from carts",
		}),
		salesUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_updated_total",
			Help: "Total number of sales updated through reconciliation",
		}),
		salesDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_deleted_total",
			Help: "Total number of sales soft-deleted",
		}),
		itemsCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_items_cancelled_total",
			Help: "Total number of individual sale items cancelled",
		}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_events_published_total",
			Help: "Total number of domain events handed to the publisher",
		}, []string{"event_type"}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "sales_operation_duration_seconds",
			Help:    "Duration of sale service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordSaleCreated увеличивает счётчик созданных продаж.
func (m *SalesMetrics) RecordSaleCreated() {
	m.salesCreated.Inc()
}

// RecordSaleUpdated увеличивает счётчик обновлённых продаж.
func (m *SalesMetrics) RecordSaleUpdated() {
	m.salesUpdated.Inc()
}

// RecordSaleDeleted увеличивает счётчик удалённых продаж.
func (m *SalesMetrics) RecordSaleDeleted() {
	m.salesDeleted.Inc()
}

// RecordItemCancelled увеличивает счётчик отменённых позиций.
func (m *SalesMetrics) RecordItemCancelled() {
	m.itemsCancelled.Inc()
}

// RecordEventPublished увеличивает счётчик событий данного типа.
func (m *SalesMetrics) RecordEventPublished(eventType string) {
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

// RecordOperationDuration записывает время выполнения операции.
func (m *SalesMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
