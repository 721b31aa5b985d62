package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics коллектор Prometheus-метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках вызовы игнорируются
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbOpenConns     *prometheus.GaugeVec
	dbInUseConns    *prometheus.GaugeVec
	dbIdleConns     *prometheus.GaugeVec

	bookingsCreated   *prometheus.CounterVec
	bookingConflicts  *prometheus.CounterVec
	bookingsCancelled *prometheus.CounterVec
	slotsCreated      *prometheus.CounterVec
}

// New создает коллектор и регистрирует его в DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает коллектор и регистрирует его в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),
		dbOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Open connections in the pool",
		}, []string{"service"}),
		dbInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Connections currently in use",
		}, []string{"service"}),
		dbIdleConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Idle connections in the pool",
		}, []string{"service"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "demo_bookings_created_total",
			Help: "Demo bookings committed",
		}, []string{"service", "meeting_type", "slots"}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "demo_booking_conflicts_total",
			Help: "Demo booking attempts rejected at commit",
		}, []string{"service", "reason"}),
		bookingsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "demo_bookings_cancelled_total",
			Help: "Demo bookings cancelled",
		}, []string{"service"}),
		slotsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "demo_slots_created_total",
			Help: "Availability slots created by operators",
		}, []string{"service", "mode"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbOpenConns,
		m.dbInUseConns,
		m.dbIdleConns,
		m.bookingsCreated,
		m.bookingConflicts,
		m.bookingsCancelled,
		m.slotsCreated,
	)

	return m
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполнение запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(m.serviceName, operation).Inc()
	}
}

// SetDBPoolStats обновляет показатели пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbOpenConns.WithLabelValues(m.serviceName).Set(float64(open))
	m.dbInUseConns.WithLabelValues(m.serviceName).Set(float64(inUse))
	m.dbIdleConns.WithLabelValues(m.serviceName).Set(float64(idle))
}

// IncBookingCreated учитывает созданное бронирование и количество занятых слотов
func (m *Metrics) IncBookingCreated(meetingType string, coveredSlots int) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(m.serviceName, meetingType, strconv.Itoa(coveredSlots)).Inc()
}

// IncBookingConflict учитывает отклоненную при коммите попытку бронирования
func (m *Metrics) IncBookingConflict(reason string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(m.serviceName, reason).Inc()
}

// IncBookingCancelled учитывает отмену бронирования
func (m *Metrics) IncBookingCancelled() {
	if m == nil {
		return
	}
	m.bookingsCancelled.WithLabelValues(m.serviceName).Inc()
}

// AddSlotsCreated учитывает созданные слоты (single, bulk, follow_up)
func (m *Metrics) AddSlotsCreated(mode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.slotsCreated.WithLabelValues(m.serviceName, mode).Add(float64(count))
}
