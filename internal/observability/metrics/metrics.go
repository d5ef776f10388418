package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the availability and booking flows.
type BookingMetrics struct {
	availabilityTotal *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	emailsTotal       *prometheus.CounterVec
	mirrorTotal       *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_booking",
			Subsystem: "availability",
			Name:      "queries_total",
			Help:      "Availability queries by outcome (calendar, fail_open)",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_booking",
			Subsystem: "appointments",
			Name:      "submissions_total",
			Help:      "Appointment submissions by status",
		}, []string{"status"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_booking",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Outbound emails by kind and status",
		}, []string{"kind", "status"}),
		mirrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_booking",
			Subsystem: "calendar",
			Name:      "mirror_total",
			Help:      "Calendar event mirroring attempts by status",
		}, []string{"status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic_booking",
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Latency of calls to the calendar and mail collaborators",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.bookingsTotal, m.emailsTotal, m.mirrorTotal, m.upstreamLatency)
	return m
}

func (m *BookingMetrics) ObserveAvailability(outcome string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveEmail(kind string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.emailsTotal.WithLabelValues(kind, status).Inc()
}

func (m *BookingMetrics) ObserveMirror(status string) {
	if m == nil {
		return
	}
	m.mirrorTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveUpstreamLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(operation).Observe(seconds)
}
