package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records counters for the order and coupon flows.
type StorefrontMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutOutcomes *prometheus.CounterVec
	couponOutcomes   *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkoutOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout executions by outcome.",
	}, []string{"outcome"})
	couponOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_apply_total",
		Help: "Coupon applications by outcome.",
	}, []string{"outcome"})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(checkoutDuration, checkoutOutcomes, couponOutcomes, orderTransitions)
	return &StorefrontMetrics{
		checkoutDuration: checkoutDuration,
		checkoutOutcomes: checkoutOutcomes,
		couponOutcomes:   couponOutcomes,
		orderTransitions: orderTransitions,
	}
}

// ObserveCheckout records one checkout execution with its duration.
func (m *StorefrontMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutOutcomes == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.checkoutOutcomes.WithLabelValues(label).Inc()
	m.checkoutDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncCouponApply increments the coupon application counter for the outcome.
func (m *StorefrontMetrics) IncCouponApply(outcome string) {
	if m == nil || m.couponOutcomes == nil {
		return
	}
	m.couponOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrderTransition increments the transition counter for the target status.
func (m *StorefrontMetrics) IncOrderTransition(status string) {
	if m == nil || m.orderTransitions == nil {
		return
	}
	m.orderTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
