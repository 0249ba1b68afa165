package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Checkout outcomes used as the "outcome" label.
const (
	OutcomePlaced            = "placed"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

// CheckoutMetrics tracks checkout attempts and placed order value.
type CheckoutMetrics struct {
	attempts   *prometheus.CounterVec
	orderTotal prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_order_total",
		Help:    "Total value of placed orders.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	reg.MustRegister(attempts, orderTotal)
	return &CheckoutMetrics{
		attempts:   attempts,
		orderTotal: orderTotal,
	}
}

// IncOutcome counts one checkout attempt.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveOrder records the total of a placed order.
func (c *CheckoutMetrics) ObserveOrder(total decimal.Decimal) {
	if c == nil || c.orderTotal == nil {
		return
	}
	c.orderTotal.Observe(total.InexactFloat64())
}
