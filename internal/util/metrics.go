package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_completed_total",
		Help: "Total number of completed checkouts",
	})

	SalesRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_revenue_total",
		Help: "Revenue of completed checkouts in minor currency units",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkout_failed_total",
		Help: "Total number of rejected checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_checkout_latency_seconds",
		Help:    "Latency of checkout including persistence",
		Buckets: prometheus.DefBuckets,
	})

	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_cart_items_added_total",
		Help: "Total number of items added to the cart",
	})

	CartAddRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_cart_add_rejected_total",
		Help: "Total number of ignored add-to-cart actions",
	}, []string{"reason"})

	RestockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_restock_total",
		Help: "Total number of applied restocks",
	})

	RestockIgnoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_restock_ignored_total",
		Help: "Total number of restocks ignored for invalid amounts",
	})

	HistoryClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_history_cleared_total",
		Help: "Total number of sales history wipes",
	})

	PersistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_persistence_failures_total",
		Help: "Total number of failed state write-backs",
	}, []string{"entry"})

	ReceiptsPrintedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_receipts_printed_total",
		Help: "Total number of receipts sent to a printer",
	})

	ReceiptPrintFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_receipt_print_failed_total",
		Help: "Total number of receipts that failed to print",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
