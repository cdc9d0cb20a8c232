package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database/Repository Metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitmax_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "gitmax_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBRowsAffected tracks rows affected by write operations
	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "gitmax_db_rows_affected",
			Help:                            "Number of rows affected by database write operations",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitmax_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// HTTP Handler Metrics
var (
	// HTTPRequests tracks HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitmax_http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks HTTP request duration
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "gitmax_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// HTTPActiveRequests tracks active HTTP requests
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gitmax_http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)
)

// GitHub API Metrics
var (
	// GitHubAPICalls tracks outbound GitHub API calls
	GitHubAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitmax_github_api_calls_total",
			Help: "Total GitHub API calls by endpoint and status code",
		},
		[]string{"endpoint", "status_code"},
	)

	// GitHubAPIDuration tracks GitHub API call latency
	GitHubAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "gitmax_github_api_duration_ms",
			Help:                            "GitHub API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"endpoint"},
	)
)

// Auth Metrics
var (
	// AuthLogins tracks completed OAuth logins by outcome
	AuthLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitmax_auth_logins_total",
			Help: "Total OAuth login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// AuthRefreshes tracks token refresh attempts by outcome
	AuthRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitmax_auth_refreshes_total",
			Help: "Total token refresh attempts by outcome",
		},
		[]string{"outcome"},
	)
)
