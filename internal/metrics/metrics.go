package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casino_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RoundsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_rounds_started_total",
			Help: "Total number of game rounds started",
		},
		[]string{"game"},
	)

	RoundsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_rounds_settled_total",
			Help: "Total number of game rounds settled",
		},
		[]string{"game", "outcome"},
	)

	CoinsWageredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_coins_wagered_total",
			Help: "Coins staked on game rounds",
		},
		[]string{"game"},
	)

	CoinsPaidTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_coins_paid_total",
			Help: "Coins paid back to players by settled rounds",
		},
		[]string{"game"},
	)

	WalletOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_wallet_operations_total",
			Help: "Wallet operations by type and result",
		},
		[]string{"operation", "result"},
	)

	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casino_websocket_connections",
			Help: "Currently open websocket connections",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRoundStarted(game string, bet int64) {
	RoundsStartedTotal.WithLabelValues(game).Inc()
	CoinsWageredTotal.WithLabelValues(game).Add(float64(bet))
}

func RecordRoundSettled(game, outcome string, payout int64) {
	RoundsSettledTotal.WithLabelValues(game, outcome).Inc()
	CoinsPaidTotal.WithLabelValues(game).Add(float64(payout))
}

// RecordWalletOperation counts an operation; err decides the result label.
func RecordWalletOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	WalletOperationsTotal.WithLabelValues(operation, result).Inc()
}
