package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cloudx-io/openescrow/contractapi"
	"github.com/cloudx-io/openescrow/core"
)

var callsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "escrow_calls_total",
		Help: "Requests handled, by request type and result.",
	},
	[]string{"type", "result"},
)

var auctionsRegistered = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "escrow_auctions_registered",
		Help: "Number of auctions in the registry.",
	},
)

var knownRequestTypes = map[string]bool{
	contractapi.TypeCreateAuction:   true,
	contractapi.TypeBid:             true,
	contractapi.TypeFinalize:        true,
	contractapi.TypeViewAuctions:    true,
	contractapi.TypeGetAuction:      true,
	contractapi.TypeOnReceivingCIS2: true,
	contractapi.TypePing:            true,
	contractapi.TypeFund:            true,
	contractapi.TypeMint:            true,
	contractapi.TypeSetTime:         true,
}

func observeCall(requestType string, err error) {
	if !knownRequestTypes[requestType] {
		requestType = "unknown"
	}
	result := "ok"
	if err != nil {
		result = "aborted"
		if kind, ok := core.KindOf(err); ok {
			result = kind.Error()
		}
	}
	callsTotal.With(prometheus.Labels{"type": requestType, "result": result}).Inc()
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
