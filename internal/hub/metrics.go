package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_connections",
		Help: "Currently registered push connections",
	})
	broadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_broadcasts_total",
		Help: "Broadcast fan-outs by event type",
	}, []string{"type"})
	sendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_send_failures_total",
		Help: "Per-connection delivery failures during broadcast",
	})
)
