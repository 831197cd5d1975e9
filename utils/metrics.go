package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricTokenRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicebox_token_redemptions_total",
		Help: "Number of redeemed tokens, by purpose and outcome",
	}, []string{"purpose", "outcome"})

	MetricNotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicebox_notifications_total",
		Help: "Number of notification emails handed to the mail provider, by purpose and outcome",
	}, []string{"purpose", "outcome"})

	MetricWeeklyReportLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoicebox_weekly_report_duration_seconds",
		Help:    "Time spent building and sending the weekly report of a workspace",
		Buckets: prometheus.DefBuckets,
	})

	MetricInboundMails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicebox_inbound_mails_total",
		Help: "Number of inbound mails processed, by outcome",
	}, []string{"outcome"})
)
