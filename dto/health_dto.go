package dto

import (
	"time"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type HealthReportResponse struct {
	Healthy   bool                  `json:"healthy"`
	CheckedAt time.Time             `json:"checked_at"`
	Checks    []HealthCheckResponse `json:"checks"`
}

type HealthCheckResponse struct {
	Component string `json:"component"`
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func AdaptHealthReport(report models.HealthReport) HealthReportResponse {
	return HealthReportResponse{
		Healthy:   report.Healthy(),
		CheckedAt: report.CheckedAt,
		Checks: utils.Map(report.Checks, func(check models.HealthCheck) HealthCheckResponse {
			return HealthCheckResponse{
				Component: check.Component,
				Healthy:   check.Healthy,
				LatencyMs: check.Latency.Milliseconds(),
				Error:     check.Error,
			}
		}),
	}
}
