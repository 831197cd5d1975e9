package models

import "time"

// Components reported by /health. Redis only shows up when it backs the token replay guard.
const (
	HealthComponentDatabase = "database"
	HealthComponentRedis    = "redis"
)

type HealthCheck struct {
	Component string
	Healthy   bool
	Latency   time.Duration
	Error     string
}

type HealthReport struct {
	CheckedAt time.Time
	Checks    []HealthCheck
}

func (r HealthReport) Healthy() bool {
	for _, check := range r.Checks {
		if !check.Healthy {
			return false
		}
	}
	return true
}
