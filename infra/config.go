package infra

import (
	"fmt"
)

type PgConfig struct {
	ConnectionString    string
	Database            string
	DbConnectWithSocket bool
	Hostname            string
	Password            string
	Port                string
	User                string
	MaxPoolConnections  int
	SslMode             string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	connectionString := fmt.Sprintf("host=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.User, config.Password, config.Database, config.SslMode)
	if !config.DbConnectWithSocket {
		// Cloud Run connects through a unix socket, a local database needs the port
		connectionString = fmt.Sprintf("%s port=%s", connectionString, config.Port)
	}
	return connectionString
}

// RedisConfig is optional: with an empty address, single use tokens are tracked in Postgres.
type RedisConfig struct {
	Address       string
	Key           string
	Tls           bool
	TlsSkipVerify bool
}

func (config RedisConfig) Enabled() bool {
	return config.Address != ""
}

type TelemetrySamplingMap struct {
	HttpRoutes map[string]float64
	SpanNames  map[string]float64
}

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	ProjectID       string
	Exporter        string // "gcp" or "otlp"
	SamplingMap     TelemetrySamplingMap
}
