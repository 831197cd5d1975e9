package cmd

import (
	"context"
	"time"

	"github.com/invoicebox/backend/infra"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

const appName = "invoicebox-backend"

type CompiledConfig struct {
	Version         string
	SegmentWriteKey string
}

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:    utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:            utils.GetEnv("PG_DATABASE", "invoicebox"),
		DbConnectWithSocket: utils.GetEnv("PG_CONNECT_WITH_SOCKET", false),
		Hostname:            utils.GetEnv("PG_HOSTNAME", ""),
		Password:            utils.GetEnv("PG_PASSWORD", ""),
		Port:                utils.GetEnv("PG_PORT", "5432"),
		User:                utils.GetEnv("PG_USER", ""),
		MaxPoolConnections:  utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:             utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}

func redisConfigFromEnv() infra.RedisConfig {
	return infra.RedisConfig{
		Address:       utils.GetEnv("REDIS_ADDRESS", ""),
		Key:           utils.GetEnv("REDIS_KEY", ""),
		Tls:           utils.GetEnv("REDIS_TLS", false),
		TlsSkipVerify: utils.GetEnv("REDIS_TLS_SKIP_VERIFY", false),
	}
}

func telemetryConfigFromEnv(ctx context.Context) infra.TelemetryConfiguration {
	cfg := infra.TelemetryConfiguration{
		Enabled:         utils.GetEnv("ENABLE_TRACING", false),
		ApplicationName: appName,
		ProjectID:       utils.GetEnv("GOOGLE_CLOUD_PROJECT", ""),
		Exporter:        utils.GetEnv("TRACING_EXPORTER", "otlp"),
	}
	// on cloud run the project is known by the metadata server
	if cfg.Enabled && cfg.Exporter == "gcp" && cfg.ProjectID == "" {
		projectId, err := infra.GetProjectId(ctx)
		if err != nil {
			utils.LoggerFromContext(ctx).WarnContext(ctx, "could not resolve the GCP project", "error", err.Error())
		}
		cfg.ProjectID = projectId
	}
	return cfg
}

func mailerConfigFromEnv() models.MailerConfiguration {
	return models.MailerConfiguration{
		ApiUrl:      utils.GetEnv("MAIL_API_URL", ""),
		ApiKey:      utils.GetEnv("MAIL_API_KEY", ""),
		SenderEmail: utils.GetEnv("MAIL_SENDER_EMAIL", "no-reply@invoicebox.app"),
		AppUrl:      utils.GetEnv("APP_URL", "http://localhost:3000"),
	}
}

func inboundMailConfigFromEnv() models.InboundMailConfiguration {
	return models.InboundMailConfiguration{
		MailDomain:           utils.GetRequiredEnv[string]("INBOUND_MAIL_DOMAIN"),
		InboundBucketUrl:     utils.GetRequiredEnv[string]("INBOUND_MAIL_BUCKET_URL"),
		AttachmentsBucketUrl: utils.GetRequiredEnv[string]("ATTACHMENTS_BUCKET_URL"),
	}
}

// Each purpose is signed with its own secret, so that a token of one kind is never accepted
// for another.
func tokenConfigurationFromEnv() models.TokenConfiguration {
	policy := func(secretEnv string, lifetimeEnv string, defaultLifetime time.Duration) models.TokenPolicy {
		return models.TokenPolicy{
			Secret:   []byte(utils.GetRequiredEnv[string](secretEnv)),
			Lifetime: utils.GetEnv(lifetimeEnv, defaultLifetime),
		}
	}

	return models.TokenConfiguration{
		Issuer: utils.GetEnv("TOKEN_ISSUER", appName),
		Policies: map[models.TokenPurpose]models.TokenPolicy{
			models.TokenPurposeAccess: policy(
				"ACCESS_TOKEN_SECRET", "ACCESS_TOKEN_LIFETIME", 15*time.Minute),
			models.TokenPurposeRefresh: policy(
				"REFRESH_TOKEN_SECRET", "REFRESH_TOKEN_LIFETIME", 30*24*time.Hour),
			models.TokenPurposeInvite: policy(
				"INVITE_TOKEN_SECRET", "INVITE_TOKEN_LIFETIME", 7*24*time.Hour),
			models.TokenPurposeEmailVerification: policy(
				"EMAIL_VERIFICATION_TOKEN_SECRET", "EMAIL_VERIFICATION_TOKEN_LIFETIME", 24*time.Hour),
			models.TokenPurposePasswordReset: policy(
				"PASSWORD_RESET_TOKEN_SECRET", "PASSWORD_RESET_TOKEN_LIFETIME", time.Hour),
			models.TokenPurposeInboundMail: policy(
				"INBOUND_MAIL_TOKEN_SECRET", "INBOUND_MAIL_TOKEN_LIFETIME", 5*time.Minute),
		},
	}
}
