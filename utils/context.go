package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/analytics-go/v3"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/invoicebox/backend/models"
)

type ContextKey int

const (
	ContextKeyCredentials ContextKey = iota
	ContextKeyLogger
	ContextKeySegmentClient
	ContextKeyOpenTelemetryTracer
)

// storeInContextMiddleware copies a process wide value into every request context
func storeInContextMiddleware[T any](store func(context.Context, T) context.Context, value T) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(store(c.Request.Context(), value))
		c.Next()
	}
}

func CredentialsFromCtx(ctx context.Context) (models.Credentials, bool) {
	creds, found := ctx.Value(ContextKeyCredentials).(models.Credentials)
	return creds, found
}

func StoreCredentialsInContext(ctx context.Context, creds models.Credentials) context.Context {
	return context.WithValue(ctx, ContextKeyCredentials, creds)
}

// SegmentClientFromContext is not found when no write key is configured
func SegmentClientFromContext(ctx context.Context) (analytics.Client, bool) {
	client, found := ctx.Value(ContextKeySegmentClient).(analytics.Client)
	return client, found && client != nil
}

func StoreSegmentClientInContext(ctx context.Context, client analytics.Client) context.Context {
	return context.WithValue(ctx, ContextKeySegmentClient, client)
}

func StoreSegmentClientInContextMiddleware(client analytics.Client) gin.HandlerFunc {
	return storeInContextMiddleware(StoreSegmentClientInContext, client)
}

// OpenTelemetryTracerFromContext falls back to a noop tracer, so that spans can be started anywhere
func OpenTelemetryTracerFromContext(ctx context.Context) trace.Tracer {
	if tracer, found := ctx.Value(ContextKeyOpenTelemetryTracer).(trace.Tracer); found {
		return tracer
	}
	return noop.NewTracerProvider().Tracer("")
}

func StoreOpenTelemetryTracerInContext(ctx context.Context, tracer trace.Tracer) context.Context {
	return context.WithValue(ctx, ContextKeyOpenTelemetryTracer, tracer)
}

func StoreOpenTelemetryTracerInContextMiddleware(tracer trace.Tracer) gin.HandlerFunc {
	return storeInContextMiddleware(StoreOpenTelemetryTracerInContext, tracer)
}
