package api

import (
	"context"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/analytics-go/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/invoicebox/backend/api/middleware"
	"github.com/invoicebox/backend/infra"
	"github.com/invoicebox/backend/utils"
)

// probes and scrapes would drown the request logs
var unloggedPaths = []string{"/liveness", "/health", "/metrics"}

// InitRouterMiddlewares returns a router with the middlewares shared by every route, in order:
// panic recovery, error reporting, CORS, body size limit, request logging, then the request
// context values (logger, segment client, tracer).
func InitRouterMiddlewares(
	ctx context.Context,
	conf Configuration,
	segmentClient analytics.Client,
	telemetry infra.TelemetryRessources,
) *gin.Engine {
	if !conf.isDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := utils.LoggerFromContext(ctx)

	middlewares := []gin.HandlerFunc{
		gin.Recovery(),
		sentrygin.New(sentrygin.Options{Repanic: true}),
		cors.New(corsOption(ctx, conf)),
		limits.RequestSizeLimiter(conf.maxBodySize()),
		middleware.NewLogging(logger,
			middleware.WithIgnorePath(unloggedPaths),
			middleware.WithRequestLoggingLevel(conf.RequestLoggingLevel),
		),
		utils.StoreLoggerInContextMiddleware(logger),
	}
	if segmentClient != nil {
		middlewares = append(middlewares, utils.StoreSegmentClientInContextMiddleware(segmentClient))
	}
	middlewares = append(middlewares,
		otelgin.Middleware(conf.AppName,
			otelgin.WithTracerProvider(telemetry.TracerProvider),
			otelgin.WithPropagators(telemetry.TextMapPropagator),
		),
		utils.StoreOpenTelemetryTracerInContextMiddleware(telemetry.Tracer),
	)

	r := gin.New()
	r.Use(middlewares...)
	return r
}
