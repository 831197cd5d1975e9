package utils

import (
	"context"
	"net/http"
	"net/http/pprof"

	"cloud.google.com/go/profiler"
	"github.com/gin-gonic/gin"
)

type ProfilingConfiguration struct {
	// "gcp" starts the cloud profiler agent, "http" exposes the pprof endpoints, anything else disables profiling
	Mode  string
	Token string
}

func SetupProfiling(ctx context.Context, r *gin.Engine, cfg ProfilingConfiguration,
	serviceName, serviceVersion, gcpProjectId string,
) {
	logger := LoggerFromContext(ctx)

	switch cfg.Mode {
	case "gcp":
		err := profiler.Start(profiler.Config{
			ProjectID:      gcpProjectId,
			Service:        serviceName,
			ServiceVersion: serviceVersion,
		})
		if err != nil {
			logger.WarnContext(ctx, "could not start the cloud profiler", "error", err.Error())
		}

	case "http":
		if cfg.Token == "" {
			logger.WarnContext(ctx, "pprof endpoints need a token, profiling disabled")
			return
		}
		pp := r.Group("/debug/pprof")
		pp.Use(func(c *gin.Context) {
			if c.Request.Header.Get("Authorization") != "Bearer "+cfg.Token {
				c.AbortWithStatus(http.StatusUnauthorized)
			}
		})

		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pp.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pp.GET("/block", gin.WrapH(pprof.Handler("block")))
		pp.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	}
}
