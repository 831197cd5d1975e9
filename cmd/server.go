package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/api"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

const serverShutdownTimeout = 5 * time.Second

func apiConfigFromEnv(config CompiledConfig) api.Configuration {
	return api.Configuration{
		Env:                 utils.GetEnv("ENV", "development"),
		AppName:             appName,
		AppVersion:          config.Version,
		Port:                utils.GetRequiredEnv[string]("PORT"),
		AppUrl:              utils.GetEnv("APP_URL", "http://localhost:3000"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "all"),
		SegmentWriteKey:     utils.GetEnv("SEGMENT_WRITE_KEY", config.SegmentWriteKey),
		DisableSegment:      utils.GetEnv("DISABLE_SEGMENT", false),
		EnablePrometheus:    utils.GetEnv("ENABLE_PROMETHEUS", true),
		DefaultTimeout:      utils.GetEnv("DEFAULT_TIMEOUT", 10*time.Second),
		MaxBodySize:         int64(utils.GetEnv("MAX_BODY_SIZE_BYTES", 1<<20)),
		LoginRateLimit:      utils.GetEnv("LOGIN_RATE_LIMIT_PER_SECOND", 0.2),
		LoginBurst:          utils.GetEnv("LOGIN_RATE_LIMIT_BURST", 10),
	}
}

func RunServer(config CompiledConfig) error {
	apiConfig := apiConfigFromEnv(config)

	p, err := startProcess(config.Version)
	if err != nil {
		return p.fail(err)
	}
	defer p.Close()
	ctx := p.ctx

	repos := repositories.NewRepositories(p.pool, p.repositoryOptions()...)
	uc := usecases.NewUsecases(repos,
		usecases.WithApiVersion(config.Version),
		usecases.WithAppUrl(apiConfig.AppUrl),
		usecases.WithInboundMail(inboundMailConfigFromEnv()),
	)

	// the first instance of a fresh deployment creates the system roles
	if err := uc.NewRoleRegistry().EnsureDefaultRoles(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	deps := api.InitDependencies(apiConfig, uc)
	if deps.SegmentClient != nil {
		defer deps.SegmentClient.Close()
	}

	router := api.InitRouterMiddlewares(ctx, apiConfig, deps.SegmentClient, p.telemetry)
	utils.SetupProfiling(ctx, router, utils.ProfilingConfiguration{
		Mode:  utils.GetEnv("DEBUG_PROFILING_MODE", ""),
		Token: utils.GetEnv("DEBUG_PROFILING_TOKEN", ""),
	}, appName, config.Version, p.telemetryConfig.ProjectID)
	server := api.NewServer(router, apiConfig, uc, deps.Authentication)

	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		p.logger.InfoContext(ctx, "starting server",
			slog.String("addr", server.Addr), slog.String("version", config.Version))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			err = errors.Wrap(err, "server stopped unexpectedly")
			utils.LogAndReportSentryError(ctx, err)
			return err
		}
		return nil
	case <-stopCtx.Done():
	}

	p.logger.InfoContext(ctx, "shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = errors.Wrap(err, "failed to shut down the server")
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	return nil
}
