package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gin-contrib/cors"

	"github.com/invoicebox/backend/utils"
)

func corsOption(ctx context.Context, conf Configuration) cors.Config {
	logger := utils.LoggerFromContext(ctx)
	allowedOrigins := []string{}

	parsedUrl, err := url.Parse(conf.AppUrl)
	switch {
	case err != nil:
		logger.Error("Failed to parse the app URL for CORS. Requests made from the browser to the API will be rejected.",
			"url", conf.AppUrl)
	case !slices.Contains([]string{"http", "https"}, parsedUrl.Scheme):
		logger.Error(
			fmt.Sprintf("The url %s does not contain a scheme (http or https), so it cannot be used for CORS.", conf.AppUrl),
			"url", conf.AppUrl)
	default:
		u := url.URL{
			Scheme: parsedUrl.Scheme,
			Host:   parsedUrl.Host,
		}
		allowedOrigins = append(allowedOrigins, u.String())
	}

	if conf.isDevelopment() {
		allowedOrigins = append(allowedOrigins,
			"http://localhost:3000", "http://localhost:3001", "http://localhost:5173")
	}

	return cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{
			http.MethodOptions, http.MethodHead, http.MethodGet,
			http.MethodPost, http.MethodDelete, http.MethodPatch,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type", "baggage", "sentry-trace"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}
