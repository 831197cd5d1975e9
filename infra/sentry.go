package infra

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

const defaultSentryTracesRate = 0.2

var redactedHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization"}

// SetupSentry panics on an invalid DSN. An empty DSN leaves the client disabled.
func SetupSentry(dsn, env, apiVersion string) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:           dsn,
		Environment:   env,
		Release:       apiVersion,
		EnableTracing: true,
		TracesSampler: sentryTracesRate,
		BeforeSend:    scrubSentryEvent,
	})
	if err != nil {
		panic(errors.Wrap(err, "failed to initialize sentry"))
	}
}

// transactions are named "<METHOD> <route>" by the gin integration, the route rules of the
// tracer apply to them as well
func sentryTracesRate(ctx sentry.SamplingContext) float64 {
	if ctx.Span == nil {
		return defaultSentryTracesRate
	}
	_, route, _ := strings.Cut(ctx.Span.Name, " ")
	if rate, ok := ruleRate(route, defaultRouteRules); ok {
		return rate
	}
	return defaultSentryTracesRate
}

func scrubSentryEvent(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event == nil {
		return nil
	}
	if event.Request != nil {
		for _, header := range redactedHeaders {
			if _, ok := event.Request.Headers[header]; ok {
				event.Request.Headers[header] = "[redacted]"
			}
		}
	}
	// group the issues by root cause rather than by the outermost wrapping message
	if hint != nil && hint.OriginalException != nil && len(event.Exception) > 0 {
		event.Exception[len(event.Exception)-1].Type = errors.UnwrapAll(hint.OriginalException).Error()
	}
	return event
}
