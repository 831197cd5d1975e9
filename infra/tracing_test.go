package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

func samplingParams(name string, attrs ...attribute.KeyValue) sdktrace.SamplingParameters {
	return sdktrace.SamplingParameters{
		TraceID:    trace.TraceID{0x10, 0, 0, 0, 0, 0, 0, 1},
		Name:       name,
		Attributes: attrs,
	}
}

func TestRouteSampler(t *testing.T) {
	sampler := RouteSampler{}

	t.Run("health routes are dropped", func(t *testing.T) {
		result := sampler.ShouldSample(samplingParams("GET", semconv.HTTPRouteKey.String("/liveness")))
		assert.Equal(t, sdktrace.Drop, result.Decision)
	})

	t.Run("pool acquisition spans are dropped", func(t *testing.T) {
		result := sampler.ShouldSample(samplingParams("pool.acquire"))
		assert.Equal(t, sdktrace.Drop, result.Decision)
	})

	t.Run("unknown spans are kept", func(t *testing.T) {
		result := sampler.ShouldSample(samplingParams("create_workspace"))
		assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
	})

	t.Run("configured routes override the defaults", func(t *testing.T) {
		custom := RouteSampler{SamplingMap: TelemetrySamplingMap{
			HttpRoutes: map[string]float64{"/liveness": 1.0},
		}}
		result := custom.ShouldSample(samplingParams("GET", semconv.HTTPRouteKey.String("/liveness")))
		assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
	})
}

func TestRouteSampler_DatabaseSpans(t *testing.T) {
	sampler := RouteSampler{}

	result := sampler.ShouldSample(samplingParams("query",
		semconv.DBQueryTextKey.String("SELECT SET_CONFIG('app.user_id', $1, true)")))
	assert.Equal(t, sdktrace.Drop, result.Decision)

	result = sampler.ShouldSample(samplingParams("prepare select",
		semconv.DBQueryTextKey.String("SELECT id FROM workspaces")))
	assert.Equal(t, sdktrace.Drop, result.Decision)
}

func TestPrefixRate_LongestPrefixWins(t *testing.T) {
	rate, ok := prefixRate("/workspaces/:id/members", map[string]float64{
		"/workspaces":             0.5,
		"/workspaces/:id/members": 0.1,
	})
	assert.True(t, ok)
	assert.Equal(t, 0.1, rate)

	_, ok = prefixRate("/users/me", map[string]float64{"/workspaces": 0.5})
	assert.False(t, ok)
}
