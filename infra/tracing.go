package infra

import (
	"context"
	"encoding/binary"
	"math"
	"strings"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/api/option"
)

type TelemetryRessources struct {
	TracerProvider    trace.TracerProvider
	Tracer            trace.Tracer
	TextMapPropagator propagation.TextMapPropagator
}

func NoopTelemetry() TelemetryRessources {
	provider := noop.NewTracerProvider()
	return TelemetryRessources{
		TracerProvider: provider,
		Tracer:         provider.Tracer(""),
	}
}

// InitTelemetry installs the global propagator and returns a tracer provider exporting to Cloud
// Trace or to an OTLP collector. It is a no-op when tracing is disabled.
func InitTelemetry(configuration TelemetryConfiguration, apiVersion string) (TelemetryRessources, error) {
	if !configuration.Enabled {
		return NoopTelemetry(), nil
	}
	ctx := context.Background()

	exporter, err := newSpanExporter(ctx, configuration)
	if err != nil {
		return TelemetryRessources{}, err
	}

	res, err := resource.New(ctx,
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(configuration.ApplicationName),
			semconv.ServiceVersion(apiVersion),
		),
	)
	if err != nil {
		return TelemetryRessources{}, errors.Wrap(err, "failed to build the telemetry resource")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(RouteSampler{SamplingMap: configuration.SamplingMap}),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// Cloud Run load balancers send X-Cloud-Trace-Context, everything else speaks W3C
	propagator := propagation.NewCompositeTextMapPropagator(
		gcppropagator.CloudTraceFormatPropagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	return TelemetryRessources{
		TracerProvider:    provider,
		Tracer:            provider.Tracer(configuration.ApplicationName),
		TextMapPropagator: propagator,
	}, nil
}

func newSpanExporter(ctx context.Context, configuration TelemetryConfiguration) (sdktrace.SpanExporter, error) {
	if configuration.Exporter == "gcp" {
		exporter, err := texporter.New(
			texporter.WithProjectID(configuration.ProjectID),
			texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
		)
		return exporter, errors.Wrap(err, "failed to create the cloud trace exporter")
	}

	exporter, err := otlptracegrpc.New(ctx)
	return exporter, errors.Wrap(err, "failed to create the otlp exporter")
}

const defaultSamplingRate = 0.3

type samplingRule struct {
	prefix string
	rate   float64
}

// checked in order, the first matching prefix wins
var (
	defaultRouteRules = []samplingRule{
		{"/liveness", 0},
		{"/health", 0},
		{"/metrics", 0},
		{"/emails/inbound", 0.05},
		{"/auth/refresh", 0.05},
	}

	defaultSpanNameRules = []samplingRule{
		{"pool.acquire", 0},
		{"token_replay_guard", 0.05},
		{"weekly_report", 0.1},
		{"inbound_mail", 0.1},
		{"notification_sender", 0.1},
	}
)

// RouteSampler decides from the http route of server spans, the query of database spans or the
// name of any other span. The configured rates take precedence over the built-in ones.
// A parent that was not sampled is always followed.
type RouteSampler struct {
	SamplingMap TelemetrySamplingMap
}

func (RouteSampler) Description() string {
	return "route-sampler"
}

func (s RouteSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	parent := trace.SpanContextFromContext(p.ParentContext)
	if parent.HasTraceID() && !parent.IsSampled() {
		return sdktrace.NeverSample().ShouldSample(p)
	}

	rate := s.rate(p, parent.IsSampled())

	decision := sdktrace.Drop
	// the trace id is random, comparing its high bits keeps the decision stable across services
	if binary.BigEndian.Uint64(p.TraceID[:8]) < uint64(rate*float64(math.MaxUint64)) {
		decision = sdktrace.RecordAndSample
	}

	return sdktrace.SamplingResult{
		Decision:   decision,
		Attributes: p.Attributes,
		Tracestate: parent.TraceState(),
	}
}

func (s RouteSampler) rate(p sdktrace.SamplingParameters, parentSampled bool) float64 {
	if route, ok := attributeValue(p.Attributes, semconv.HTTPRouteKey); ok {
		if rate, ok := prefixRate(route, s.SamplingMap.HttpRoutes); ok {
			return rate
		}
		if rate, ok := ruleRate(route, defaultRouteRules); ok {
			return rate
		}
		return defaultSamplingRate
	}

	if query, ok := attributeValue(p.Attributes, semconv.DBQueryTextKey); ok {
		// prepared statements and the session settings of each transaction are noise
		if strings.HasPrefix(p.Name, "prepare ") || strings.Contains(query, "SELECT SET_CONFIG") {
			return 0
		}
		if parentSampled {
			return 1
		}
		return defaultSamplingRate
	}

	if rate, ok := s.SamplingMap.SpanNames[p.Name]; ok {
		return rate
	}
	for _, rule := range defaultSpanNameRules {
		if rule.prefix == p.Name {
			return rule.rate
		}
	}
	return 1
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

// prefixRate picks the longest configured prefix so that the result does not depend on map order
func prefixRate(value string, rates map[string]float64) (float64, bool) {
	best, found := -1, false
	var rate float64
	for prefix, r := range rates {
		if strings.HasPrefix(value, prefix) && len(prefix) > best {
			best, rate, found = len(prefix), r, true
		}
	}
	return rate, found
}

func ruleRate(value string, rules []samplingRule) (float64, bool) {
	for _, rule := range rules {
		if strings.HasPrefix(value, rule.prefix) {
			return rule.rate, true
		}
	}
	return 0, false
}
