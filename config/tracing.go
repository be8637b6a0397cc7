package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	OTLPEndpointKey     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	defaultOTLPEndpoint = "http://localhost:4318"
	defaultOTLPPath     = "/v1/traces"
	tracingNamespace    = "participant-console"
)

// otlpTarget is where spans are shipped. Insecure is set for plain http.
type otlpTarget struct {
	HostPort string
	Path     string
	Insecure bool
}

// SetupTracing installs the global tracer provider when OTEL_TRACES_ENABLED is
// set. Spans carry the deployment env and the participant API they front.
func SetupTracing(logger *log.Logger, appConfig *AppConfig) (func(context.Context) error, error) {
	if !utils.IsTracingEnabled() {
		return nil, nil
	}

	endpoint := utils.GetEnvTrimmedOrDefault(OTLPEndpointKey, defaultOTLPEndpoint)
	target, err := parseOTLPEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(target.HostPort),
		otlptracehttp.WithURLPath(target.Path),
	}
	if target.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter for %s: %w", endpoint, err)
	}

	attrs := tracingAttributes(utils.OTelServiceName(), GetAppEnv(), appConfig)
	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("building tracing resource: %w", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Console tracing enabled", "service", utils.OTelServiceName(), "endpoint", endpoint, "path", target.Path)

	return provider.Shutdown, nil
}

func tracingAttributes(serviceName, appEnv string, appConfig *AppConfig) []attribute.KeyValue {
	if appEnv == "" {
		appEnv = "development"
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.namespace", tracingNamespace),
		attribute.String("deployment.environment", appEnv),
	}

	if appConfig != nil && appConfig.ParticipantAPI != nil && appConfig.ParticipantAPI.BaseURL != "" {
		attrs = append(attrs, attribute.String("participant.api.url", appConfig.ParticipantAPI.BaseURL))
	}

	return attrs
}

// parseOTLPEndpoint takes http(s)://host:port[/path] or a bare host:port.
func parseOTLPEndpoint(raw string) (otlpTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpTarget{}, fmt.Errorf("%s is empty", OTLPEndpointKey)
	}

	if !strings.Contains(raw, "://") {
		// otlptracehttp.WithEndpoint wants host:port only.
		if strings.ContainsAny(raw, "/?#") {
			return otlpTarget{}, fmt.Errorf("%s %q needs an http:// or https:// scheme when it carries a path", OTLPEndpointKey, raw)
		}
		return otlpTarget{HostPort: raw, Path: defaultOTLPPath, Insecure: true}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return otlpTarget{}, fmt.Errorf("%s %q: %w", OTLPEndpointKey, raw, err)
	}
	if u.Host == "" {
		return otlpTarget{}, fmt.Errorf("%s %q has no host", OTLPEndpointKey, raw)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return otlpTarget{}, fmt.Errorf("%s %q: scheme %q is not http or https", OTLPEndpointKey, raw, u.Scheme)
	}

	path := u.EscapedPath()
	if path == "" || path == "/" {
		path = defaultOTLPPath
	}

	return otlpTarget{HostPort: u.Host, Path: path, Insecure: scheme == "http"}, nil
}
