package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")

	cfg := LoadFromEnv()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "heap-analysis", cfg.ServiceName)
	assert.Equal(t, "grpc", cfg.Protocol)
}

func TestLoadFromEnv_Enabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "TRUE")
	t.Setenv("OTEL_SERVICE_NAME", "heap-svc")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "Authorization=Bearer abc,X-Tenant=dev")

	cfg := LoadFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "heap-svc", cfg.ServiceName)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer abc",
		"X-Tenant":      "dev",
	}, cfg.Headers)
}

func TestParseKeyValuePairs(t *testing.T) {
	assert.Empty(t, parseKeyValuePairs(""))
	assert.Equal(t, map[string]string{"a": "1"}, parseKeyValuePairs("a=1"))
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, parseKeyValuePairs("a=1, b=x=y"))
	assert.Empty(t, parseKeyValuePairs("novalue"))
}

func TestParseRatio(t *testing.T) {
	assert.Equal(t, 1.0, parseRatio(""))
	assert.Equal(t, 0.25, parseRatio("0.25"))
	assert.Equal(t, 1.0, parseRatio("bogus"))
	assert.Equal(t, 0.0, parseRatio("-3"))
	assert.Equal(t, 1.0, parseRatio("7"))
}

func TestCreateSampler_Default(t *testing.T) {
	s := createSampler(&Config{})
	assert.Equal(t, "AlwaysOnSampler", s.Description())
}
