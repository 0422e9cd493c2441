package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studio-interiors/site-server/config"
)

func TestParseProfileTypes_Default(t *testing.T) {
	got, err := parseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, defaultProfileTypes, got)
}

func TestParseProfileTypes_CustomDeduplicates(t *testing.T) {
	got, err := parseProfileTypes("cpu, block,cpu,")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileBlockCount,
		pyroscope.ProfileBlockDuration,
	}, got)
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported O11Y_PROFILING_SAMPLE_TYPES")
}

func TestBuildApplicationName(t *testing.T) {
	assert.Equal(t, "site{environment=production,service_version=1.2.0}",
		buildApplicationName("site", "site-server", "production", "1.2.0"))
	assert.Equal(t, "site-server{environment=staging,service_version=1.0.0}",
		buildApplicationName("  ", "site-server", "staging", "1.0.0"))
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{Enabled: false}, config.ObservabilityConfig{}, "test")
	require.NoError(t, err)
	assert.NotNil(t, stop)
	stop()
}

func TestInitProfiler_MissingEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: " "}, config.ObservabilityConfig{}, "test")
	assert.Error(t, err)
}
