package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getzep/nlp-annotator-api/config"
)

func TestSetupProviderDisabled(t *testing.T) {
	shutdown, err := SetupProvider(context.Background(), config.TracingConfig{Endpoint: "localhost:4318"}, "dev")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupProviderEnabled(t *testing.T) {
	shutdown, err := SetupProvider(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:4318",
		Insecure:    true,
		ServiceName: "test",
	}, "dev")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
