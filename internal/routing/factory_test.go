package routing_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create OSRM provider successfully", func(t *testing.T) {
		config := routing.ProviderConfig{
			Type:   routing.ProviderTypeOSRM,
			Logger: logger,
		}

		provider, err := routing.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
		_, ok := provider.(*routing.OSRMProvider)
		assert.True(t, ok, "expected provider to be *OSRMProvider")
	})

	t.Run("create Google provider successfully", func(t *testing.T) {
		config := routing.ProviderConfig{
			Type:    routing.ProviderTypeGoogle,
			APIKey:  "AIza-test-api-key",
			Timeout: 5 * time.Second,
			Logger:  logger,
		}

		provider, err := routing.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
		_, ok := provider.(*routing.GoogleProvider)
		assert.True(t, ok, "expected provider to be *GoogleProvider")
	})

	t.Run("create Google provider without API key fails", func(t *testing.T) {
		config := routing.ProviderConfig{
			Type:   routing.ProviderTypeGoogle,
			Logger: logger,
		}

		provider, err := routing.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "API key is required for Google provider")
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		config := routing.ProviderConfig{
			Type:   routing.ProviderType("visicom"),
			Logger: logger,
		}

		provider, err := routing.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "unsupported provider type: visicom")
	})

	t.Run("empty provider type", func(t *testing.T) {
		provider, err := routing.NewProvider(routing.ProviderConfig{Logger: logger})

		require.Error(t, err)
		require.Nil(t, provider)
	})
}

func TestProviderType_Constants(t *testing.T) {
	assert.Equal(t, "osrm", string(routing.ProviderTypeOSRM))
	assert.Equal(t, "google", string(routing.ProviderTypeGoogle))
}
