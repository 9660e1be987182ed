package provider

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loretops/coinvest-docs/config"
)

func testConfig(t *testing.T, provider string) *config.ServiceConfig {
	t.Helper()

	return &config.ServiceConfig{
		StorageProvider:  provider,
		LocalStoragePath: t.TempDir(),
		BaseURL:          "http://localhost:7513",
		CloudRegion:      "eu-west-1",
		CloudDeliveryURL: "https://res.example.com",
	}
}

func TestGetStorageBackend_DefaultsToLocal(t *testing.T) {
	for _, provider := range []string{"local", "LOCAL", "", "something-else"} {
		backend, err := GetStorageBackend(context.Background(), testConfig(t, provider), logrus.New())
		require.NoError(t, err)
		assert.Equal(t, "local", backend.Name())
	}
}

func TestGetStorageBackend_CloudWithoutCredentialsFallsBack(t *testing.T) {
	cfg := testConfig(t, "cloud")
	cfg.CloudName = "coinvest"
	// Key and secret missing: the triple is incomplete.

	backend, err := GetStorageBackend(context.Background(), cfg, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "local", backend.Name())
}

func TestGetStorageBackend_CloudWithCredentials(t *testing.T) {
	cfg := testConfig(t, "cloud")
	cfg.CloudName = "coinvest"
	cfg.CloudKey = "key"
	cfg.CloudSecret = "s3cret"
	cfg.CloudBucket = "coinvest-docs"

	backend, err := GetStorageBackend(context.Background(), cfg, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "cloud", backend.Name())
}

func TestGetStorageBackend_CaseInsensitiveSelector(t *testing.T) {
	cfg := testConfig(t, "Cloud")
	cfg.CloudName = "coinvest"
	cfg.CloudKey = "key"
	cfg.CloudSecret = "s3cret"
	cfg.CloudBucket = "coinvest-docs"

	backend, err := GetStorageBackend(context.Background(), cfg, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "cloud", backend.Name())
}
