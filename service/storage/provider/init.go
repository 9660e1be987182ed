package provider

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service/storage"
	"github.com/loretops/coinvest-docs/service/storage/provider/cloud"
	"github.com/loretops/coinvest-docs/service/storage/provider/local"
)

// GetStorageBackend chooses and constructs the active backend from
// configuration. The decision is made once at startup and the returned
// instance is shared by all requests.
//
// Selecting cloud without a complete credentials triple logs an error and
// falls back to local instead of failing startup.
func GetStorageBackend(ctx context.Context, cfg *config.ServiceConfig, log *logrus.Logger) (storage.Backend, error) {
	var backend storage.Backend

	switch strings.ToLower(cfg.StorageProvider) {
	case "cloud":
		if !cfg.HasCloudCredentials() {
			log.Error("Cloud storage selected but credentials are incomplete, falling back to local storage")
			backend = local.NewBackend(cfg.LocalStoragePath, cfg.BaseURL, log)
		} else {
			backend = cloud.NewBackend(cfg, log)
		}

	default:
		backend = local.NewBackend(cfg.LocalStoragePath, cfg.BaseURL, log)
	}

	err := backend.Setup(ctx)
	return backend, err
}
