package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service"
	"github.com/loretops/coinvest-docs/service/business"
	"github.com/loretops/coinvest-docs/service/business/securelink"
	"github.com/loretops/coinvest-docs/service/handler"
	"github.com/loretops/coinvest-docs/service/storage/models"
	"github.com/loretops/coinvest-docs/service/storage/provider"
	"github.com/loretops/coinvest-docs/service/storage/provider/local"
	"github.com/loretops/coinvest-docs/service/storage/repository"
)

func main() {
	ctx := context.Background()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Could not process configuration: %v", err)
	}

	if level, levelErr := logrus.ParseLevel(cfg.LogLevel); levelErr == nil {
		log.SetLevel(level)
	}

	database, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	stdArgs := os.Args[1:]
	if len(stdArgs) > 0 && stdArgs[0] == "migrate" {
		log.Info("Initiating migrations")
		if err = database.AutoMigrate(&models.Project{}, &models.ProjectDocument{}, &models.DocumentView{}); err != nil {
			log.Fatalf("Could not migrate successfully: %v", err)
		}
		return
	}

	log.Infof("Initiating the documents service at %v", time.Now())

	backend, err := provider.GetStorageBackend(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Could not set up storage backend: %v", err)
	}
	log.WithField("backend", backend.Name()).Info("Storage backend ready")

	if cfg.SignedURLSecret == "" {
		log.Warn("SIGNED_URL_SECRET is empty, capability tokens are not secure")
	}
	issuer := securelink.NewIssuer([]byte(cfg.SignedURLSecret), time.Duration(cfg.SignedURLExpiry)*time.Second)

	documentService := business.NewDocumentService(
		repository.NewProjectRepository(database),
		repository.NewDocumentRepository(database),
		repository.NewViewRepository(database),
		backend,
		log,
	)

	documentsHandler := handler.NewDocumentsHandler(documentService, issuer, log)
	gateHandler := handler.NewSecureGateHandler(documentService, issuer, backend, http.DefaultClient, log)

	// The local backend's URLs resolve against our own /uploads/ route.
	var uploadsDir string
	if localBackend, ok := backend.(*local.Backend); ok {
		uploadsDir = localBackend.Root()
	}

	service.RunServer(cfg.ServerPort, handler.NewRouter(documentsHandler, gateHandler, uploadsDir), log)
}
