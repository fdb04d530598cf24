// @title stockingest API
// @version 1.0
// @description Supplier invoice ingestion: OCR extraction, review against the catalog and stock entry.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs
package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/extractor/claude"
	"stockingest/internal/extractor/gemini"
	"stockingest/internal/extractor/openai"
	"stockingest/internal/handler"
	"stockingest/internal/imageprep"
	"stockingest/internal/port"
	"stockingest/internal/repository/postgres"
	"stockingest/internal/router"
	"stockingest/internal/service"
	s3storage "stockingest/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return errors.New("STOCKINGEST_JWT_SECRET is required")
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	productRepo := postgres.NewProductRepo(db)
	supplierRepo := postgres.NewSupplierRepo(db)
	movementRepo := postgres.NewStockMovementRepo(db)
	ingestionRepo := postgres.NewIngestionRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize invoice extraction
	extractor.RegisterProvider("claude", claude.Factory)
	extractor.RegisterProvider("gemini", gemini.Factory)
	extractor.RegisterProvider("openai", openai.Factory)

	var invoiceExtractor port.InvoiceExtractor
	invoiceExtractor, err = extractor.NewChain(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize invoice extractor: %w", err)
	}
	if cfg.Ingestion.EnhanceImages {
		opts := imageprep.DefaultOptions()
		opts.MaxDimension = cfg.Ingestion.MaxImageDimension
		invoiceExtractor = extractor.WithImagePreparation(invoiceExtractor, opts)
	}

	// Initialize services
	tokenSvc := service.NewTokenService(cfg.JWT)
	ingestionSvc := service.NewIngestionService(
		ingestionRepo, productRepo, supplierRepo, movementRepo,
		s3Client, invoiceExtractor, &cfg.S3, &cfg.Ingestion,
	)
	catalogSvc := service.NewCatalogService(productRepo, supplierRepo, movementRepo)

	// Initialize handlers
	ingestionH := handler.NewIngestionHandler(ingestionSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	healthH := handler.NewHealthHandler(map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"storage":  s3Client.Ping,
	})

	// Setup router
	r := router.Setup(tokenSvc, ingestionH, catalogH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
