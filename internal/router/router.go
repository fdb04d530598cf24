package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "stockingest/docs"
	"stockingest/internal/handler"
	"stockingest/internal/middleware"
	"stockingest/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokenSvc service.TokenService,
	ingestionH *handler.IngestionHandler,
	catalogH *handler.CatalogHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(tokenSvc))

	// Ingestion workflow
	ingestions := v1.Group("/ingestions")
	ingestions.POST("", ingestionH.Create)
	ingestions.GET("", ingestionH.List)
	ingestions.GET("/:id", ingestionH.Get)
	ingestions.POST("/:id/upload", ingestionH.Upload)
	ingestions.POST("/:id/reprocess", ingestionH.Reprocess)
	ingestions.PATCH("/:id/invoice", ingestionH.UpdateInvoice)
	ingestions.PUT("/:id/supplier", ingestionH.SelectSupplier)
	ingestions.POST("/:id/supplier/resolve", ingestionH.ResolveSupplier)
	ingestions.POST("/:id/items", ingestionH.AddLineItem)
	ingestions.PATCH("/:id/items/:itemId", ingestionH.UpdateLineItem)
	ingestions.PUT("/:id/items/:itemId/product", ingestionH.AssociateProduct)
	ingestions.POST("/:id/items/:itemId/new-product", ingestionH.MarkAsNewProduct)
	ingestions.DELETE("/:id/items/:itemId", ingestionH.RemoveLineItem)
	ingestions.POST("/:id/commit", ingestionH.Commit)
	ingestions.POST("/:id/reset", ingestionH.Reset)
	ingestions.GET("/:id/export", ingestionH.Export)
	ingestions.GET("/:id/image", ingestionH.Image)
	ingestions.GET("/:id/movements", ingestionH.Movements)

	// Catalog
	products := v1.Group("/products")
	products.GET("", catalogH.ListProducts)
	products.POST("", catalogH.CreateProduct)
	products.GET("/:id", catalogH.GetProduct)
	products.GET("/:id/movements", catalogH.ListProductMovements)

	suppliers := v1.Group("/suppliers")
	suppliers.GET("", catalogH.ListSuppliers)
	suppliers.POST("", catalogH.CreateSupplier)
	suppliers.GET("/:id", catalogH.GetSupplier)

	return r
}
