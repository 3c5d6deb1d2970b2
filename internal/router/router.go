package router

import (
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/handler"
	"github.com/bryan1993-HA/domovra-addons/internal/middleware"
	"github.com/bryan1993-HA/domovra-addons/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options carries the collaborators New does not build itself. Zero values
// are fine: a nil Clock means the wall clock, a nil Retention means the
// thresholds from cfg.
type Options struct {
	Retention config.RetentionSource
	Clock     service.Clock
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, opts Options) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMin, time.Minute))

	retention := opts.Retention
	if retention == nil {
		retention = config.NewSettingsRetention(cfg)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := service.NewRepos(db)

	// ── Services ─────────────────────────────────────────────────────────────
	productSvc := service.NewProductService(repos, rdb, opts.Clock)
	locationSvc := service.NewLocationService(repos, retention, opts.Clock)
	stockSvc := service.NewStockService(repos, retention, opts.Clock)
	insightsSvc := service.NewInsightsService(repos, opts.Clock)
	summarySvc := service.NewSummaryService(repos, retention, opts.Clock)
	journalSvc := service.NewJournalService(repos, opts.Clock)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc, stockSvc, insightsSvc)
	locationsH := handler.NewLocationsHandler(locationSvc, stockSvc)
	lotsH := handler.NewLotsHandler(stockSvc)
	summaryH := handler.NewSummaryHandler(summarySvc, journalSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	api := r.Group("/api")
	{
		locs := api.Group("/locations")
		{
			locs.GET("", locationsH.List)
			locs.POST("", locationsH.Create)
			locs.PUT("/:id", locationsH.Update)
			locs.DELETE("/:id", locationsH.Delete)
			locs.POST("/:id/move", locationsH.Move)
		}

		prods := api.Group("/products")
		{
			prods.GET("", productsH.List)
			prods.POST("", productsH.Create)
			prods.GET("/low-stock", productsH.LowStock)
			prods.GET("/barcode/:code", productsH.GetByBarcode)
			prods.GET("/:id", productsH.Get)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.POST("/:id/adjust", productsH.Adjust)
			prods.POST("/:id/consume", productsH.Consume)
			prods.GET("/:id/movements", productsH.Movements)
			prods.GET("/:id/insights", productsH.Insights)
		}
		api.GET("/insights", productsH.AllInsights)

		lots := api.Group("/lots")
		{
			lots.GET("", lotsH.List)
			lots.POST("", lotsH.Create)
			lots.POST("/merge", lotsH.Merge)
			lots.GET("/:id", lotsH.Get)
			lots.PUT("/:id", lotsH.Update)
			lots.DELETE("/:id", lotsH.Delete)
			lots.POST("/:id/consume", lotsH.Consume)
			lots.GET("/:id/movements", lotsH.Movements)
		}
		api.POST("/purchases", lotsH.Purchase)
		api.GET("/reconcile", lotsH.Reconcile)

		api.GET("/shopping", summaryH.Shopping)
		api.GET("/shopping.pdf", summaryH.ShoppingPDF)
		api.GET("/ha/summary", summaryH.HASummary)
		api.GET("/settings/retention", summaryH.Retention)
		api.GET("/journal", summaryH.Journal)
		api.DELETE("/journal", summaryH.ClearJournal)
	}

	// Swagger UI outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
