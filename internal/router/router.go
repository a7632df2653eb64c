package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-board-api/internal/handler"
	internalmiddleware "github.com/noah-isme/school-board-api/internal/middleware"
	"github.com/noah-isme/school-board-api/internal/service"
	"github.com/noah-isme/school-board-api/pkg/config"
	"github.com/noah-isme/school-board-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-board-api/pkg/middleware/cors"
	headersmiddleware "github.com/noah-isme/school-board-api/pkg/middleware/headers"
	"github.com/noah-isme/school-board-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/school-board-api/pkg/middleware/requestid"
)

// Dependencies carries everything the HTTP surface needs. Export and Metrics
// may be nil; the matching routes are then left out.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Board   *handler.BoardHandler
	Static  *handler.StaticHandler
	Probes  *handler.MetricsHandler
	Export  *handler.ExportHandler
	Metrics *service.MetricsService
	Limiter *ratelimit.Limiter
}

// New builds the gin engine with the middleware chain and every route.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(headersmiddleware.New(cfg.SSL))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.Metrics))

	r.GET("/health", deps.Probes.Health)
	r.GET("/ready", deps.Probes.Ready)

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.GET("/metrics", deps.Probes.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	api.GET("/data", deps.Board.GetData)

	writes := api.Group("", ratelimit.Middleware(deps.Limiter))
	writes.POST("/holidays", deps.Board.CreateHoliday)
	writes.POST("/payment-dues", deps.Board.CreatePaymentDue)
	writes.POST("/key-info", deps.Board.CreateKeyInfo)
	writes.POST("/faculty-posts", deps.Board.CreateFacultyPost)
	writes.DELETE("/posts/:type/:id", deps.Board.DeletePost)

	if cfg.Exports.Enabled && deps.Export != nil {
		api.GET("/export/:format", deps.Export.Export)
	}

	r.GET("/", deps.Static.Page("index.html"))
	for _, page := range handler.Pages {
		r.GET("/"+page, deps.Static.Page(page))
	}
	r.NoRoute(deps.Static.NotFound)

	return r
}
