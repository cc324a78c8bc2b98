package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/gourmet-house/config"
	"github.com/yeremiapane/gourmet-house/controllers"
	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/middlewares"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/realtime"
	"github.com/yeremiapane/gourmet-house/services"
	"github.com/yeremiapane/gourmet-house/utils"
)

// Deps is everything the HTTP layer needs. Redis may be nil.
type Deps struct {
	Config   *config.Config
	Store    *database.Store
	Redis    *redis.Client
	Hub      *realtime.Hub
	Notifier services.Notifier
	Auth     *services.AuthService
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	loc := cfg.Location()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.App.CORSOrigins))

	errs := controllers.ErrorHandler{ExposeDetails: !cfg.IsProduction()}

	bookingSvc := services.NewBookingService(deps.Store, deps.Notifier, loc, cfg.Booking.MaxAdvanceMonths)
	subscriberSvc := services.NewSubscriberService(deps.Store, deps.Notifier)
	catalogSvc := services.NewCatalogService(deps.Store, loc)

	bookingCtrl := controllers.NewBookingController(bookingSvc, errs)
	subscriberCtrl := controllers.NewSubscriberController(subscriberSvc, errs)
	catalogCtrl := controllers.NewCatalogController(catalogSvc, errs)
	adminCtrl := controllers.NewAdminController(deps.Auth, bookingSvc, subscriberSvc, errs)
	healthCtrl := controllers.NewHealthController(deps.Store, cfg, deps.Hub)

	limit := rateLimit(cfg, deps.Redis)
	cache := responseCache(cfg, deps.Redis)
	// specials expire at midnight restaurant time
	specialsCache := responseCache(cfg, deps.Redis, func(*gin.Context) string {
		return time.Now().In(loc).Format(models.DateLayout)
	})

	r.GET("/ping", healthCtrl.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", healthCtrl.Health)
		api.GET("/test", healthCtrl.Test)
		if !cfg.IsProduction() {
			api.GET("/debug", healthCtrl.Debug)
		}

		api.POST("/bookings", limit, bookingCtrl.CreateBooking)
		api.POST("/subscribers", limit, subscriberCtrl.Subscribe)
		api.POST("/subscribers/unsubscribe", limit, subscriberCtrl.Unsubscribe)

		api.GET("/menu", cache, catalogCtrl.GetMenu)
		api.GET("/gallery", cache, catalogCtrl.GetGallery)
		api.GET("/specials", specialsCache, catalogCtrl.GetSpecials)

		api.POST("/admin/login", limit, adminCtrl.Login)
	}

	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware(deps.Auth), middlewares.RoleCheck(services.RoleAdmin))
	{
		admin.GET("/bookings", adminCtrl.ListBookings)
		admin.PATCH("/bookings/:id/status", adminCtrl.UpdateBookingStatus)
		admin.GET("/subscribers", adminCtrl.ListSubscribers)
	}

	if deps.Hub != nil {
		realtimeCtrl := controllers.NewRealtimeController(deps.Hub, cfg.App.CORSOrigins)
		r.GET("/ws/bookings", middlewares.WebSocketAuthMiddleware(deps.Auth), middlewares.RoleCheck(services.RoleAdmin), realtimeCtrl.BookingFeed)
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, utils.ErrorResponse{Error: "Method not allowed"})
	})
	r.NoRoute(staticOrNotFound(cfg.App.StaticDir))

	return r
}

func rateLimit(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	switch {
	case !cfg.RateLimit.Enabled:
		return func(c *gin.Context) { c.Next() }
	case rdb != nil:
		return middlewares.RedisRateLimit(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	default:
		return middlewares.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).RateLimit()
	}
}

func responseCache(cfg *config.Config, rdb *redis.Client, vary ...func(*gin.Context) string) gin.HandlerFunc {
	if rdb == nil || !cfg.Cache.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return middlewares.ResponseCache(rdb, cfg.Cache.TTL, vary...)
}

// staticOrNotFound serves the front-end build for unknown GET paths and
// answers JSON 404 for everything else.
func staticOrNotFound(dir string) gin.HandlerFunc {
	root := ""
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			root = dir
			utils.InfoLogger.Printf("Serving static files from %s", dir)
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if root != "" && c.Request.Method == http.MethodGet && !strings.HasPrefix(path, "/api/") {
			clean := filepath.Clean("/" + path)
			candidate := filepath.Join(root, filepath.FromSlash(clean))
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				candidate = filepath.Join(candidate, "index.html")
			}
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				c.File(candidate)
				return
			}
		}
		c.JSON(http.StatusNotFound, utils.ErrorResponse{Error: "Not found"})
	}
}
