// Package router assembles the Gin engine and runs the HTTP server.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/hearthware/ovenlink/internal/config"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/internal/interfaces/http/handlers"
	"github.com/hearthware/ovenlink/internal/interfaces/http/middleware"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// Router owns the Gin engine and the HTTP server around it.
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	logger           logger.Logger
	healthHandler    *handlers.HealthHandler
	applianceHandler *handlers.ApplianceHandler
	tracer           trace.Tracer
	metrics          *monitoring.Metrics
	server           *http.Server
}

// NewRouter creates the router. SetupRoutes must run before Start.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	applianceHandler *handlers.ApplianceHandler,
	tracer trace.Tracer,
	metrics *monitoring.Metrics,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:           gin.New(),
		config:           cfg,
		logger:           log,
		healthHandler:    healthHandler,
		applianceHandler: applianceHandler,
		tracer:           tracer,
		metrics:          metrics,
	}
}

// SetupRoutes wires middleware and the route tree.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(r.tracer, r.metrics))
	r.engine.Use(middleware.RequestDeadline(
		time.Duration(r.config.Server.WriteTimeout)*time.Second,
		"/state/stream",
	))

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		appliances := v1.Group("/appliances")
		{
			appliances.POST("", r.applianceHandler.Pair)
			appliances.GET("", r.applianceHandler.List)
			appliances.DELETE("/:said", r.applianceHandler.Unpair)
			appliances.GET("/:said/state", r.applianceHandler.State)
			appliances.GET("/:said/state/stream", r.applianceHandler.StateStream)
			appliances.GET("/:said/favourites", r.applianceHandler.Favourites)
			appliances.POST("/:said/favourites/refresh", r.applianceHandler.RefreshFavourites)
			appliances.POST("/:said/favourites/:id/run", r.applianceHandler.RunFavourite)
			appliances.POST("/:said/cancel", r.applianceHandler.Cancel)
			appliances.POST("/:said/set", r.applianceHandler.SetField)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start runs the HTTP server until it is shut down.
func (r *Router) Start() error {
	addr := r.config.Server.Addr()
	// No server-level write timeout: it would cut every state stream after
	// the configured interval regardless of activity. The request deadline
	// middleware bounds the non-streaming routes instead.
	r.server = &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadTimeout:       time.Duration(r.config.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(r.config.Server.ReadTimeout) * time.Second,
	}

	r.logger.Info(context.Background(), "starting http server", logger.Fields{"address": addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "stopping http server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the assembled engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
