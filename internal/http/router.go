// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"guava/internal/http/handlers"
	"guava/internal/http/middleware"
)

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.Recovery(s.logger),
		cors.New(corsConfig(s.cfg.AllowedOrigins)),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	public := r.Group("/api", middleware.RateLimit(s.limiters, s.logger))

	tripHandler := handlers.NewTripHandler(s.trips, s.estimates)
	public.POST("/trips/estimate", tripHandler.Estimate)
	public.GET("/trips/session", tripHandler.Session)
	public.PUT("/trips/session/pickup", tripHandler.SetPickup)
	public.PUT("/trips/session/destination", tripHandler.SetDestination)
	public.PUT("/trips/session/service-type", tripHandler.SetServiceType)
	public.POST("/trips/session/swap", tripHandler.Swap)
	public.DELETE("/trips/session/:point", tripHandler.Clear)

	placesHandler := handlers.NewPlacesHandler(s.places, s.searches)
	public.GET("/places/suggest", placesHandler.Suggest)
	public.GET("/places/details/:placeId", placesHandler.Resolve)

	admin := r.Group("/api/admin", middleware.Auth(s.verifier), middleware.RequireRole(middleware.RoleAdmin))
	adminHandler := handlers.NewAdminTierHandler(s.editors, s.logger)
	admin.GET("/tiers", adminHandler.List)
	admin.POST("/tiers", adminHandler.Create)
	admin.GET("/tiers/:serviceType", adminHandler.Show)
	admin.PATCH("/tiers/:serviceType/:index", adminHandler.EditField)
	admin.POST("/tiers/:serviceType/rows", adminHandler.AddRow)
	admin.POST("/tiers/:serviceType/rows/:index/save", adminHandler.SaveRow)
	admin.POST("/tiers/:serviceType/bulk", adminHandler.BulkSave)
	admin.POST("/tiers/:serviceType/refresh", adminHandler.Refresh)
	admin.DELETE("/tiers/id/:id", adminHandler.Delete)

	if s.tiers != nil {
		tierHandler := handlers.NewTierHandler(s.tiers)
		host := r.Group("/tiers", middleware.ServiceToken(s.cfg.ServiceToken))
		host.GET("/:serviceType", tierHandler.List)
		host.POST("", tierHandler.Upsert)
		host.PUT("/bulk/:serviceType", tierHandler.ReplaceAll)
		host.DELETE("/:id", tierHandler.Delete)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", handlers.HeaderSessionID, middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", handlers.HeaderSessionID, middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
