package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"supplychain-backend/internal/shared/middleware"
	"supplychain-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupInventoryRoutes(v1, c)
		setupLocationRoutes(v1, c)
		setupOrderRoutes(v1, c)
		setupShipmentRoutes(v1, c)
		setupAlertRoutes(v1, c)
	}

	return router
}

// ========================================
// INVENTORY ROUTES
// ========================================
func setupInventoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	inventories := v1.Group("/inventories")
	{
		inventories.GET("", c.InventoryHandler.ListInventories)
		inventories.GET("/record", c.InventoryHandler.GetInventory)
		inventories.POST("/adjust", c.InventoryHandler.AdjustStock)
		inventories.POST("/sell", c.InventoryHandler.SellStock)
		inventories.POST("/transfer", c.InventoryHandler.TransferStock)
	}

	v1.GET("/movements", c.InventoryHandler.ListMovements)
	v1.GET("/forecasts", c.ForecastHandler.GetForecast)
}

// ========================================
// LOCATION ROUTES
// ========================================
func setupLocationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	locations := v1.Group("/locations")
	{
		locations.POST("", c.LocationHandler.CreateLocation)
		locations.GET("", c.LocationHandler.ListLocations)
		locations.GET("/:id", c.LocationHandler.GetLocation)
		locations.PUT("/:id", c.LocationHandler.UpdateLocation)
	}
}

// ========================================
// ORDER ROUTES
// ========================================
func setupOrderRoutes(v1 *gin.RouterGroup, c *container.Container) {
	orders := v1.Group("/orders")
	{
		orders.POST("", c.OrderHandler.CreateOrder)
		orders.GET("", c.OrderHandler.ListOrders)
		orders.GET("/:id", c.OrderHandler.GetOrder)
		orders.PATCH("/:id/status", c.OrderHandler.UpdateOrderStatus)
		orders.GET("/:id/history", c.OrderHandler.GetOrderHistory)
		orders.GET("/:id/shipment", c.ShipmentHandler.GetShipmentByOrder)
	}
}

// ========================================
// SHIPMENT ROUTES
// ========================================
func setupShipmentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	shipments := v1.Group("/shipments")
	{
		shipments.POST("", c.ShipmentHandler.CreateShipment)
		shipments.GET("/:id", c.ShipmentHandler.GetShipment)
		shipments.PATCH("/:id/status", c.ShipmentHandler.UpdateShipmentStatus)
	}
}

// ========================================
// ALERT ROUTES
// ========================================
func setupAlertRoutes(v1 *gin.RouterGroup, c *container.Container) {
	alerts := v1.Group("/alerts")
	{
		alerts.GET("", c.AlertHandler.ListAlerts)
		alerts.GET("/:id", c.AlertHandler.GetAlert)
		alerts.POST("/:id/resolve", c.AlertHandler.ResolveAlert)
		alerts.POST("/evaluate", c.AlertHandler.EvaluateAlerts)
	}
}

// healthCheckHandler reports the health of the service and its backends.
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "unavailable"
		}
		redisStatus := "ok"
		if err := c.Redis.HealthCheck(checkCtx); err != nil {
			redisStatus = "unavailable"
		}

		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   dbStatus,
			"database": dbStatus,
			"redis":    redisStatus,
			"version":  c.Config.App.Version,
		})
	}
}
