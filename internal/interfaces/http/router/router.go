package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"order_backend/internal/interfaces/http/handler"
	"order_backend/internal/interfaces/http/middleware"
)

type Handlers struct {
	Orders *handler.OrderHandler
	Admin  *handler.AdminHandler
}

// RegisterRoutes mounts /healthz unauthenticated and everything under /api
// behind the API key check.
func RegisterRoutes(r *gin.Engine, h Handlers, apiKey string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.APIKey(apiKey))
	{
		api.POST("/orders", h.Orders.CreateOrder)
		api.GET("/orders", h.Orders.ListOrders)
		api.GET("/orders/:id", h.Orders.GetOrder)
		api.PUT("/orders/:id/status", h.Orders.UpdateStatus)
	}

	if h.Admin != nil {
		adm := api.Group("/admin")
		adm.POST("/validate-access", h.Admin.ValidateAccess)
		adm.GET("/check-admin/:handle", h.Admin.CheckAdmin)
	}
}
