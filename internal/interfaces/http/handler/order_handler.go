package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	app "order_backend/internal/application/order"
	domain "order_backend/internal/domain/order"
	"order_backend/pkg/logger"
)

type OrderService interface {
	CreateOrder(ctx context.Context, cmd app.CreateOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, skip, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, rawStatus string) (*domain.Order, error)
}

type PageLimits struct {
	Default int
	Max     int
}

type OrderHandler struct {
	svc    OrderService
	limits PageLimits
	log    logger.Logger
}

func NewOrderHandler(svc OrderService, limits PageLimits, log logger.Logger) *OrderHandler {
	if limits.Default <= 0 {
		limits.Default = 50
	}
	if limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderHandler{svc: svc, limits: limits, log: log}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := app.CreateOrderCommand{
		CustomerID:           req.CustomerID,
		PaymentMethod:        req.PaymentMethod,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryInstructions: req.DeliveryInstructions,
		Items:                make([]app.CreateOrderItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		qty := 1
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		cmd.Items = append(cmd.Items, app.CreateOrderItem{
			ProductID: it.ProductID,
			Quantity:  qty,
			Notes:     it.CustomizationNotes,
		})
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		if isBusinessError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "could not create order",
				"reason": err.Error(),
			})
			return
		}
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := h.limits.Default
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit > h.limits.Max {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must not exceed " + strconv.Itoa(h.limits.Max)})
		return
	}

	orders, err := h.svc.ListOrders(c.Request.Context(), q.Skip, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus reads the new status from the "status" query parameter or,
// when absent, from a JSON body.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status == "" && c.Request.ContentLength != 0 {
		var body updateStatusRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = body.Status
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be a positive integer"})
		return 0, false
	}
	return id, true
}
