package handler

import (
	"time"

	domain "order_backend/internal/domain/order"
)

type createOrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	// Quantity defaults to 1 when omitted.
	Quantity           *int    `json:"quantity" binding:"omitempty,gt=0"`
	CustomizationNotes *string `json:"customization_notes"`
}

type createOrderRequest struct {
	CustomerID           int64                    `json:"customer_id" binding:"required,gt=0"`
	PaymentMethod        string                   `json:"payment_method" binding:"required"`
	Items                []createOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress      *string                  `json:"delivery_address"`
	DeliveryInstructions *string                  `json:"delivery_instructions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type listOrdersQuery struct {
	Skip  int  `form:"skip" binding:"min=0"`
	Limit *int `form:"limit" binding:"omitempty,min=1"`
}

type orderLineResponse struct {
	ID                 int64   `json:"id"`
	ProductID          int64   `json:"product_id"`
	Quantity           int     `json:"quantity"`
	UnitPrice          string  `json:"unit_price"`
	Subtotal           string  `json:"subtotal"`
	CollaboratorID     *int64  `json:"collaborator_id"`
	CustomizationNotes *string `json:"customization_notes"`
}

type orderResponse struct {
	ID                   int64               `json:"id"`
	CustomerID           int64               `json:"customer_id"`
	PaymentMethod        string              `json:"payment_method"`
	Status               string              `json:"status"`
	TotalAmount          string              `json:"total_amount"`
	DeliveryAddress      *string             `json:"delivery_address"`
	DeliveryInstructions *string             `json:"delivery_instructions"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	Items                []orderLineResponse `json:"items"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderLineResponse{
			ID:                 l.ID,
			ProductID:          l.ProductID,
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice.StringFixed(2),
			Subtotal:           l.Subtotal().StringFixed(2),
			CollaboratorID:     l.CollaboratorID,
			CustomizationNotes: l.CustomizationNotes,
		})
	}
	return orderResponse{
		ID:                   o.ID,
		CustomerID:           o.CustomerID,
		PaymentMethod:        o.PaymentMethod,
		Status:               o.Status.String(),
		TotalAmount:          o.TotalAmount.StringFixed(2),
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryInstructions: o.DeliveryInstructions,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Items:                items,
	}
}
