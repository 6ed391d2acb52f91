package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"order_backend/internal/application/admin"
	"order_backend/pkg/logger"
)

type AdminGate interface {
	ValidateAccess(ctx context.Context, handle, secret string) (admin.AccessResult, error)
	CheckAdmin(ctx context.Context, handle string) (admin.AdminStatus, error)
}

type validateAccessRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AdminHandler struct {
	gate AdminGate
	log  logger.Logger
}

func NewAdminHandler(gate AdminGate, log logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AdminHandler{gate: gate, log: log}
}

func (h *AdminHandler) ValidateAccess(c *gin.Context) {
	var req validateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.gate.ValidateAccess(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !res.Granted {
		status := http.StatusForbidden
		if errors.Is(res.Reason, admin.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"access": false, "error": res.Reason.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access": true,
		"handle": res.Handle,
		"name":   res.Name,
	})
}

func (h *AdminHandler) CheckAdmin(c *gin.Context) {
	st, err := h.gate.CheckAdmin(c.Request.Context(), c.Param("handle"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"is_admin": st.IsAdmin,
		"handle":   st.Handle,
		"name":     st.Name,
	})
}
