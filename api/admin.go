package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AdminUseCase interface {
	Save(ctx context.Context) error
	Backup(ctx context.Context) error
}

type AdminHandler struct {
	service AdminUseCase
}

func NewAdminHandler(service AdminUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/snapshot", h.snapshot)
	router.POST("/backup", h.backup)
}

func (h *AdminHandler) snapshot(c *gin.Context) {
	if err := h.service.Save(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *AdminHandler) backup(c *gin.Context) {
	if err := h.service.Backup(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backup": true})
}
