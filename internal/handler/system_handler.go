package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the unauthenticated service routes.
type SystemHandler struct {
	projectName string
}

func NewSystemHandler(projectName string) *SystemHandler {
	return &SystemHandler{projectName: projectName}
}

func (h *SystemHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
}

// Root greets the caller
// @Summary      Welcome message
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the " + h.projectName + "!"})
}

// Health reports liveness
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
