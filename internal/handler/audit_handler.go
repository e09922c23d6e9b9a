package handler

import (
	"net/http"

	"accessapi/internal/auth"
	"accessapi/internal/middleware"
	"accessapi/internal/service"
	"accessapi/pkg/pagination"
	"accessapi/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	tokens       *auth.TokenService
}

func NewAuditHandler(auditService service.AuditService, tokens *auth.TokenService) *AuditHandler {
	return &AuditHandler{auditService: auditService, tokens: tokens}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireAuth(h.tokens))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs returns one page of the audit trail, newest first
// @Summary      Get audit logs
// @Description  Registrations, role assignments and seed runs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page[service.AuditLogResponse]}
// @Failure      401    {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err, "Failed to retrieve audit logs")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(logs, total, p)))
}
