package handler

import (
	"errors"
	"net/http"
	"strconv"

	"accessapi/internal/logging"
	"accessapi/internal/service"
	"accessapi/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to status codes. Unexpected errors are logged and answered with
// the fixed fallback message.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrDuplicate):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	default:
		_ = c.Error(err)
		logging.FromContext(c.Request.Context()).Error("request_failed", "error", err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, fallback))
	}
}

// uintParam reads a positive integer path parameter, answering 400 when it is not one.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return uint(v), true
}
