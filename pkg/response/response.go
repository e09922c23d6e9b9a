package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every data endpoint. The login and refresh flows use their own
// success/message envelope instead.
type Response struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

func Success(statusCode int, data any) Response {
	return Response{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Data:       data,
	}
}

func Error(statusCode int, err string) Response {
	return Response{
		Status:     StatusError,
		StatusCode: statusCode,
		Error:      err,
	}
}

// Abort stops the handler chain with an error envelope.
func Abort(c *gin.Context, statusCode int, err string) {
	c.AbortWithStatusJSON(statusCode, Error(statusCode, err))
}
