package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/pkg/errno"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed maps a business error to the response envelope. The HTTP status is
// kept at 200 for business codes; transport-level codes reuse their value.
func Failed(c *gin.Context, err error) {
	code, message := errno.DecodeError(err)
	status := http.StatusOK
	if code >= 400 && code < 600 {
		status = code
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}
