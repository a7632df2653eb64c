package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
)

// ErrorBody is the error contract consumed by the board pages.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends data as the response body without any envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Error converts err to its typed form, records it on the context for the
// access log and writes {"error": message}.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.AbortWithStatusJSON(appErr.Status, ErrorBody{Error: appErr.Message})
}
