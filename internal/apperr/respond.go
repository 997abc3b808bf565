package apperr

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Respond writes err as the JSON error body with the mapped status.
// Non-application errors surface as INTERNAL without leaking details.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = &Error{Kind: KindInternal, Message: "internal error", Err: err}
	}
	c.JSON(HTTPStatus(appErr), gin.H{
		"error": gin.H{
			"kind":    appErr.Kind,
			"message": appErr.Message,
		},
	})
}
