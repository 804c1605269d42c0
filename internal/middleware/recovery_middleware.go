package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/internal/errors"
)

// Recovery turns a panic into a 500 envelope. The panic value is only shown
// to the caller in development. The stack goes to the request logger instead
// of gin's error writer.
func Recovery(exposeDetails bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		log := GetLoggerFromContext(c)
		log.Error("Panic recovered", fmt.Errorf("%v", rec), map[string]interface{}{
			"stack": string(debug.Stack()),
		})

		message := ""
		if exposeDetails {
			message = fmt.Sprint(rec)
		}
		errors.InternalError(c, message)
	})
}
