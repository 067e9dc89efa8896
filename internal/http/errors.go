package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"course-market/internal/apperr"
)

type messageResponse struct {
	Message string `json:"message"`
}

// fail records err for the responder and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// errorResponder is the only place errors become responses. Handlers attach
// errors with fail and return; the last one wins.
func errorResponder(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr := apperr.From(err)

		if appErr.Kind == apperr.KindInternal {
			entry := logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
			if oopsErr, ok := oops.AsOops(err); ok {
				entry = entry.WithField("code", oopsErr.Code())
				for k, v := range oopsErr.Context() {
					entry = entry.WithField(k, v)
				}
			}
			entry.Error("request failed")
		} else {
			logger.WithFields(logrus.Fields{
				"kind":  appErr.Kind.String(),
				"cause": appErr.Err,
			}).Debug(appErr.Message)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.Kind.Status(), messageResponse{Message: appErr.Message})
	}
}

func recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithField("panic", recovered).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, messageResponse{Message: "Internal Server Error"})
	})
}
