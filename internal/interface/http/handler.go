package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/authgate/authgate/pkg/apperr"
	"github.com/authgate/authgate/pkg/response"
)

// writeErr maps the error taxonomy onto HTTP statuses. Internal errors get
// a generic message; the underlying error is attached only outside
// production so nothing sensitive leaks.
func writeErr(c *gin.Context, err error, env string, logger *logrus.Logger) {
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case apperr.KindNotFound:
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case apperr.KindUnauthorized:
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).Error("internal error")
		}
		var detail interface{}
		if env != "production" {
			detail = err.Error()
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", detail)
	}
}
