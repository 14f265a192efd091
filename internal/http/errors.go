package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialboard/internal/domain"
)

// fail maps a service error onto the response: unauthenticated requests go to the
// login page, known categories get a plain-text status, everything else is a 500
// whose detail only reaches the log.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, domain.ErrNotFound):
		c.String(http.StatusNotFound, publicMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrForbidden):
		c.String(http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrValidation):
		c.String(http.StatusBadRequest, publicMessage(err, domain.ErrValidation))
	default:
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Errorf("request failed: %v", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	c.Abort()
}

func publicMessage(err, kind error) string {
	msg := strings.TrimPrefix(err.Error(), kind.Error()+": ")
	if msg == "" {
		return kind.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
