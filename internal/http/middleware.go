package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialboard/internal/domain"
)

const currentUserKey = "currentUser"

// loadUser resolves the session cookie into the current user, if any. It never
// rejects a request; anonymous requests simply carry no user.
func (h *Handler) loadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.opts.CookieName)
		if err == nil && token != "" {
			if user := h.sessions.CurrentUser(c.Request.Context(), token); user != nil {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// requireUser redirects anonymous requests to the login page.
func (h *Handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			h.fail(c, domain.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func currentUserID(c *gin.Context) int64 {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"user_id": currentUserID(c),
		}).Info("request")
	}
}
