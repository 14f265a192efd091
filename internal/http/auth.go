package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"socialboard/internal/domain"
)

var loginErrors = map[string]string{
	"invalid": "Invalid username or password",
}

func (h *Handler) loginPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login", page{
		Title: "Log in",
		Error: loginErrors[c.Query("error")],
	})
}

func (h *Handler) login(c *gin.Context) {
	token, _, err := h.sessions.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Redirect(http.StatusFound, "/login?error=invalid")
			return
		}
		h.fail(c, err)
		return
	}

	h.setSessionCookie(c, token, int(h.opts.SessionTTL.Seconds()))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) signupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signup", page{Title: "Sign up"})
}

func (h *Handler) signup(c *gin.Context) {
	_, err := h.users.Register(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.render(c, http.StatusBadRequest, "signup", page{
				Title: "Sign up",
				Error: publicMessage(err, domain.ErrValidation),
			})
			return
		}
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(h.opts.CookieName); err == nil && token != "" {
		if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warnf("logout: %v", err)
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", "", h.opts.CookieSecure, true)
}
