package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"socialboard/internal/observability"
	"socialboard/internal/service"
)

// Options configures cookies and uploads for the Handler.
type Options struct {
	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration
	// UploadsDir is served at /uploads when pictures are stored locally.
	UploadsDir string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	sessions service.SessionService
	social   service.SocialService
	posts    service.PostService
	logger   *logrus.Logger
	opts     Options
}

func NewHandler(
	users service.UserService,
	sessions service.SessionService,
	social service.SocialService,
	posts service.PostService,
	logger *logrus.Logger,
	opts Options,
) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return &Handler{
		users:    users,
		sessions: sessions,
		social:   social,
		posts:    posts,
		logger:   logger,
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.Use(observability.Middleware(), requestLogger(h.logger), h.loadUser())

	if h.opts.UploadsDir != "" {
		router.Static("/uploads", h.opts.UploadsDir)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	router.GET("/login", h.loginPage)
	router.POST("/login", h.login)
	router.GET("/signup", h.signupPage)
	router.POST("/signup", h.signup)
	router.GET("/logout", h.logout)
	router.GET("/user/:id", h.userProfile)

	auth := router.Group("/", h.requireUser())
	{
		auth.GET("/dashboard", h.dashboard)
		auth.POST("/posts", h.createPost)
		auth.POST("/posts/delete/:id", h.deletePost)
		auth.POST("/posts/like/:id", h.toggleLike)
		auth.GET("/profile", h.ownProfile)
		auth.POST("/update-profile", h.updateProfile)
		auth.POST("/upload-profile-picture", h.uploadProfilePicture)
		auth.POST("/follow/:id", h.follow)
		auth.POST("/unfollow/:id", h.unfollow)
	}
	return nil
}

func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	p.Viewer = currentUser(c)
	c.HTML(status, name, p)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pathID parses the :id parameter, answering 404 for anything that cannot name a record.
func (h *Handler) pathID(c *gin.Context, notFound error) (int64, bool) {
	id, ok := parseID(c)
	if !ok {
		h.fail(c, notFound)
		return 0, false
	}
	return id, true
}
