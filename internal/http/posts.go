package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialboard/internal/domain"
)

func (h *Handler) dashboard(c *gin.Context) {
	posts, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard", page{Title: "Dashboard", Posts: posts})
}

func (h *Handler) createPost(c *gin.Context) {
	if _, err := h.posts.Create(c.Request.Context(), currentUserID(c), c.PostForm("content")); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := h.pathID(c, domain.ErrPostNotFound)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

type likeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// toggleLike answers JSON to clients that ask for it and redirects browsers back
// to the page they came from.
func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := h.pathID(c, domain.ErrPostNotFound)
	if !ok {
		return
	}
	state, err := h.posts.ToggleLike(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, likeResponse{Liked: state.Liked, Likes: state.Count})
		return
	}
	c.Redirect(http.StatusFound, backTo(c, "/dashboard"))
}

// backTo returns the local path of the Referer, or fallback when there is none.
func backTo(c *gin.Context, fallback string) string {
	ref, err := c.Request.URL.Parse(c.Request.Referer())
	if err != nil || c.Request.Referer() == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return fallback
	}
	if ref.Path == "" {
		return fallback
	}
	return ref.Path
}
