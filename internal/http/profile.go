package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"socialboard/internal/domain"
	"socialboard/internal/service"
)

const pictureField = "profilePicture"

func (h *Handler) ownProfile(c *gin.Context) {
	h.showProfile(c, currentUserID(c))
}

func (h *Handler) userProfile(c *gin.Context) {
	id, ok := h.pathID(c, domain.ErrUserNotFound)
	if !ok {
		return
	}
	h.showProfile(c, id)
}

func (h *Handler) showProfile(c *gin.Context, id int64) {
	profile, err := h.users.Profile(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	viewer := currentUser(c)
	h.render(c, http.StatusOK, "profile", page{
		Title:     profile.User.Username,
		Profile:   profile,
		Posts:     profile.Posts,
		Own:       viewer != nil && viewer.ID == id,
		Following: viewer != nil && viewer.IsFollowing(id),
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	picture, err := formUpload(c, pictureField)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeUpload(picture)

	in := service.UpdateProfileInput{Username: c.PostForm("username"), Picture: picture}
	if _, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), in); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) uploadProfilePicture(c *gin.Context) {
	picture, err := formUpload(c, pictureField)
	if err == nil && picture == nil {
		err = domain.ErrInvalidUpload
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeUpload(picture)

	if _, err := h.users.UploadPicture(c.Request.Context(), currentUserID(c), *picture); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) follow(c *gin.Context) {
	h.mutateGraph(c, h.social.Follow)
}

func (h *Handler) unfollow(c *gin.Context) {
	h.mutateGraph(c, h.social.Unfollow)
}

func (h *Handler) mutateGraph(c *gin.Context, op func(ctx context.Context, actorID, targetID int64) error) {
	id, ok := h.pathID(c, domain.ErrUserNotFound)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), currentUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/user/%d", id))
}

// formUpload opens the named multipart file. A request without that file yields
// a nil upload and no error.
func formUpload(c *gin.Context, field string) (*service.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpload, err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, nil
}

func closeUpload(u *service.Upload) {
	if u == nil {
		return
	}
	if closer, ok := u.Body.(io.Closer); ok {
		_ = closer.Close()
	}
}
