package handler

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/farmlink/community-service/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) postsGet(c *gin.Context) {
	posts, err := h.services.Post.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *Handler) postsGetByID(c *gin.Context) {
	postID, err := h.postIDParam(c)
	if err != nil {
		return
	}

	post, err := h.services.Post.FindByID(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) postsCreate(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidMultipart.Error()))
		return
	}

	input := dto.CreatePostRequest{
		Text:    c.PostForm("text"),
		RawUser: c.PostForm("user"),
		Media:   form.File["media"],
	}

	createdPost, err := h.services.Post.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdPost)
}

func (h *Handler) postsLike(c *gin.Context) {
	postID, err := h.postIDParam(c)
	if err != nil {
		return
	}

	post, err := h.services.Post.Like(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) postsComment(c *gin.Context) {
	postID, err := h.postIDParam(c)
	if err != nil {
		return
	}

	var input dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	post, err := h.services.Post.Comment(c.Request.Context(), postID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) postsShare(c *gin.Context) {
	postID, err := h.postIDParam(c)
	if err != nil {
		return
	}

	post, err := h.services.Post.Share(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) uploadsGet(c *gin.Context) {
	ref := c.Param("ref")

	data, err := h.services.Post.Media(ref)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Data(http.StatusOK, contentType, data)
}

// postIDParam parses the :postID path segment. An id that is not even a UUID
// cannot name an existing post, so it gets the same 404 as an unknown one.
func (h *Handler) postIDParam(c *gin.Context) (uuid.UUID, error) {
	postIDString := strings.TrimSpace(c.Param("postID"))
	postID, err := uuid.Parse(postIDString)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NewBasicResponse(false, errInvalidPostID.Error()))
		return uuid.Nil, err
	}

	return postID, nil
}
