package handler

import (
	"errors"
	"net/http"

	"github.com/farmlink/community-service/internal/dto"
	"github.com/farmlink/community-service/internal/model"
	"github.com/farmlink/community-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type Handler struct {
	services *service.Service
}

func New(services *service.Service) *Handler {
	return &Handler{
		services: services,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{viper.GetString("client.origin")},
		AllowMethods:     []string{"POST", "GET"},
		AllowCredentials: true,
	}))

	posts := r.Group("/posts")
	{
		posts.GET("", h.postsGet)
		posts.POST("", h.postsCreate)

		post := posts.Group("/:postID")
		{
			post.GET("", h.postsGetByID)
			post.POST("/like", h.postsLike)
			post.POST("/comment", h.postsComment)
			post.POST("/share", h.postsShare)
		}
	}

	r.GET("/uploads/:ref", h.uploadsGet)
	r.GET("/health", h.health)

	return r
}

// respondError maps service failures onto the response taxonomy: unknown post
// id → 404, rejected input → 400, anything else → 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmptyCommentText):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrMediaNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, dto.NewBasicResponse(false, err.Error()))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "ok"))
}
