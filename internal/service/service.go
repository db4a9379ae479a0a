package service

import (
	"context"

	"github.com/farmlink/community-service/internal/dto"
	"github.com/farmlink/community-service/internal/model"
	"github.com/farmlink/community-service/internal/repository"
	"github.com/farmlink/community-service/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Post interface {
	Create(ctx context.Context, input dto.CreatePostRequest) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Like(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Share(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Comment(ctx context.Context, id uuid.UUID, input dto.CreateCommentRequest) (*model.Post, error)
	Media(ref string) ([]byte, error)
}

type Service struct {
	Post
}

func New(logger *zap.Logger, repo *repository.Repository, blobs storage.BlobStore) *Service {
	return &Service{
		Post: newPostService(logger, repo, blobs),
	}
}
