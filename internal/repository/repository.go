package repository

import (
	"context"

	"github.com/farmlink/community-service/internal/model"
	"github.com/farmlink/community-service/internal/repository/postgres"
	"github.com/farmlink/community-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Post is the feed store of record. Implementations must apply IncrLikes,
// IncrShares and AddComment atomically per post id: N concurrent calls against
// the same post accumulate exactly N effects. Unknown ids yield
// model.ErrPostNotFound.
type Post interface {
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	FindAll(ctx context.Context) ([]*model.Post, error)
	IncrLikes(ctx context.Context, id uuid.UUID) (*model.Post, error)
	IncrShares(ctx context.Context, id uuid.UUID) (*model.Post, error)
	AddComment(ctx context.Context, id uuid.UUID, comment model.Comment) (*model.Post, error)
}

type Repository struct {
	Posts Post
	Redis *redisrepo.RedisRepository
}

func New(db *pgxpool.Pool, rdb *redis.Client) *Repository {
	return &Repository{
		Posts: postgres.NewPostRepo(db),
		Redis: redisrepo.New(rdb),
	}
}
