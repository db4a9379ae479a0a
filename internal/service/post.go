package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/farmlink/community-service/internal/dto"
	"github.com/farmlink/community-service/internal/model"
	"github.com/farmlink/community-service/internal/repository"
	"github.com/farmlink/community-service/internal/repository/redisrepo"
	"github.com/farmlink/community-service/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	placeholderAvatar = "/placeholder.svg"
	uploadsBasePath   = "/uploads/"

	feedCacheTTL = time.Minute
	postCacheTTL = time.Hour
)

type postService struct {
	logger *zap.Logger
	repo   *repository.Repository
	blobs  storage.BlobStore
	guard  *cacheGuard
}

func newPostService(logger *zap.Logger, repo *repository.Repository, blobs storage.BlobStore) Post {
	return &postService{
		logger: logger,
		repo:   repo,
		blobs:  blobs,
		guard:  newCacheGuard(),
	}
}

// Create persists every attachment, then the post. Attachments are
// all-or-nothing: the first failed write aborts the submission, already
// stored blobs are removed and no post is recorded.
func (s *postService) Create(ctx context.Context, input dto.CreatePostRequest) (*model.Post, error) {
	author := parseAuthor(input.RawUser)

	media := []string{}
	var refs []string
	for _, fh := range input.Media {
		data, err := readAttachment(fh)
		if err != nil {
			s.logger.Sugar().Errorf("failed to read attachment %q: %s", fh.Filename, err.Error())
			s.removeBlobs(refs)
			return nil, ErrInternal
		}

		ref, err := s.blobs.Put(data, fh.Filename)
		if err != nil {
			s.logger.Sugar().Errorf("failed to store attachment %q: %s", fh.Filename, err.Error())
			s.removeBlobs(refs)
			return nil, ErrInternal
		}

		refs = append(refs, ref)
		media = append(media, uploadsBasePath+ref)
	}

	post := model.Post{
		ID:     uuid.New(),
		Author: author,
		Text:   input.Text,
		Media:  media,
	}

	created, err := s.repo.Posts.Create(ctx, post)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create post: %s", err.Error())
		s.removeBlobs(refs)
		return nil, ErrInternal
	}

	s.invalidate(ctx, redisrepo.FeedKey())

	return created, nil
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	c := s.cache()
	if c != nil {
		cached, err := redisrepo.GetMany[model.Post](c, ctx, redisrepo.FeedKey())
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			s.logger.Sugar().Errorf("failed to get feed from redis: %s", err.Error())
		}
	}

	// The generation must be captured before the store read: a write that
	// commits afterwards bumps it, and the refill below backs off instead of
	// caching the pre-write feed.
	var gen uint64
	if c != nil {
		gen = s.guard.generation(redisrepo.FeedKey())
	}

	posts, err := s.repo.Posts.FindAll(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to list posts: %s", err.Error())
		return nil, ErrInternal
	}

	if c != nil {
		s.guard.fill(redisrepo.FeedKey(), gen, func() {
			if err := c.SetJSON(ctx, redisrepo.FeedKey(), posts, feedCacheTTL); err != nil {
				s.logger.Sugar().Errorf("failed to set feed in redis: %s", err.Error())
			}
		})
	}

	return posts, nil
}

func (s *postService) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	c := s.cache()
	key := redisrepo.PostKey(id.String())
	if c != nil {
		cached, err := redisrepo.Get[model.Post](c, ctx, key)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil && err != redis.Nil {
			s.logger.Sugar().Errorf("failed to get post(%s) from redis: %s", id.String(), err.Error())
		}
	}

	var gen uint64
	if c != nil {
		gen = s.guard.generation(key)
	}

	post, err := s.repo.Posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to find post(%s): %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	if c != nil {
		s.guard.fill(key, gen, func() {
			if err := c.SetJSON(ctx, key, post, postCacheTTL); err != nil {
				s.logger.Sugar().Errorf("failed to set post(%s) in redis: %s", id.String(), err.Error())
			}
		})
	}

	return post, nil
}

func (s *postService) Like(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return s.applyMutation(ctx, id, s.repo.Posts.IncrLikes)
}

func (s *postService) Share(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return s.applyMutation(ctx, id, s.repo.Posts.IncrShares)
}

func (s *postService) Comment(ctx context.Context, id uuid.UUID, input dto.CreateCommentRequest) (*model.Post, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrEmptyCommentText
	}

	comment := model.Comment{
		Author: parseCommentAuthor(input.User),
		Text:   input.Text,
	}

	return s.applyMutation(ctx, id, func(ctx context.Context, id uuid.UUID) (*model.Post, error) {
		return s.repo.Posts.AddComment(ctx, id, comment)
	})
}

func (s *postService) applyMutation(ctx context.Context, id uuid.UUID, op func(context.Context, uuid.UUID) (*model.Post, error)) (*model.Post, error) {
	post, err := op(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to mutate post(%s): %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	s.invalidate(ctx, redisrepo.FeedKey(), redisrepo.PostKey(id.String()))

	return post, nil
}

func (s *postService) Media(ref string) ([]byte, error) {
	data, err := s.blobs.Get(ref)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrMediaNotFound
		}
		s.logger.Sugar().Errorf("failed to read blob %q: %s", ref, err.Error())
		return nil, ErrInternal
	}

	return data, nil
}

func (s *postService) cache() redisrepo.Default {
	if s.repo.Redis == nil {
		return nil
	}
	return s.repo.Redis.Default
}

func (s *postService) invalidate(ctx context.Context, keys ...string) {
	c := s.cache()
	if c == nil {
		return
	}
	for _, key := range keys {
		s.guard.invalidate(key, func() {
			if err := c.Del(ctx, key).Err(); err != nil {
				s.logger.Sugar().Errorf("failed to invalidate cache key %q: %s", key, err.Error())
			}
		})
	}
}

func (s *postService) removeBlobs(refs []string) {
	for _, ref := range refs {
		if err := s.blobs.Remove(ref); err != nil {
			s.logger.Sugar().Errorf("failed to remove blob %q: %s", ref, err.Error())
		}
	}
}

func readAttachment(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// parseAuthor decodes the submitted identity. Anything unparsable or missing
// a name falls back to the anonymous author; a bad identity never fails post
// creation.
func parseAuthor(raw string) model.Author {
	var author model.Author
	if err := json.Unmarshal([]byte(raw), &author); err != nil || strings.TrimSpace(author.Name) == "" {
		return anonymousAuthor()
	}

	if author.Avatar == "" {
		author.Avatar = placeholderAvatar
	}
	if author.Badges == nil {
		author.Badges = []string{}
	}

	return author
}

func parseCommentAuthor(raw json.RawMessage) model.CommentAuthor {
	var author model.CommentAuthor
	if len(raw) == 0 || json.Unmarshal(raw, &author) != nil || strings.TrimSpace(author.Name) == "" {
		return model.CommentAuthor{Name: "Anonymous", Avatar: placeholderAvatar}
	}

	if author.Avatar == "" {
		author.Avatar = placeholderAvatar
	}

	return author
}

func anonymousAuthor() model.Author {
	return model.Author{
		Name:   "Anonymous",
		Avatar: placeholderAvatar,
		Badges: []string{},
	}
}
