package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/farmlink/community-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepo stores posts and their comments in postgres. Engagement mutations
// are single statements, so their atomicity is the database's row-level
// atomicity; no in-process locking is involved.
type PostRepo struct {
	db *pgxpool.Pool
}

func NewPostRepo(db *pgxpool.Pool) *PostRepo {
	return &PostRepo{
		db: db,
	}
}

func (r *PostRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	post.Likes = 0
	post.Shares = 0
	post.Comments = []model.Comment{}
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO posts (id, author_name, author_avatar, author_location, author_badges, text, media)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq, created_at`,
		post.ID,
		post.Author.Name,
		post.Author.Avatar,
		post.Author.Location,
		post.Author.Badges,
		post.Text,
		post.Media,
	).Scan(&post.Seq, &post.CreatedAt); err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *PostRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	posts, err := r.queryPosts(ctx, "WHERE p.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, model.ErrPostNotFound
	}

	return posts[0], nil
}

func (r *PostRepo) FindAll(ctx context.Context) ([]*model.Post, error) {
	return r.queryPosts(ctx, "")
}

func (r *PostRepo) IncrLikes(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return r.incrCounter(ctx, id, "likes")
}

func (r *PostRepo) IncrShares(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return r.incrCounter(ctx, id, "shares")
}

func (r *PostRepo) incrCounter(ctx context.Context, id uuid.UUID, column string) (*model.Post, error) {
	// column is one of "likes"/"shares", never user input.
	var updated uuid.UUID
	if err := r.db.QueryRow(
		ctx,
		"UPDATE posts SET "+column+" = "+column+" + 1 WHERE id = $1 RETURNING id",
		id,
	).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, err
	}

	return r.FindByID(ctx, id)
}

func (r *PostRepo) AddComment(ctx context.Context, id uuid.UUID, comment model.Comment) (*model.Post, error) {
	// INSERT..SELECT keeps the existence check and the append in one
	// statement, so a comment can never land on a missing post.
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO comments (post_id, author_name, author_avatar, text)
		SELECT p.id, $2, $3, $4 FROM posts p WHERE p.id = $1
		RETURNING created_at`,
		id,
		comment.Author.Name,
		comment.Author.Avatar,
		comment.Text,
	).Scan(&comment.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, err
	}

	return r.FindByID(ctx, id)
}

func (r *PostRepo) queryPosts(ctx context.Context, where string, args ...interface{}) ([]*model.Post, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
		p.id, p.author_name, p.author_avatar, p.author_location, p.author_badges,
		p.text, p.media, p.likes, p.shares, p.created_at, p.seq,
		c.author_name, c.author_avatar, c.text, c.created_at
		FROM posts p
		LEFT JOIN comments c ON c.post_id = p.id
		`+where+`
		ORDER BY p.created_at DESC, p.seq DESC, c.id ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postMap := make(map[uuid.UUID]*model.Post)
	ordered := []*model.Post{}
	for rows.Next() {
		var (
			id             uuid.UUID
			authorName     string
			authorAvatar   string
			authorLocation string
			authorBadges   []string
			text           string
			media          []string
			likes          int64
			shares         int64
			createdAt      time.Time
			seq            int64
			cAuthorName    *string
			cAuthorAvatar  *string
			cText          *string
			cCreatedAt     *time.Time
		)
		if err := rows.Scan(
			&id,
			&authorName,
			&authorAvatar,
			&authorLocation,
			&authorBadges,
			&text,
			&media,
			&likes,
			&shares,
			&createdAt,
			&seq,
			&cAuthorName,
			&cAuthorAvatar,
			&cText,
			&cCreatedAt,
		); err != nil {
			return nil, err
		}

		post, exists := postMap[id]
		if !exists {
			if authorBadges == nil {
				authorBadges = []string{}
			}
			if media == nil {
				media = []string{}
			}
			post = &model.Post{
				ID: id,
				Author: model.Author{
					Name:     authorName,
					Avatar:   authorAvatar,
					Location: authorLocation,
					Badges:   authorBadges,
				},
				Text:      text,
				Media:     media,
				Likes:     likes,
				Comments:  []model.Comment{},
				Shares:    shares,
				CreatedAt: createdAt,
				Seq:       seq,
			}
			postMap[id] = post
			ordered = append(ordered, post)
		}

		if cText != nil {
			post.Comments = append(post.Comments, model.Comment{
				Author: model.CommentAuthor{
					Name:   *cAuthorName,
					Avatar: *cAuthorAvatar,
				},
				Text:      *cText,
				CreatedAt: *cCreatedAt,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ordered, nil
}
