// Package memory holds an in-process feed store with the same atomicity
// contract as the postgres one. It backs tests and local runs without a
// database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/farmlink/community-service/internal/model"
	"github.com/google/uuid"
)

type entry struct {
	mu   sync.Mutex
	post model.Post
}

type PostRepo struct {
	mu      sync.RWMutex
	posts   map[uuid.UUID]*entry
	lastSeq int64
}

func NewPostRepo() *PostRepo {
	return &PostRepo{
		posts: make(map[uuid.UUID]*entry),
	}
}

func (r *PostRepo) Create(_ context.Context, post model.Post) (*model.Post, error) {
	post.Likes = 0
	post.Shares = 0
	post.Comments = []model.Comment{}
	post.CreatedAt = time.Now()

	r.mu.Lock()
	r.lastSeq++
	post.Seq = r.lastSeq
	r.posts[post.ID] = &entry{post: post}
	r.mu.Unlock()

	return clone(&post), nil
}

func (r *PostRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return clone(&e.post), nil
}

func (r *PostRepo) FindAll(_ context.Context) ([]*model.Post, error) {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.posts))
	for _, e := range r.posts {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	posts := make([]*model.Post, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		posts = append(posts, clone(&e.post))
		e.mu.Unlock()
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].Seq > posts[j].Seq
	})

	return posts, nil
}

func (r *PostRepo) IncrLikes(_ context.Context, id uuid.UUID) (*model.Post, error) {
	return r.mutate(id, func(p *model.Post) {
		p.Likes++
	})
}

func (r *PostRepo) IncrShares(_ context.Context, id uuid.UUID) (*model.Post, error) {
	return r.mutate(id, func(p *model.Post) {
		p.Shares++
	})
}

func (r *PostRepo) AddComment(_ context.Context, id uuid.UUID, comment model.Comment) (*model.Post, error) {
	return r.mutate(id, func(p *model.Post) {
		comment.CreatedAt = time.Now()
		p.Comments = append(p.Comments, comment)
	})
}

// mutate applies fn under the post's own lock; unrelated posts never contend.
func (r *PostRepo) mutate(id uuid.UUID, fn func(*model.Post)) (*model.Post, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.post)
	return clone(&e.post), nil
}

func (r *PostRepo) entry(id uuid.UUID) (*entry, error) {
	r.mu.RLock()
	e, exists := r.posts[id]
	r.mu.RUnlock()
	if !exists {
		return nil, model.ErrPostNotFound
	}
	return e, nil
}

// clone deep-copies a post so callers never share slices with the store.
func clone(p *model.Post) *model.Post {
	c := *p
	c.Author.Badges = append([]string{}, p.Author.Badges...)
	c.Media = append([]string{}, p.Media...)
	c.Comments = append([]model.Comment{}, p.Comments...)
	return &c
}
