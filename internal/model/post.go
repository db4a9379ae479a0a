package model

import (
	"time"

	"github.com/google/uuid"
)

// Author is a denormalized snapshot of whoever created a post. It is copied
// into the post at creation time and never resolves back to a live profile.
type Author struct {
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar"`
	Location string   `json:"location"`
	Badges   []string `json:"badges"`
}

type Post struct {
	ID     uuid.UUID `json:"id"`
	Author Author    `json:"user"`
	Text   string    `json:"text"`
	// Media holds served upload paths ("/uploads/<ref>") in upload order.
	Media     []string  `json:"media"`
	Likes     int64     `json:"likes"`
	Comments  []Comment `json:"comments"`
	Shares    int64     `json:"shares"`
	CreatedAt time.Time `json:"timestamp"`
	// Seq breaks feed-ordering ties between posts sharing a CreatedAt.
	Seq int64 `json:"-"`
}
