package model

import "time"

type CommentAuthor struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Comment is append-only: once attached to a post it is never edited or removed.
type Comment struct {
	Author    CommentAuthor `json:"user"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"timestamp"`
}
