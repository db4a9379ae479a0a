package service

import "errors"

var (
	ErrInternal         = errors.New("internal server error")
	ErrEmptyCommentText = errors.New("comment text is required")
	ErrMediaNotFound    = errors.New("media not found")
)
