package dto

import "encoding/json"

type CreateCommentRequest struct {
	// User is decoded leniently by the service; a malformed value falls back
	// to the anonymous author instead of rejecting the comment.
	User json.RawMessage `json:"user"`
	Text string          `json:"text"`
}
