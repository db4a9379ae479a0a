package dto

import "time"

// BasicResponse is the uniform status envelope: every rejected request
// (bad input, unknown post, storage failure) carries one, as does the
// health probe. Successful feed operations return the post payload instead.
type BasicResponse struct {
	Ok        bool      `json:"ok"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBasicResponse(ok bool, details string) BasicResponse {
	return BasicResponse{
		Ok:        ok,
		Details:   details,
		Timestamp: time.Now(),
	}
}
