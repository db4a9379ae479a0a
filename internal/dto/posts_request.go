package dto

import "mime/multipart"

// CreatePostRequest carries a raw submission as received from the multipart
// form. RawUser stays unparsed here; the service normalizes it (anonymous
// fallback included).
type CreatePostRequest struct {
	Text    string
	RawUser string
	Media   []*multipart.FileHeader
}
