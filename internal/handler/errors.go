package handler

import "errors"

var (
	errInvalidPostID    = errors.New("invalid post ID")
	errInvalidMultipart = errors.New("request must be multipart/form-data")
)
