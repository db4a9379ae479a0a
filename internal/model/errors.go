package model

import "errors"

// ErrPostNotFound is returned by feed-store operations given an unknown post id.
var ErrPostNotFound = errors.New("post not found")
