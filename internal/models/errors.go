package models

import "errors"

var (
	ErrMalformedRequest = errors.New("malformed request uri")
	ErrUnmatchedRoute   = errors.New("no route for request")
	ErrPageNotFound     = errors.New("page not found")
	ErrBackendIO        = errors.New("backend io failure")
)
