package service

import "errors"

var (
	ErrDuplicateLogin     = errors.New("login is already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrUnauthenticated    = errors.New("login required")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidCategory    = errors.New("unknown board category")
	ErrInvalidRole        = errors.New("role must be USER or ADMIN")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrUploadsDisabled    = errors.New("image uploads are not configured")
	ErrUnsupportedImage   = errors.New("unsupported image type, allowed: JPEG, PNG, GIF, WebP")
	ErrEmptyMessage       = errors.New("message is empty")
)
