package storage

import "errors"

// ErrNotFound is returned when a requested user or rank entry does not
// exist. Store implementations translate their backend-specific miss (for
// example sql.ErrNoRows) into this sentinel.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a write collides with an existing record,
// such as a duplicate username.
var ErrAlreadyExists = errors.New("already exists")
