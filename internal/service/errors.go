package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is matched by every error returned for an unknown record id.
	ErrNotFound = errors.New("not found")
	// ErrBadCredentials is returned by UserService.Authenticate.
	ErrBadCredentials = errors.New("bad credentials")
)

// NotFoundError reports a lookup of an id that has no record.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("invalid %s id: %d", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// clock is swapped in tests.
type clock func() time.Time

func (c clock) now() *time.Time {
	t := c().UTC().Truncate(time.Second)
	return &t
}
