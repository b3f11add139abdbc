package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores and services when a row does not exist.
var ErrNotFound = errors.New("not found")

type Project struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Task struct {
	ID        int64
	ProjectID int64
	Title     string
	Content   string
	Done      bool
	CreatedAt time.Time
}

type Item struct {
	ID   int64
	Data string
}

// Object is the metadata of a stored file. The bytes live in a blob store
// under Name.
type Object struct {
	Name      string
	Size      int64
	ShortCode string
	CreatedAt time.Time
}
