package models

import (
	"time"

	"github.com/google/uuid"
)

// Post - запись в сообществе.
type Post struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	AuthorID  uuid.UUID  `db:"author_id" json:"author_id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	PhotoID   *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Comment - комментарий к записи.
type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PostID    uuid.UUID `db:"post_id" json:"post_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
