package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/repository/common"
)

// Ошибки сообщества.
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// CommunityRepository отвечает за таблицы posts и comments.
type CommunityRepository struct {
	db *sqlx.DB
}

// NewCommunityRepository создаёт экземпляр репозитория.
func NewCommunityRepository(db *sqlx.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// CreatePost создаёт запись.
func (r *CommunityRepository) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, title, body, photo_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		post.AuthorID, post.Title, post.Body, post.PhotoID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return fmt.Errorf("community repository: create post %w", err)
	}

	return nil
}

// GetPostByID возвращает запись по идентификатору.
func (r *CommunityRepository) GetPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return common.GetByField[models.Post](ctx, r.db, "posts", "id", id, ErrPostNotFound)
}

// ListPosts возвращает ленту записей с пагинацией.
func (r *CommunityRepository) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	query := `SELECT * FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &posts, query, limit, offset); err != nil {
		return nil, fmt.Errorf("community repository: list posts %w", err)
	}

	return posts, nil
}

// UpdatePost сохраняет изменения записи, только для её автора.
func (r *CommunityRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1, body = $2, photo_id = $3, updated_at = NOW()
		WHERE id = $4 AND author_id = $5
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		post.Title, post.Body, post.PhotoID, post.ID, post.AuthorID,
	).Scan(&post.UpdatedAt); err != nil {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost удаляет запись автора вместе с комментариями (каскад в схеме).
func (r *CommunityRepository) DeletePost(ctx context.Context, postID, authorID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, postID, authorID)
	if err != nil {
		return fmt.Errorf("community repository: delete post %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("community repository: delete post rows affected %w", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// CreateComment добавляет комментарий к записи.
func (r *CommunityRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		comment.PostID, comment.AuthorID, comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		return fmt.Errorf("community repository: create comment %w", err)
	}

	return nil
}

// ListComments возвращает комментарии записи по порядку создания.
func (r *CommunityRepository) ListComments(ctx context.Context, postID uuid.UUID, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	query := `
		SELECT * FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &comments, query, postID, limit, offset); err != nil {
		return nil, fmt.Errorf("community repository: list comments %w", err)
	}

	return comments, nil
}

// DeleteComment удаляет комментарий автора.
func (r *CommunityRepository) DeleteComment(ctx context.Context, commentID, authorID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND author_id = $2`, commentID, authorID)
	if err != nil {
		return fmt.Errorf("community repository: delete comment %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("community repository: delete comment rows affected %w", err)
	}
	if affected == 0 {
		return ErrCommentNotFound
	}

	return nil
}
