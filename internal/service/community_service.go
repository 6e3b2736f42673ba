package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
	"github.com/ignatzorin/smokefree-backend/internal/validation"
)

// CommunityStore описывает зависимости CommunityService от хранилища.
type CommunityStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, postID, authorID uuid.UUID) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uuid.UUID, limit, offset int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, commentID, authorID uuid.UUID) error
}

// CommunityService управляет записями и комментариями сообщества.
type CommunityService struct {
	repo CommunityStore
	hub  Broadcaster
}

// PostInput содержит данные записи.
type PostInput struct {
	Title   string
	Body    string
	PhotoID *string
}

// NewCommunityService создаёт сервис сообщества.
func NewCommunityService(repo CommunityStore, hub Broadcaster) *CommunityService {
	return &CommunityService{repo: repo, hub: hub}
}

// CreatePost публикует запись.
func (s *CommunityService) CreatePost(ctx context.Context, authorID uuid.UUID, in PostInput) (*models.Post, error) {
	if err := validation.ValidateLength("заголовок", in.Title, validation.MinPostTitleLength, validation.MaxPostTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("текст", in.Body, validation.MinPostBodyLength, validation.MaxPostBodyLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	post := &models.Post{
		AuthorID: authorID,
		Title:    in.Title,
		Body:     in.Body,
	}
	if in.PhotoID != nil && *in.PhotoID != "" {
		photoID, err := uuid.Parse(*in.PhotoID)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор фото")
		}
		post.PhotoID = &photoID
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// GetPost возвращает запись с комментариями.
func (s *CommunityService) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, []models.Comment, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, nil, apperror.ErrPostNotFound
		}
		return nil, nil, err
	}

	comments, err := s.repo.ListComments(ctx, postID, 100, 0)
	if err != nil {
		return nil, nil, err
	}

	return post, comments, nil
}

// ListPosts возвращает ленту записей.
func (s *CommunityService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPosts(ctx, limit, offset)
}

// UpdatePost редактирует запись. Чужую запись редактировать нельзя.
func (s *CommunityService) UpdatePost(ctx context.Context, authorID, postID uuid.UUID, title, body string) (*models.Post, error) {
	if err := validation.ValidateLength("заголовок", title, validation.MinPostTitleLength, validation.MaxPostTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("текст", body, validation.MinPostBodyLength, validation.MaxPostBodyLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, apperror.ErrForbidden
	}

	post.Title = title
	post.Body = body

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost удаляет запись автора.
func (s *CommunityService) DeletePost(ctx context.Context, authorID, postID uuid.UUID) error {
	if err := s.repo.DeletePost(ctx, postID, authorID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return apperror.ErrPostNotFound
		}
		return err
	}
	return nil
}

// CreateComment добавляет комментарий и уведомляет автора записи.
func (s *CommunityService) CreateComment(ctx context.Context, authorID, postID uuid.UUID, body string) (*models.Comment, error) {
	if err := validation.ValidateLength("комментарий", body, 1, validation.MaxCommentLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	// Свои комментарии автору записи не анонсируем
	if s.hub != nil && post.AuthorID != authorID {
		if err := s.hub.BroadcastToUser(post.AuthorID, "post_commented", comment); err != nil {
			logger.Log.WithField("post_id", postID).WithError(err).Warn("community service: не удалось отправить уведомление")
		}
	}

	return comment, nil
}

// DeleteComment удаляет комментарий автора.
func (s *CommunityService) DeleteComment(ctx context.Context, authorID, commentID uuid.UUID) error {
	if err := s.repo.DeleteComment(ctx, commentID, authorID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "комментарий не найден")
		}
		return err
	}
	return nil
}
