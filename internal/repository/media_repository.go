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

// ErrMediaNotFound возвращается, когда файл не найден.
var ErrMediaNotFound = errors.New("media file not found")

// MediaRepository отвечает за таблицу media_files.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository создаёт экземпляр репозитория.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет метаданные загруженного файла.
func (r *MediaRepository) Create(ctx context.Context, file *models.MediaFile) error {
	query := `
		INSERT INTO media_files (owner_id, file_name, file_path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		file.OwnerID, file.FileName, file.FilePath, file.MimeType, file.SizeBytes,
	).Scan(&file.ID, &file.CreatedAt); err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}

	return nil
}

// GetByID возвращает метаданные файла.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	return common.GetByField[models.MediaFile](ctx, r.db, "media_files", "id", id, ErrMediaNotFound)
}

// Delete удаляет метаданные файла владельца.
func (r *MediaRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("media repository: delete %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("media repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrMediaNotFound
	}

	return nil
}
