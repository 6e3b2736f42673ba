package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
	"github.com/ignatzorin/smokefree-backend/internal/storage"
)

// Разрешённые типы файлов для загрузки
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MediaHandler управляет загрузкой и отдачей изображений.
type MediaHandler struct {
	repo    *repository.MediaRepository
	storage *storage.PhotoStorage
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(repo *repository.MediaRepository, storage *storage.PhotoStorage) *MediaHandler {
	return &MediaHandler{repo: repo, storage: storage}
}

// UploadPhoto обрабатывает POST /api/media/photos.
// Тип файла проверяется по магическим байтам, не по расширению.
func (h *MediaHandler) UploadPhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}

	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый формат файла. Разрешены: %s", strings.Join(listAllowedExtensions(), ", ")))
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s)", contentType))
		return
	}

	expectedExt := "." + kind.Extension
	// .jpg и .jpeg - это одно и то же
	if ext != expectedExt && !(ext == ".jpg" && expectedExt == ".jpeg") && !(ext == ".jpeg" && expectedExt == ".jpg") {
		common.RespondBadRequest(c, fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt))
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.RespondInternalError(c, "не удалось сбросить позицию файла")
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	media := &models.MediaFile{
		OwnerID:   userID,
		FileName:  file.Filename,
		FilePath:  filepath.ToSlash(relativePath),
		MimeType:  contentType,
		SizeBytes: size,
	}

	if err := h.repo.Create(c.Request.Context(), media); err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, media)
}

// GetPhoto обрабатывает GET /api/media/photos/:id.
func (h *MediaHandler) GetPhoto(c *gin.Context) {
	mediaID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	media, err := h.repo.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			common.RespondNotFound(c, "файл не найден")
			return
		}
		common.RespondInternalError(c, "")
		return
	}

	f, err := h.storage.Open(c.Request.Context(), media.FilePath)
	if err != nil {
		common.RespondNotFound(c, "файл не найден")
		return
	}
	defer f.Close()

	c.Header("Content-Type", media.MimeType)
	c.Header("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(c.Writer, f); err != nil {
		return
	}
}

// DeleteMedia обрабатывает DELETE /api/media/:id.
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	mediaID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	media, err := h.repo.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			common.RespondNotFound(c, "файл не найден")
			return
		}
		common.RespondInternalError(c, "")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), mediaID, userID); err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			common.RespondNotFound(c, "файл не найден")
			return
		}
		common.RespondInternalError(c, "")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), media.FilePath); err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.Status(http.StatusNoContent)
}

func listAllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	return exts
}
