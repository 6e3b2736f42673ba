package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/dto"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

// CommunityHandler предоставляет HTTP слой записей и комментариев сообщества.
type CommunityHandler struct {
	community *service.CommunityService
}

// NewCommunityHandler создаёт хэндлер.
func NewCommunityHandler(community *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{community: community}
}

// ListPosts обрабатывает GET /api/posts.
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	posts, err := h.community.ListPosts(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost обрабатывает GET /api/posts/:id.
func (h *CommunityHandler) GetPost(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, comments, err := h.community.GetPost(c.Request.Context(), postID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

// CreatePost обрабатывает POST /api/posts.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreatePostRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.community.CreatePost(c.Request.Context(), userID, service.PostInput{
		Title:   req.Title,
		Body:    req.Body,
		PhotoID: req.PhotoID,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost обрабатывает PUT /api/posts/:id.
func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdatePostRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.community.UpdatePost(c.Request.Context(), userID, postID, req.Title, req.Body)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost обрабатывает DELETE /api/posts/:id.
func (h *CommunityHandler) DeletePost(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.community.DeletePost(c.Request.Context(), userID, postID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "запись удалена", nil)
}

// CreateComment обрабатывает POST /api/posts/:id/comments.
func (h *CommunityHandler) CreateComment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateCommentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	comment, err := h.community.CreateComment(c.Request.Context(), userID, postID, req.Body)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment обрабатывает DELETE /api/comments/:id.
func (h *CommunityHandler) DeleteComment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	commentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.community.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "комментарий удалён", nil)
}
