package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCommunityHandler_GetPost_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CommunityHandler{community: nil}
	r.GET("/posts/:id", handler.GetPost)

	req, _ := http.NewRequest("GET", "/posts/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommunityHandler_CreatePost_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CommunityHandler{community: nil}
	r.POST("/posts", handler.CreatePost)

	req, _ := http.NewRequest("POST", "/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommunityHandler_CreateComment_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CommunityHandler{community: nil}
	r.POST("/posts/:id/comments", handler.CreateComment)

	postID := uuid.New()
	req, _ := http.NewRequest("POST", "/posts/"+postID.String()+"/comments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommunityHandler_DeletePost_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CommunityHandler{community: nil}
	r.DELETE("/posts/:id", handler.DeletePost)

	postID := uuid.New()
	req, _ := http.NewRequest("DELETE", "/posts/"+postID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
