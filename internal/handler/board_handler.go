package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-board-api/internal/dto"
	"github.com/noah-isme/school-board-api/internal/models"
	"github.com/noah-isme/school-board-api/internal/service"
	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
	"github.com/noah-isme/school-board-api/pkg/response"
)

type boardService interface {
	Data(ctx context.Context) *models.Board
	CreateHoliday(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error)
	CreateKeyInfo(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error)
	CreatePaymentDue(ctx context.Context, req dto.CreatePaymentDueRequest) (*models.Post, error)
	CreateFacultyPost(ctx context.Context, req dto.CreateFacultyPostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, postType, id string) error
}

// BoardHandler exposes the notice board API.
type BoardHandler struct {
	service boardService
}

// NewBoardHandler builds a new handler.
func NewBoardHandler(service boardService) *BoardHandler {
	return &BoardHandler{service: service}
}

// GetData godoc
// @Summary Get the whole notice board
// @Tags Board
// @Produce json
// @Success 200 {object} models.Board
// @Router /api/data [get]
func (h *BoardHandler) GetData(c *gin.Context) {
	response.OK(c, h.service.Data(c.Request.Context()))
}

// CreateHoliday godoc
// @Summary Add a holiday notice
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreatePostRequest true "Holiday notice"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/holidays [post]
func (h *BoardHandler) CreateHoliday(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(service.ErrTextRequired, err))
		return
	}
	post, err := h.service.CreateHoliday(c.Request.Context(), req)
	h.respondPost(c, post, err)
}

// CreateKeyInfo godoc
// @Summary Add a key information notice
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreatePostRequest true "Key information"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/key-info [post]
func (h *BoardHandler) CreateKeyInfo(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(service.ErrTextRequired, err))
		return
	}
	post, err := h.service.CreateKeyInfo(c.Request.Context(), req)
	h.respondPost(c, post, err)
}

// CreatePaymentDue godoc
// @Summary Add a payment due notice for a class
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentDueRequest true "Payment due"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/payment-dues [post]
func (h *BoardHandler) CreatePaymentDue(c *gin.Context) {
	var req dto.CreatePaymentDueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(service.ErrPaymentDueRequired, err))
		return
	}
	post, err := h.service.CreatePaymentDue(c.Request.Context(), req)
	h.respondPost(c, post, err)
}

// CreateFacultyPost godoc
// @Summary Add a homework, assignment or subject post for a class
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreateFacultyPostRequest true "Faculty post"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/faculty-posts [post]
func (h *BoardHandler) CreateFacultyPost(c *gin.Context) {
	var req dto.CreateFacultyPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(service.ErrFacultyRequired, err))
		return
	}
	post, err := h.service.CreateFacultyPost(c.Request.Context(), req)
	h.respondPost(c, post, err)
}

// DeletePost godoc
// @Summary Delete a holiday or key information post
// @Tags Board
// @Produce json
// @Param type path string true "holiday or keyinfo"
// @Param id path string true "Post ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 500 {object} response.ErrorBody
// @Router /api/posts/{type}/{id} [delete]
func (h *BoardHandler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), c.Param("type"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DeleteResponse{Success: true})
}

func (h *BoardHandler) respondPost(c *gin.Context, post *models.Post, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PostResponse{Success: true, Post: *post})
}
