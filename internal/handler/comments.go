package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/service"
)

type CommentHandler struct {
	base
	Comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService, timeout time.Duration) *CommentHandler {
	return &CommentHandler{base: base{timeout: timeout}, Comments: comments}
}

type createCommentReq struct {
	PostID    uint   `json:"postId" validate:"required"`
	Title     string `json:"title" validate:"required,min=1,max=40"`
	Text      string `json:"text" validate:"required,min=1,max=256"`
	Published bool   `json:"published"`
}

type updateCommentReq struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=40"`
	Text      *string `json:"text" validate:"omitempty,min=1,max=256"`
	Published *bool   `json:"published"`
}

func (h *CommentHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createCommentReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	comment, err := h.Comments.Create(ctx, p.UserID, service.CommentInput{
		PostID:    req.PostID,
		Title:     strings.TrimSpace(req.Title),
		Text:      req.Text,
		Published: req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func commentFilter(c echo.Context) (repository.CommentFilter, error) {
	var f repository.CommentFilter
	var err error
	if f.AuthorID, err = queryUint(c, "authorId"); err != nil {
		return f, err
	}
	if f.PostID, err = queryUint(c, "postId"); err != nil {
		return f, err
	}
	if f.Published, err = queryBool(c, "published"); err != nil {
		return f, err
	}
	f.Title = c.QueryParam("title")
	return f, nil
}

func (h *CommentHandler) FindAll(c echo.Context) error {
	f, err := commentFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	page, limit := pageParams(c)
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Comments.FindAll(ctx, f, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) FindOne(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	comment, err := h.Comments.FindOne(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Update(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateCommentReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	comment, err := h.Comments.Update(ctx, p, id, service.CommentPatch{
		Title:     req.Title,
		Text:      req.Text,
		Published: req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Remove(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Comments.Remove(ctx, p, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
