package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/service"
	"github.com/iliyamo/postboard-api/internal/storage"
)

type PostHandler struct {
	base
	Posts *service.PostService
}

func NewPostHandler(posts *service.PostService, timeout time.Duration) *PostHandler {
	return &PostHandler{base: base{timeout: timeout}, Posts: posts}
}

type createPostReq struct {
	Title     string  `json:"title" validate:"required,min=1,max=40"`
	Text      *string `json:"text" validate:"omitempty,min=1,max=256"`
	Published bool    `json:"published"`
}

type updatePostReq struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=40"`
	Text      *string `json:"text" validate:"omitempty,min=1,max=256"`
	Published *bool   `json:"published"`
}

func (r updatePostReq) patch() service.PostPatch {
	return service.PostPatch{Title: r.Title, Text: r.Text, Published: r.Published}
}

// Create stores a post authored by the caller.
func (h *PostHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createPostReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Posts.Create(ctx, p.UserID, service.PostInput{
		Title:     strings.TrimSpace(req.Title),
		Text:      req.Text,
		Published: req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func postFilter(c echo.Context) (repository.PostFilter, error) {
	author, err := queryUint(c, "authorId")
	if err != nil {
		return repository.PostFilter{}, err
	}
	published, err := queryBool(c, "published")
	if err != nil {
		return repository.PostFilter{}, err
	}
	return repository.PostFilter{AuthorID: author, Title: c.QueryParam("title"), Published: published}, nil
}

func (h *PostHandler) FindAll(c echo.Context) error {
	f, err := postFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	page, limit := pageParams(c)
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Posts.FindAll(ctx, f, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PostHandler) FindOne(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.Posts.FindOne(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// Update accepts a JSON patch, or a multipart form with the same fields
// and an optional "photo" image.
func (h *PostHandler) Update(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var (
		req   updatePostReq
		photo *storage.File
	)
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return respondError(c, badRequest("Invalid multipart form"))
		}
		if req, err = postPatchFromForm(form); err != nil {
			return respondError(c, err)
		}
		if len(form.File["photo"]) > 0 {
			file, body, err := formFile(c, "photo")
			if err != nil {
				return respondError(c, err)
			}
			defer body.Close()
			photo = &file
		}
		if err := c.Validate(&req); err != nil {
			return respondError(c, err)
		}
	} else if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	post, err := h.Posts.Update(ctx, p, id, req.patch(), photo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func postPatchFromForm(form *multipart.Form) (updatePostReq, error) {
	var req updatePostReq
	if v, ok := formValue(form, "title"); ok {
		req.Title = &v
	}
	if v, ok := formValue(form, "text"); ok {
		req.Text = &v
	}
	if v, ok := formValue(form, "published"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return updatePostReq{}, badRequest("Invalid field published")
		}
		req.Published = &b
	}
	return req, nil
}

func formValue(form *multipart.Form, name string) (string, bool) {
	vals := form.Value[name]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func (h *PostHandler) Remove(c echo.Context) error {
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

	if err := h.Posts.Remove(ctx, p, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
