package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/service"
)

type UserHandler struct {
	base
	Users *service.UserService
}

func NewUserHandler(users *service.UserService, timeout time.Duration) *UserHandler {
	return &UserHandler{base: base{timeout: timeout}, Users: users}
}

type createUserReq struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=20"`
	LastName  string `json:"lastName" validate:"required,min=2,max=20"`
	Age       int    `json:"age" validate:"required,min=1,max=120"`
	Phone     string `json:"phone" validate:"required,max=32"`
	Email     string `json:"email" validate:"required,email,max=191"`
	Password  string `json:"password" validate:"required,max=72"`
}

func (r createUserReq) input() service.UserInput {
	return service.UserInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Age:       r.Age,
		Phone:     strings.TrimSpace(r.Phone),
	}
}

type updateUserReq struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=2,max=20"`
	LastName  *string `json:"lastName" validate:"omitempty,min=2,max=20"`
	Age       *int    `json:"age" validate:"omitempty,min=1,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,min=1,max=32"`
	Email     *string `json:"email" validate:"omitempty,email,max=191"`
	Password  *string `json:"password" validate:"omitempty,min=1,max=72"`
}

func (r updateUserReq) patch() service.UserPatch {
	return service.UserPatch{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       r.Age,
		Phone:     r.Phone,
	}
}

func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func userFilter(c echo.Context) (repository.UserFilter, error) {
	age, err := queryInt(c, "age")
	if err != nil {
		return repository.UserFilter{}, err
	}
	role := model.Role(strings.ToUpper(strings.TrimSpace(c.QueryParam("role"))))
	if role != "" && role != model.RoleUser && role != model.RoleAdmin {
		return repository.UserFilter{}, badRequest("Invalid query parameter role")
	}
	return repository.UserFilter{
		Email:     c.QueryParam("email"),
		FirstName: c.QueryParam("firstName"),
		LastName:  c.QueryParam("lastName"),
		Phone:     c.QueryParam("phone"),
		Age:       age,
		Role:      role,
	}, nil
}

// FindAll lists live users; see userFilter for the accepted filters.
func (h *UserHandler) FindAll(c echo.Context) error {
	f, err := userFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	page, limit := pageParams(c)
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Users.FindAll(ctx, f, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHandler) FindOne(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.FindOne(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateSelf patches the caller's own account.
func (h *UserHandler) UpdateSelf(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.update(c, p.UserID)
}

// Update patches any account.  Admin only.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.update(c, id)
}

func (h *UserHandler) update(c echo.Context, id uint) error {
	var req updateUserReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, req.patch())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// SetAvatar takes a multipart "avatar" image for the caller.
func (h *UserHandler) SetAvatar(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	file, body, err := formFile(c, "avatar")
	if err != nil {
		return respondError(c, err)
	}
	defer body.Close()

	ctx, cancel := h.ctx(c)
	defer cancel()
	u, err := h.Users.SetAvatar(ctx, p.UserID, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Remove soft-deletes a user.  Admin only.
func (h *UserHandler) Remove(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Users.Remove(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
