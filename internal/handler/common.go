package handler

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/middleware"
	"github.com/iliyamo/postboard-api/internal/service"
	"github.com/iliyamo/postboard-api/internal/storage"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// base carries what every handler group shares.
type base struct {
	timeout time.Duration
}

func (b base) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	t := b.timeout
	if t <= 0 {
		t = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), t)
}

// bind decodes the body into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return badRequest("Invalid request body")
	}
	return c.Validate(dst)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("Invalid id")
	}
	return uint(id), nil
}

// caller returns the identity set by the auth middleware.
func caller(c echo.Context) (utils.Payload, error) {
	p, ok := middleware.Identity(c)
	if !ok {
		return utils.Payload{}, service.ErrUnauthorized
	}
	return p, nil
}

// pageParams reads page and limit.  Unparsable values fall back to the
// defaults, as do missing ones.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}

func queryUint(c echo.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, badRequest("Invalid query parameter " + name)
	}
	v := uint(n)
	return &v, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("Invalid query parameter " + name)
	}
	return &n, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest("Invalid query parameter " + name)
	}
	return &b, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// formFile opens the named multipart part.  The caller closes the
// returned file.
func formFile(c echo.Context, name string) (storage.File, multipart.File, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return storage.File{}, nil, badRequest("File " + name + " is required")
	}
	f, err := fh.Open()
	if err != nil {
		return storage.File{}, nil, err
	}
	return storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}
