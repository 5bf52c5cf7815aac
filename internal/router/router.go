package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iliyamo/postboard-api/internal/handler"
	"github.com/iliyamo/postboard-api/internal/middleware"
	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// Deps bundles what the route table needs.
type Deps struct {
	DB       *gorm.DB
	Verifier middleware.Verifier

	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Posts    *handler.PostHandler
	Comments *handler.CommentHandler

	// RateLimit guards /auth; Cache wraps public reads.  Either may be nil.
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}

// Register installs the validator, the error handler and every route.
func Register(e *echo.Echo, d Deps) {
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler

	access := middleware.JWTAuth(d.Verifier, utils.KindAccess)
	refresh := middleware.JWTAuth(d.Verifier, utils.KindRefresh)
	admin := middleware.RequireRole(model.RoleAdmin)
	cache := orPass(d.Cache)

	e.GET("/healthz", handler.Health(d.DB))

	// ---- Auth ----
	a := e.Group("/auth", orPass(d.RateLimit))
	a.POST("/login", d.Auth.Login)
	a.POST("/registration", d.Auth.Registration)
	a.POST("/logout", d.Auth.Logout, access)
	a.PATCH("/admin", d.Auth.GrantAdmin, access)
	a.POST("/refresh", d.Auth.Refresh, refresh)

	// ---- Users ----
	u := e.Group("/users")
	u.POST("", d.Users.Create)
	u.GET("", d.Users.FindAll, cache)
	u.PATCH("", d.Users.UpdateSelf, access)
	u.PATCH("/avatar", d.Users.SetAvatar, access)
	u.GET("/:id", d.Users.FindOne, cache)
	u.PATCH("/:id", d.Users.Update, access, admin)
	u.DELETE("/:id", d.Users.Remove, access, admin)

	// ---- Posts ----
	p := e.Group("/posts")
	p.POST("", d.Posts.Create, access)
	p.GET("", d.Posts.FindAll, cache)
	p.GET("/:id", d.Posts.FindOne, cache)
	p.PATCH("/:id", d.Posts.Update, access)
	p.DELETE("/:id", d.Posts.Remove, access)

	// ---- Comments ----
	c := e.Group("/comments")
	c.POST("", d.Comments.Create, access)
	c.GET("", d.Comments.FindAll, cache)
	c.GET("/:id", d.Comments.FindOne, cache)
	c.PATCH("/:id", d.Comments.Update, access)
	c.DELETE("/:id", d.Comments.Remove, access)
}
