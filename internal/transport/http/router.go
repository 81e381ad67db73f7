package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tienda/internal/assets"
	"github.com/Skotchmaster/tienda/internal/db"
	"github.com/Skotchmaster/tienda/internal/handlers"
	"github.com/Skotchmaster/tienda/internal/metrics"
	authmw "github.com/Skotchmaster/tienda/internal/middleware/auth"
	"github.com/Skotchmaster/tienda/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/tienda/internal/middleware/logging"
	"github.com/Skotchmaster/tienda/internal/service"
	"github.com/Skotchmaster/tienda/internal/views"
)

type Deps struct {
	DB      *gorm.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Auth    *service.AuthService
	Catalog *service.CatalogService
	Assets  *assets.Store

	CSRFEnabled  bool
	CookieSecure bool
}

// New builds the echo instance with the middleware chain and all routes.
func New(d *Deps) (*echo.Echo, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handlers.NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		loggingmw.RequestLogger(d.Logger),
	)
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(middleware.BodyLimit("10M"))
	if d.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:  d.CookieSecure,
			Skipper: csrf.Any(csrf.SkipPrefixes("/metrics", "/health/"), csrf.SkipAPI("/api/")),
		}))
	}

	Register(e, d)
	return e, nil
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	auth := &handlers.AuthHandler{Auth: d.Auth}
	products := &handlers.ProductHandler{Catalog: d.Catalog}
	users := &handlers.UserHandler{Auth: d.Auth}
	uploads := &handlers.UploadHandler{Assets: d.Assets}

	load := authmw.LoadAccount(d.Auth)
	login := authmw.RequireLogin(d.Auth)

	e.GET("/", products.Home, load)
	e.GET("/productos", products.Listing, load)
	e.GET("/carrito", products.Cart, load)
	e.GET("/uploaded/:filename", uploads.Serve)

	e.GET("/registro", auth.RegisterForm, load)
	e.POST("/registro", auth.Register)
	e.GET("/login", auth.LoginForm, load)
	e.POST("/login", auth.Login)
	e.GET("/logout", auth.Logout)

	e.GET("/panel_admin", products.AdminPanel, login)
	e.GET("/agregar_producto", products.NewForm, login)
	e.POST("/agregar_producto", products.Create, login)
	e.GET("/editar_producto/:id", products.EditForm, login)
	e.POST("/editar_producto/:id", products.Update, login)
	e.POST("/eliminar_producto/:id", products.Delete, login)

	api := e.Group("/api")

	api.GET("/productos", products.APIList)
	api.GET("/productos/buscar", products.APISearch)
	api.POST("/login", auth.APILogin)
	api.POST("/logout", auth.APILogout)

	api.GET("/usuarios", users.List)
	api.POST("/usuarios", users.Create)
	api.GET("/usuarios/:id", users.Get)
	api.PUT("/usuarios/:id", users.Update)
	api.DELETE("/usuarios/:id", users.Delete)
}
