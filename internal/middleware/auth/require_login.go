package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/logging"
	"github.com/Skotchmaster/tienda/internal/models"
)

const (
	accountKey = "account"
	LoginPath  = "/login"
)

type AccountResolver interface {
	CurrentAccount(ctx context.Context, r *http.Request) (*models.Account, error)
}

// RequireLogin lets authenticated requests through with the account set in
// the context; anonymous ones are redirected to the login page.
func RequireLogin(auth AccountResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			acc, err := auth.CurrentAccount(ctx, c.Request())
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthenticated) {
					logging.FromContext(ctx).Error("session_lookup_error", "error", err)
				}
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}
			SetAccount(c, acc)
			return next(c)
		}
	}
}

// LoadAccount sets the account for pages that render differently when
// logged in, without requiring it.
func LoadAccount(auth AccountResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if acc, err := auth.CurrentAccount(c.Request().Context(), c.Request()); err == nil {
				SetAccount(c, acc)
			}
			return next(c)
		}
	}
}

func SetAccount(c echo.Context, acc *models.Account) {
	c.Set(accountKey, acc)
}

func Account(c echo.Context) *models.Account {
	acc, _ := c.Get(accountKey).(*models.Account)
	return acc
}
