package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/models"
)

type resolverFunc func(ctx context.Context, r *http.Request) (*models.Account, error)

func (f resolverFunc) CurrentAccount(ctx context.Context, r *http.Request) (*models.Account, error) {
	return f(ctx, r)
}

func TestRequireLogin(t *testing.T) {
	ana := &models.Account{ID: 1, Name: "Ana"}
	tests := []struct {
		name     string
		resolver resolverFunc
		wantCode int
		wantLoc  string
	}{
		{
			name:     "anonymous redirects",
			resolver: func(context.Context, *http.Request) (*models.Account, error) { return nil, domain.ErrUnauthenticated },
			wantCode: http.StatusSeeOther,
			wantLoc:  LoginPath,
		},
		{
			name:     "store failure redirects",
			resolver: func(context.Context, *http.Request) (*models.Account, error) { return nil, errors.New("db down") },
			wantCode: http.StatusSeeOther,
			wantLoc:  LoginPath,
		},
		{
			name:     "authenticated passes",
			resolver: func(context.Context, *http.Request) (*models.Account, error) { return ana, nil },
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/panel_admin", nil), rec)

			h := RequireLogin(tt.resolver)(func(c echo.Context) error {
				assert.Equal(t, ana, Account(c))
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, h(c))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestLoadAccount_Optional(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	h := LoadAccount(resolverFunc(func(context.Context, *http.Request) (*models.Account, error) {
		return nil, domain.ErrUnauthenticated
	}))(func(c echo.Context) error {
		assert.Nil(t, Account(c))
		return nil
	})
	require.NoError(t, h(c))
}
