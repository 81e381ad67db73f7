package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tienda/internal/assets"
	"github.com/Skotchmaster/tienda/internal/db"
	"github.com/Skotchmaster/tienda/internal/events/eventstest"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/service"
	"github.com/Skotchmaster/tienda/internal/session"
	"github.com/Skotchmaster/tienda/internal/views"
)

type testEnv struct {
	E        *echo.Echo
	Repo     *repo.GormRepo
	Assets   *assets.Store
	Events   *eventstest.Recorder
	Auth     *AuthHandler
	Users    *UserHandler
	Products *ProductHandler
	Uploads  *UploadHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	rec := &eventstest.Recorder{}
	store := assets.New(t.TempDir())
	mgr := session.NewManager(session.NewGormStore(gdb), []byte("test-secret"), 30*time.Minute, 24*time.Hour, false)
	authSvc := &service.AuthService{Repo: r, Sessions: mgr, Events: rec}
	catalog := &service.CatalogService{Repo: r, Assets: store, Events: rec}

	e := echo.New()
	e.Renderer = views.MustNew()
	e.Validator = NewValidator()

	return &testEnv{
		E:        e,
		Repo:     r,
		Assets:   store,
		Events:   rec,
		Auth:     &AuthHandler{Auth: authSvc},
		Users:    &UserHandler{Auth: authSvc},
		Products: &ProductHandler{Catalog: catalog},
		Uploads:  &UploadHandler{Assets: store},
	}
}

func (env *testEnv) jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return env.E.NewContext(req, rec), rec
}

func (env *testEnv) formRequest(method, target string, form map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	vals := url.Values{}
	for k, v := range form {
		vals.Set(k, v)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(vals.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return env.E.NewContext(req, rec), rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m.Mensaje
}

// flashOf decodes the flash cookie set on the response.
func flashOf(t *testing.T, rec *httptest.ResponseRecorder) views.Flash {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != flashCookie || ck.Value == "" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
		require.NoError(t, err)
		kind, msg, _ := strings.Cut(string(raw), ":")
		return views.Flash{Kind: kind, Message: msg}
	}
	t.Fatalf("no flash cookie in response")
	return views.Flash{}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.DefaultCookieName {
			return ck
		}
	}
	return nil
}
