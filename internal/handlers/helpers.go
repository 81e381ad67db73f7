package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/logging"
	authmw "github.com/Skotchmaster/tienda/internal/middleware/auth"
	"github.com/Skotchmaster/tienda/internal/middleware/csrf"
	"github.com/Skotchmaster/tienda/internal/views"
)

const (
	flashCookie = "flash"

	flashOK    = "ok"
	flashError = "error"

	msgEmailTaken      = "Correo ya registrado"
	msgBadCredentials  = "Correo o contraseña incorrectos"
	msgLoginOK         = "Inicio de sesión exitoso"
	msgUserCreated     = "Usuario creado"
	msgUserUpdated     = "Usuario actualizado"
	msgUserDeleted     = "Usuario eliminado"
	msgUserNotFound    = "Usuario no encontrado"
	msgInvalidData     = "Datos inválidos"
	msgProductCreated  = "Producto agregado"
	msgProductUpdated  = "Producto actualizado"
	msgProductDeleted  = "Producto eliminado"
	msgProductNotFound = "Producto no encontrado"
	msgImageRejected   = "No se pudo guardar la imagen"
	msgLoggedOut       = "Sesión cerrada"
	msgInternal        = "Error interno"
)

type Message struct {
	Mensaje string `json:"mensaje"`
}

func apiMessage(c echo.Context, code int, msg string) error {
	return c.JSON(code, Message{Mensaje: msg})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, c.Param("id"))
	}
	return uint(id), nil
}

// setFlash stores a one-shot message shown by the next rendered page.
func setFlash(c echo.Context, kind, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(kind + ":" + msg)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(c echo.Context) *views.Flash {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil
	}
	return &views.Flash{Kind: kind, Message: msg}
}

func redirectWith(c echo.Context, to, kind, msg string) error {
	setFlash(c, kind, msg)
	return c.Redirect(http.StatusSeeOther, to)
}

func page(c echo.Context, title string) views.Page {
	return views.Page{
		Title:     title,
		Account:   authmw.Account(c),
		Flash:     popFlash(c),
		CSRFToken: csrf.Token(c),
	}
}

func logFailure(c echo.Context, handler string, status int, err error) {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)
	if status >= 500 {
		l.Error(handler+"_error", "status", status, "error", err)
		return
	}
	l.Warn(handler+"_error", "status", status, "reason", err.Error())
}
