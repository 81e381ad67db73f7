package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/logging"
	"github.com/Skotchmaster/tienda/internal/models"
	"github.com/Skotchmaster/tienda/internal/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "registro", page(c, "Registro"))
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registration
	if err := bindValid(c, &req); err != nil {
		logFailure(c, "register", http.StatusBadRequest, err)
		return redirectWith(c, "/registro", flashError, msgInvalidData)
	}

	if _, err := h.Auth.Register(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return redirectWith(c, "/registro", flashError, msgEmailTaken)
		case errors.Is(err, domain.ErrValidation):
			return redirectWith(c, "/registro", flashError, msgInvalidData)
		default:
			return err
		}
	}
	return redirectWith(c, "/login", flashOK, msgUserCreated)
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", page(c, "Iniciar sesión"))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := bindValid(c, &req); err != nil {
		logFailure(c, "login", http.StatusBadRequest, err)
		return redirectWith(c, "/login", flashError, msgBadCredentials)
	}

	acc, err := h.login(c, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return redirectWith(c, "/login", flashError, msgBadCredentials)
		}
		return err
	}
	logging.FromContext(c.Request().Context()).Info("login_success", "userID", acc.ID)
	return redirectWith(c, "/panel_admin", flashOK, msgLoginOK)
}

// login checks the credentials and attaches a fresh session cookie.
func (h *AuthHandler) login(c echo.Context, req credentials) (*models.Account, error) {
	ctx := c.Request().Context()
	acc, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	cookie, err := h.Auth.StartSession(ctx, acc)
	if err != nil {
		return nil, err
	}
	c.SetCookie(cookie)
	return acc, nil
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.endSession(c); err != nil {
		return err
	}
	return redirectWith(c, "/", flashOK, msgLoggedOut)
}

func (h *AuthHandler) endSession(c echo.Context) error {
	cookie, err := h.Auth.EndSession(c.Request().Context(), c.Request())
	if err != nil {
		logFailure(c, "logout", http.StatusInternalServerError, err)
		return err
	}
	c.SetCookie(cookie)
	return nil
}

type loginResponse struct {
	Mensaje   string `json:"mensaje"`
	UsuarioID uint   `json:"usuario_id"`
}

func (h *AuthHandler) APILogin(c echo.Context) error {
	var req credentials
	if err := bindValid(c, &req); err != nil {
		logFailure(c, "api_login", http.StatusBadRequest, err)
		return apiMessage(c, http.StatusBadRequest, msgInvalidData)
	}

	acc, err := h.login(c, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			logFailure(c, "api_login", http.StatusUnauthorized, err)
			return apiMessage(c, http.StatusUnauthorized, msgBadCredentials)
		}
		logFailure(c, "api_login", http.StatusInternalServerError, err)
		return apiMessage(c, http.StatusInternalServerError, msgInternal)
	}

	logging.FromContext(c.Request().Context()).Info("login_success", "userID", acc.ID)
	return c.JSON(http.StatusOK, loginResponse{Mensaje: msgLoginOK, UsuarioID: acc.ID})
}

func (h *AuthHandler) APILogout(c echo.Context) error {
	if err := h.endSession(c); err != nil {
		return apiMessage(c, http.StatusInternalServerError, msgInternal)
	}
	return apiMessage(c, http.StatusOK, msgLoggedOut)
}
