package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/models"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/service"
)

type UserHandler struct {
	Auth *service.AuthService
}

type UserDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
}

func userDTO(a *models.Account) UserDTO {
	return UserDTO{ID: a.ID, Name: a.Name, Email: a.Email}
}

type createdResponse struct {
	Mensaje string `json:"mensaje"`
	ID      uint   `json:"id"`
}

// userError maps account errors to the JSON status and message.
func userError(c echo.Context, handler string, err error) error {
	var (
		status int
		msg    string
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, msgUserNotFound
	case errors.Is(err, domain.ErrConflict):
		status, msg = http.StatusBadRequest, msgEmailTaken
	case errors.Is(err, domain.ErrValidation):
		status, msg = http.StatusBadRequest, msgInvalidData
	default:
		status, msg = http.StatusInternalServerError, msgInternal
	}
	logFailure(c, handler, status, err)
	return apiMessage(c, status, msg)
}

func (h *UserHandler) List(c echo.Context) error {
	accs, err := h.Auth.ListAccounts(c.Request().Context())
	if err != nil {
		return userError(c, "list_users", err)
	}
	out := make([]UserDTO, 0, len(accs))
	for i := range accs {
		out = append(out, userDTO(&accs[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return userError(c, "get_user", domain.ErrNotFound)
	}
	acc, err := h.Auth.GetAccount(c.Request().Context(), id)
	if err != nil {
		return userError(c, "get_user", err)
	}
	return c.JSON(http.StatusOK, userDTO(acc))
}

func (h *UserHandler) Create(c echo.Context) error {
	var req registration
	if err := bindValid(c, &req); err != nil {
		return userError(c, "create_user", err)
	}

	acc, err := h.Auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return userError(c, "create_user", err)
	}
	return c.JSON(http.StatusCreated, createdResponse{Mensaje: msgUserCreated, ID: acc.ID})
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return userError(c, "update_user", domain.ErrNotFound)
	}

	var req accountUpdate
	if err := bindValid(c, &req); err != nil {
		return userError(c, "update_user", err)
	}

	patch := repo.AccountPatch{Name: req.Name, Email: req.Email, Password: req.Password}
	if _, err := h.Auth.UpdateAccount(c.Request().Context(), id, patch); err != nil {
		return userError(c, "update_user", err)
	}
	return apiMessage(c, http.StatusOK, msgUserUpdated)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return userError(c, "delete_user", domain.ErrNotFound)
	}
	if err := h.Auth.DeleteAccount(c.Request().Context(), id); err != nil {
		return userError(c, "delete_user", err)
	}
	return apiMessage(c, http.StatusOK, msgUserDeleted)
}
