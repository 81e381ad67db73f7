package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anaJSON = `{"nombre":"Ana","correo":"ana@x.com","contraseña":"secret"}`

func TestUserHandler_CreateAndDuplicate(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonRequest(http.MethodPost, "/api/usuarios", anaJSON)
	require.NoError(t, env.Users.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createdResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Usuario creado", created.Mensaje)
	assert.NotZero(t, created.ID)

	c, rec = env.jsonRequest(http.MethodPost, "/api/usuarios", anaJSON)
	require.NoError(t, env.Users.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Correo ya registrado", decodeMessage(t, rec))
}

func TestUserHandler_CreateInvalid(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"nombre":"Ana","correo":"ana@x.com"}`,
		`{"nombre":"","correo":"ana@x.com","contraseña":"x"}`,
		`{"nombre":"Ana","correo":"nope","contraseña":"x"}`,
		`{not json`,
	} {
		c, rec := env.jsonRequest(http.MethodPost, "/api/usuarios", body)
		require.NoError(t, env.Users.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Datos inválidos", decodeMessage(t, rec), body)
	}
}

func TestUserHandler_GetAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	ana, err := env.Repo.CreateAccount(ctx, "Ana", "ana@x.com", "secret")
	require.NoError(t, err)
	_, err = env.Repo.CreateAccount(ctx, "Luis", "luis@x.com", "secret")
	require.NoError(t, err)

	c, rec := env.jsonRequest(http.MethodGet, "/api/usuarios", "")
	require.NoError(t, env.Users.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var all []UserDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "ana@x.com", all[0].Email)
	assert.NotContains(t, rec.Body.String(), "secret")

	c, rec = env.jsonRequest(http.MethodGet, "/api/usuarios/1", "")
	require.NoError(t, env.Users.Get(withParam(c, "id", "1")))
	require.Equal(t, http.StatusOK, rec.Code)
	var got UserDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, UserDTO{ID: ana.ID, Name: "Ana", Email: "ana@x.com"}, got)

	c, rec = env.jsonRequest(http.MethodGet, "/api/usuarios/99", "")
	require.NoError(t, env.Users.Get(withParam(c, "id", "99")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Usuario no encontrado", decodeMessage(t, rec))
}

func TestUserHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	ana, err := env.Repo.CreateAccount(ctx, "Ana", "ana@x.com", "secret")
	require.NoError(t, err)
	_, err = env.Repo.CreateAccount(ctx, "Luis", "luis@x.com", "secret")
	require.NoError(t, err)

	c, rec := env.jsonRequest(http.MethodPut, "/api/usuarios/1", `{"nombre":"Ana María"}`)
	require.NoError(t, env.Users.Update(withParam(c, "id", "1")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Usuario actualizado", decodeMessage(t, rec))

	got, err := env.Repo.GetAccount(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.Equal(t, "ana@x.com", got.Email)

	c, rec = env.jsonRequest(http.MethodPut, "/api/usuarios/1", `{"correo":"luis@x.com"}`)
	require.NoError(t, env.Users.Update(withParam(c, "id", "1")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Correo ya registrado", decodeMessage(t, rec))

	c, rec = env.jsonRequest(http.MethodPut, "/api/usuarios/42", `{"nombre":"X"}`)
	require.NoError(t, env.Users.Update(withParam(c, "id", "42")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Repo.CreateAccount(t.Context(), "Ana", "ana@x.com", "secret")
	require.NoError(t, err)

	c, rec := env.jsonRequest(http.MethodDelete, "/api/usuarios/1", "")
	require.NoError(t, env.Users.Delete(withParam(c, "id", "1")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Usuario eliminado", decodeMessage(t, rec))

	c, rec = env.jsonRequest(http.MethodDelete, "/api/usuarios/1", "")
	require.NoError(t, env.Users.Delete(withParam(c, "id", "1")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var deleted int
	for _, ev := range env.Events.Snapshot() {
		if ev.Topic == "user_events" {
			deleted++
		}
	}
	assert.Equal(t, 1, deleted)
}

func TestUserHandler_PasswordLongerThanBcryptLimit(t *testing.T) {
	env := newTestEnv(t)

	for _, pw := range []string{strings.Repeat("a", 73), strings.Repeat("ñ", 40)} {
		body := `{"nombre":"Ana","correo":"ana@x.com","contraseña":"` + pw + `"}`
		c, rec := env.jsonRequest(http.MethodPost, "/api/usuarios", body)
		require.NoError(t, env.Users.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Datos inválidos", decodeMessage(t, rec))
	}

	_, err := env.Repo.CreateAccount(t.Context(), "Ana", "ana@x.com", "secret")
	require.NoError(t, err)

	for _, pw := range []string{strings.Repeat("a", 73), strings.Repeat("ñ", 40)} {
		c, rec := env.jsonRequest(http.MethodPut, "/api/usuarios/1", `{"contraseña":"`+pw+`"}`)
		require.NoError(t, env.Users.Update(withParam(c, "id", "1")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Datos inválidos", decodeMessage(t, rec))
	}
}
