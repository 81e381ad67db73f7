package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/assets"
	"github.com/Skotchmaster/tienda/internal/domain"
)

type UploadHandler struct {
	Assets *assets.Store
}

func (h *UploadHandler) Serve(c echo.Context) error {
	name := c.Param("filename")
	rc, err := h.Assets.Open(name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logFailure(c, "serve_upload", http.StatusNotFound, err)
			return echo.ErrNotFound
		}
		logFailure(c, "serve_upload", http.StatusInternalServerError, err)
		return err
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, ctype, rc)
}
