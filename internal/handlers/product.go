package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/models"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/service"
	"github.com/Skotchmaster/tienda/internal/views"
)

const adminPath = "/panel_admin"

type ProductHandler struct {
	Catalog *service.CatalogService
}

type ProductDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"nombre"`
	Price       float64 `json:"precio"`
	Description string  `json:"descripcion"`
	Image       string  `json:"imagen"`
}

func productDTOs(items []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(items))
	for _, p := range items {
		out = append(out, ProductDTO{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Image:       p.Image,
		})
	}
	return out
}

func (h *ProductHandler) listPage(c echo.Context, name, title string) error {
	items, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		logFailure(c, name, http.StatusInternalServerError, err)
		return err
	}
	p := page(c, title)
	p.Products = items
	return c.Render(http.StatusOK, name, p)
}

func (h *ProductHandler) Home(c echo.Context) error {
	return h.listPage(c, "productos", "Inicio")
}

func (h *ProductHandler) Listing(c echo.Context) error {
	return h.listPage(c, "productos", "Productos")
}

func (h *ProductHandler) AdminPanel(c echo.Context) error {
	return h.listPage(c, "panel_admin", "Panel de administración")
}

// Cart renders fixed sample lines; carts are not persisted.
func (h *ProductHandler) Cart(c echo.Context) error {
	p := page(c, "Carrito")
	p.Cart = &views.Cart{Lines: []views.CartLine{
		{Name: "Camiseta", Price: 15.99, Quantity: 2},
		{Name: "Taza", Price: 7.5, Quantity: 1},
		{Name: "Gorra", Price: 12, Quantity: 1},
	}}
	return c.Render(http.StatusOK, "carrito", p)
}

func (h *ProductHandler) NewForm(c echo.Context) error {
	p := page(c, "Agregar producto")
	p.Action = "/agregar_producto"
	return c.Render(http.StatusOK, "producto_form", p)
}

func (h *ProductHandler) Create(c echo.Context) error {
	fields, err := productForm(c)
	if err != nil {
		logFailure(c, "create_product", http.StatusBadRequest, err)
		return redirectWith(c, "/agregar_producto", flashError, msgInvalidData)
	}

	up, closeUpload, err := imageUpload(c)
	if err != nil {
		logFailure(c, "create_product", http.StatusBadRequest, err)
		return redirectWith(c, "/agregar_producto", flashError, msgImageRejected)
	}
	defer closeUpload()

	if _, err := h.Catalog.Create(c.Request().Context(), fields, up); err != nil {
		return h.writeFailed(c, "create_product", "/agregar_producto", err)
	}
	return redirectWith(c, adminPath, flashOK, msgProductCreated)
}

func (h *ProductHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return redirectWith(c, adminPath, flashError, msgProductNotFound)
	}

	prod, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return redirectWith(c, adminPath, flashError, msgProductNotFound)
		}
		return err
	}

	p := page(c, "Editar producto")
	p.Product = prod
	p.Action = fmt.Sprintf("/editar_producto/%d", prod.ID)
	return c.Render(http.StatusOK, "producto_form", p)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return redirectWith(c, adminPath, flashError, msgProductNotFound)
	}
	back := fmt.Sprintf("/editar_producto/%d", id)

	fields, err := productForm(c)
	if err != nil {
		logFailure(c, "update_product", http.StatusBadRequest, err)
		return redirectWith(c, back, flashError, msgInvalidData)
	}

	up, closeUpload, err := imageUpload(c)
	if err != nil {
		logFailure(c, "update_product", http.StatusBadRequest, err)
		return redirectWith(c, back, flashError, msgImageRejected)
	}
	defer closeUpload()

	if _, err := h.Catalog.Update(c.Request().Context(), id, fields, up); err != nil {
		return h.writeFailed(c, "update_product", back, err)
	}
	return redirectWith(c, adminPath, flashOK, msgProductUpdated)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return redirectWith(c, adminPath, flashError, msgProductNotFound)
	}

	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return h.writeFailed(c, "delete_product", adminPath, err)
	}
	return redirectWith(c, adminPath, flashOK, msgProductDeleted)
}

func (h *ProductHandler) writeFailed(c echo.Context, handler, back string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logFailure(c, handler, http.StatusNotFound, err)
		return redirectWith(c, adminPath, flashError, msgProductNotFound)
	case errors.Is(err, domain.ErrValidation):
		logFailure(c, handler, http.StatusBadRequest, err)
		return redirectWith(c, back, flashError, msgInvalidData)
	case errors.Is(err, domain.ErrStorage):
		logFailure(c, handler, http.StatusInternalServerError, err)
		return redirectWith(c, back, flashError, msgImageRejected)
	default:
		logFailure(c, handler, http.StatusInternalServerError, err)
		return err
	}
}

func (h *ProductHandler) APIList(c echo.Context) error {
	items, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		logFailure(c, "api_products", http.StatusInternalServerError, err)
		return apiMessage(c, http.StatusInternalServerError, msgInternal)
	}
	return c.JSON(http.StatusOK, productDTOs(items))
}

func (h *ProductHandler) APISearch(c echo.Context) error {
	items, err := h.Catalog.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			logFailure(c, "api_search", http.StatusBadRequest, err)
			return apiMessage(c, http.StatusBadRequest, msgInvalidData)
		}
		logFailure(c, "api_search", http.StatusInternalServerError, err)
		return apiMessage(c, http.StatusInternalServerError, msgInternal)
	}
	return c.JSON(http.StatusOK, productDTOs(items))
}

func productForm(c echo.Context) (repo.ProductFields, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("precio")), 64)
	if err != nil {
		return repo.ProductFields{}, fmt.Errorf("%w: precio: %v", domain.ErrValidation, err)
	}
	f := repo.ProductFields{
		Name:        strings.TrimSpace(c.FormValue("nombre")),
		Price:       price,
		Description: strings.TrimSpace(c.FormValue("descripcion")),
	}
	return f, f.Validate()
}

// imageUpload returns nil when the form carries no "imagen" file.
func imageUpload(c echo.Context) (*service.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile("imagen")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.Upload{Filename: fh.Filename, Reader: f}, func() { _ = f.Close() }, nil
}
