package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Skotchmaster/tienda/internal/assets"
	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/events"
	"github.com/Skotchmaster/tienda/internal/logging"
	"github.com/Skotchmaster/tienda/internal/models"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/search"
)

// Upload is an image supplied with a create or update request.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Assets *assets.Store
	Events events.Publisher
	// Index is optional; without it Search falls back to the database.
	Index search.Index
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) storeImage(ctx context.Context, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	return s.Assets.Store(ctx, up.Reader, up.Filename)
}

// discardImage removes a file stored for a write that did not commit.
func (s *CatalogService) discardImage(ctx context.Context, imagePath string) {
	if imagePath == "" {
		return
	}
	if err := s.Assets.Remove(imagePath); err != nil {
		logging.FromContext(ctx).Error("discard_image_error", "image", imagePath, "error", err)
	}
}

func (s *CatalogService) Create(ctx context.Context, f repo.ProductFields, up *Upload) (*models.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	imagePath, err := s.storeImage(ctx, up)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.CreateProduct(ctx, f, imagePath)
	if err != nil {
		s.discardImage(ctx, imagePath)
		return nil, err
	}

	s.afterWrite(ctx, prod, "product_created")
	return prod, nil
}

// Update keeps the stored image when up is nil. A replaced image file is
// left on disk.
func (s *CatalogService) Update(ctx context.Context, id uint, f repo.ProductFields, up *Upload) (*models.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	imagePath, err := s.storeImage(ctx, up)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, f, imagePath)
	if err != nil {
		s.discardImage(ctx, imagePath)
		return nil, err
	}

	s.afterWrite(ctx, prod, "product_updated")
	return prod, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_index_error", "productID", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}

	if s.Index != nil {
		prods, err := s.Index.Search(ctx, q)
		if err == nil {
			return prods, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		logging.FromContext(ctx).Warn("search_fallback", "reason", "index unavailable", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q)
}

func (s *CatalogService) afterWrite(ctx context.Context, prod *models.Product, eventType string) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, prod); err != nil {
			logging.FromContext(ctx).Error("search_index_error", "productID", prod.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, prod.ID, map[string]any{
		"type":      eventType,
		"productID": prod.ID,
		"name":      prod.Name,
	})
}
