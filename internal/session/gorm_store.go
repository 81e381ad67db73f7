package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/models"
)

type GormStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, Now: time.Now}
}

func (g *GormStore) Create(ctx context.Context, s *Session) error {
	row := models.Session{
		ID:        s.ID,
		AccountID: s.AccountID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt.UTC(),
		CreatedAt: s.CreatedAt.UTC(),
	}
	if err := g.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (g *GormStore) Get(ctx context.Context, id string) (*Session, error) {
	var row models.Session
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	s := &Session{
		ID:        row.ID,
		AccountID: row.AccountID,
		Email:     row.Email,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}
	if s.Expired(g.Now()) {
		_ = g.Delete(ctx, id)
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (g *GormStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	res := g.DB.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("expires_at", expiresAt.UTC())
	if res.Error != nil {
		return fmt.Errorf("touch session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *GormStore) Delete(ctx context.Context, id string) error {
	if err := g.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes expired rows; called on startup.
func (g *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := g.DB.WithContext(ctx).Where("expires_at <= ?", g.Now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
