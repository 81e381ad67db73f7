package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tienda/internal/domain"
)

const searchLimit = 50

// GormRepo is the only component that reads or writes entity rows.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
