package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/hash"
	"github.com/Skotchmaster/tienda/internal/models"
)

// AccountPatch carries a partial update; nil fields are left untouched.
type AccountPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// hashPassword reports passwords bcrypt cannot hash as ErrValidation.
func hashPassword(raw string) (string, error) {
	pwHash, err := hash.HashPassword(raw)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds %d bytes", domain.ErrValidation, hash.MaxPasswordBytes)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return pwHash, nil
}

func (r *GormRepo) CreateAccount(ctx context.Context, name, email, rawPassword string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || rawPassword == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}

	pwHash, err := hashPassword(rawPassword)
	if err != nil {
		return nil, err
	}

	acc := models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrConflict
		}
		return tx.Create(&acc).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &acc, nil
}

func emailTaken(tx *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.Account{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAccountByEmail returns nil, nil when no account has the email.
func (r *GormRepo) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var accounts []models.Account
	if err := r.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Limit(1).Find(&accounts).Error; err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

func (r *GormRepo) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var acc models.Account
	if err := r.DB.WithContext(ctx).First(&acc, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &acc, nil
}

func (r *GormRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts := make([]models.Account, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *GormRepo) UpdateAccount(ctx context.Context, id uint, patch AccountPatch) (*models.Account, error) {
	var acc models.Account
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&acc, id).Error; err != nil {
			return err
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
			}
			acc.Name = name
		}
		if patch.Email != nil {
			email := NormalizeEmail(*patch.Email)
			if email == "" {
				return fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
			}
			taken, err := emailTaken(tx, email, acc.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrConflict
			}
			acc.Email = email
		}
		if patch.Password != nil {
			if *patch.Password == "" {
				return fmt.Errorf("%w: password cannot be empty", domain.ErrValidation)
			}
			pwHash, err := hashPassword(*patch.Password)
			if err != nil {
				return err
			}
			acc.PasswordHash = pwHash
		}

		return tx.Save(&acc).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &acc, nil
}

// DeleteAccount removes the account together with its cart lines, orders
// and database sessions.
func (r *GormRepo) DeleteAccount(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Account{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return translateError(err)
}
