package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Account struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name         string    `gorm:"not null"                   json:"nombre"`
	Email        string    `gorm:"uniqueIndex;not null"       json:"correo"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Product.Image is a path relative to the upload directory; empty until an
// image is uploaded.
type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string    `gorm:"not null"                      json:"nombre"`
	Price       float64   `gorm:"not null;check:price >= 0"     json:"precio"`
	Description string    `gorm:"not null;default:''"           json:"descripcion"`
	Image       string    `gorm:"not null;default:''"           json:"imagen"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type CartLine struct {
	ID        uint    `gorm:"primaryKey"                         json:"id"`
	AccountID uint    `gorm:"index;not null"                     json:"usuario_id"`
	ProductID uint    `gorm:"index;not null"                     json:"producto_id"`
	Quantity  uint    `gorm:"not null;default:1;check:quantity > 0" json:"cantidad"`
	Account   Account `gorm:"constraint:OnDelete:CASCADE"        json:"-"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE"        json:"-"`
}

type Order struct {
	ID        uint        `gorm:"primaryKey"                    json:"id"`
	AccountID uint        `gorm:"index;not null"                json:"usuario_id"`
	PlacedAt  time.Time   `gorm:"not null"                      json:"fecha"`
	Total     float64     `gorm:"not null;check:total >= 0"     json:"total"`
	Status    OrderStatus `gorm:"not null;default:pending"      json:"estado"`
	Account   Account     `gorm:"constraint:OnDelete:CASCADE"   json:"-"`
}

// Session backs the database session store.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	AccountID uint      `gorm:"index;not null"`
	Email     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
