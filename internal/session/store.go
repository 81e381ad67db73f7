package session

import (
	"context"
	"time"
)

type Session struct {
	ID        string    `json:"id"`
	AccountID uint      `json:"account_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store holds server-side session state. Get returns domain.ErrNotFound for
// unknown or expired sessions. Implementations must be safe for concurrent
// use.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}
