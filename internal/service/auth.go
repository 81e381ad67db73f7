package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/events"
	"github.com/Skotchmaster/tienda/internal/hash"
	"github.com/Skotchmaster/tienda/internal/logging"
	"github.com/Skotchmaster/tienda/internal/models"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/session"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Sessions *session.Manager
	Events   events.Publisher
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	acc, err := s.Repo.CreateAccount(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrValidation) {
			l.Warn("register_error", "reason", err.Error())
		} else {
			l.Error("register_error", "error", err)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, acc.ID, map[string]any{
		"type":   "user_registered",
		"userID": acc.ID,
		"email":  acc.Email,
	})
	return acc, nil
}

// Login returns domain.ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	acc, err := s.Repo.FindAccountByEmail(ctx, email)
	if err != nil {
		l.Error("login_error", "error", err)
		return nil, err
	}
	if acc == nil || !hash.CheckPassword(acc.PasswordHash, password) {
		l.Warn("login_failed", "reason", "invalid email or password")
		return nil, domain.ErrInvalidCredentials
	}
	return acc, nil
}

func (s *AuthService) StartSession(ctx context.Context, acc *models.Account) (*http.Cookie, error) {
	cookie, err := s.Sessions.Start(ctx, acc.ID, acc.Email)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return cookie, nil
}

// CurrentAccount returns domain.ErrUnauthenticated when the request has no
// live session or the session's account no longer exists.
func (s *AuthService) CurrentAccount(ctx context.Context, r *http.Request) (*models.Account, error) {
	sess, err := s.Sessions.Current(ctx, r)
	if err != nil {
		return nil, err
	}

	acc, err := s.Repo.GetAccount(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return acc, nil
}

func (s *AuthService) EndSession(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	return s.Sessions.End(ctx, r)
}

func (s *AuthService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.Repo.ListAccounts(ctx)
}

func (s *AuthService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	return s.Repo.GetAccount(ctx, id)
}

func (s *AuthService) UpdateAccount(ctx context.Context, id uint, patch repo.AccountPatch) (*models.Account, error) {
	return s.Repo.UpdateAccount(ctx, id, patch)
}

func (s *AuthService) DeleteAccount(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteAccount(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.Events, events.TopicUsers, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}
