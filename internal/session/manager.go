package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/tienda/internal/domain"
)

const DefaultCookieName = "session"

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues signed session cookies whose jti points at server-side
// state in Store. A cookie without a live Store entry is anonymous.
type Manager struct {
	Store       Store
	Secret      []byte
	IdleTimeout time.Duration
	MaxAge      time.Duration
	CookieName  string
	Secure      bool
	Now         func() time.Time
}

func NewManager(store Store, secret []byte, idle, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		Store:       store,
		Secret:      secret,
		IdleTimeout: idle,
		MaxAge:      maxAge,
		CookieName:  DefaultCookieName,
		Secure:      secure,
		Now:         time.Now,
	}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func (m *Manager) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) Start(ctx context.Context, accountID uint, email string) (*http.Cookie, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Email:     email,
		ExpiresAt: now.Add(m.IdleTimeout),
		CreatedAt: now,
	}
	if err := m.Store.Create(ctx, s); err != nil {
		return nil, err
	}

	exp := now.Add(m.MaxAge)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		_ = m.Store.Delete(ctx, s.ID)
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return m.cookie(token, exp, int(m.MaxAge.Seconds())), nil
}

func (m *Manager) parse(raw string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Current resolves the request's session and slides its idle deadline.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := m.parse(c.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	s, err := m.Store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if strconv.FormatUint(uint64(s.AccountID), 10) != claims.Subject {
		return nil, domain.ErrUnauthenticated
	}

	s.ExpiresAt = m.now().Add(m.IdleTimeout)
	if err := m.Store.Touch(ctx, s.ID, s.ExpiresAt); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return s, nil
}

// End drops the server-side state and returns a cookie that clears the
// client's copy. Requests without a session still get the clearing cookie.
func (m *Manager) End(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	expired := m.cookie("", time.Unix(0, 0), -1)

	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return expired, nil
	}
	claims, err := m.parse(c.Value, jwt.WithoutClaimsValidation())
	if err != nil {
		return expired, nil
	}
	if err := m.Store.Delete(ctx, claims.ID); err != nil {
		return expired, err
	}
	return expired, nil
}
