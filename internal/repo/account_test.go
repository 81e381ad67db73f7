package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/hash"
	"github.com/Skotchmaster/tienda/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestCreateAccount_FindByEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	emails := []string{"ana@x.com", "luis@x.com", "Mixed@Case.org"}
	for _, email := range emails {
		acc, err := r.CreateAccount(ctx, "Name", email, "secret")
		require.NoError(t, err)
		require.NotZero(t, acc.ID)
		assert.NotEqual(t, "secret", acc.PasswordHash)
		assert.True(t, hash.CheckPassword(acc.PasswordHash, "secret"))

		found, err := r.FindAccountByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, acc.ID, found.ID)

		_, err = r.CreateAccount(ctx, "Other", email, "other")
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
}

func TestCreateAccount_ConflictIgnoresCase(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateAccount(ctx, "Ana", "ana@x.com", "secret")
	require.NoError(t, err)

	_, err = r.CreateAccount(ctx, "Ana", " ANA@x.com", "secret")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateAccount_Validation(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.CreateAccount(context.Background(), "", "ana@x.com", "secret")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = r.CreateAccount(context.Background(), "Ana", " ", "secret")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = r.CreateAccount(context.Background(), "Ana", "ana@x.com", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAccount_PasswordTooLongForBcrypt(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	long := strings.Repeat("ñ", 40)

	_, err := r.CreateAccount(ctx, "Ana", "ana@x.com", long)
	assert.ErrorIs(t, err, domain.ErrValidation)

	acc, err := r.CreateAccount(ctx, "Ana", "ana@x.com", strings.Repeat("a", hash.MaxPasswordBytes))
	require.NoError(t, err)

	_, err = r.UpdateAccount(ctx, acc.ID, AccountPatch{Password: ptr(long)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFindAccountByEmail_AbsentIsNotError(t *testing.T) {
	r := newTestRepo(t)

	acc, err := r.FindAccountByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestUpdateAccount_Partial(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	acc, err := r.CreateAccount(ctx, "Ana", "ana@x.com", "secret")
	require.NoError(t, err)

	updated, err := r.UpdateAccount(ctx, acc.ID, AccountPatch{Name: ptr("Ana María")})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
	assert.Equal(t, "ana@x.com", updated.Email)
	assert.Equal(t, acc.PasswordHash, updated.PasswordHash)

	updated, err = r.UpdateAccount(ctx, acc.ID, AccountPatch{Password: ptr("nueva")})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
	assert.True(t, hash.CheckPassword(updated.PasswordHash, "nueva"))
	assert.False(t, hash.CheckPassword(updated.PasswordHash, "secret"))

	updated, err = r.UpdateAccount(ctx, acc.ID, AccountPatch{Email: ptr("ana@y.com")})
	require.NoError(t, err)
	assert.Equal(t, "ana@y.com", updated.Email)

	stored, err := r.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", stored.Name)
	assert.Equal(t, "ana@y.com", stored.Email)
}

func TestUpdateAccount_Errors(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	ana, err := r.CreateAccount(ctx, "Ana", "ana@x.com", "secret")
	require.NoError(t, err)
	_, err = r.CreateAccount(ctx, "Luis", "luis@x.com", "secret")
	require.NoError(t, err)

	_, err = r.UpdateAccount(ctx, 999, AccountPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.UpdateAccount(ctx, ana.ID, AccountPatch{Email: ptr("LUIS@x.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// keeping one's own email is not a conflict
	_, err = r.UpdateAccount(ctx, ana.ID, AccountPatch{Email: ptr("ana@x.com")})
	assert.NoError(t, err)

	_, err = r.UpdateAccount(ctx, ana.ID, AccountPatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteAccount_CascadesOwnedRows(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	acc, err := r.CreateAccount(ctx, "Ana", "ana@x.com", "secret")
	require.NoError(t, err)
	prod, err := r.CreateProduct(ctx, ProductFields{Name: "Taza", Price: 3.5}, "")
	require.NoError(t, err)

	require.NoError(t, r.DB.Create(&models.CartLine{AccountID: acc.ID, ProductID: prod.ID, Quantity: 2}).Error)
	require.NoError(t, r.DB.Create(&models.Order{AccountID: acc.ID, PlacedAt: time.Now(), Total: 7, Status: models.OrderStatusPending}).Error)
	require.NoError(t, r.DB.Create(&models.Session{ID: "s1", AccountID: acc.ID, Email: acc.Email, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	require.NoError(t, r.DeleteAccount(ctx, acc.ID))

	var n int64
	r.DB.Model(&models.CartLine{}).Where("account_id = ?", acc.ID).Count(&n)
	assert.Zero(t, n)
	r.DB.Model(&models.Order{}).Where("account_id = ?", acc.ID).Count(&n)
	assert.Zero(t, n)
	r.DB.Model(&models.Session{}).Where("account_id = ?", acc.ID).Count(&n)
	assert.Zero(t, n)

	_, err = r.GetAccount(ctx, acc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, r.DeleteAccount(ctx, acc.ID), domain.ErrNotFound)
}

func TestListAccounts_InsertionOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, e := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		_, err := r.CreateAccount(ctx, "N", e, "pw")
		require.NoError(t, err)
	}

	accounts, err := r.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "c@x.com", accounts[0].Email)
	assert.Equal(t, "b@x.com", accounts[2].Email)
}
