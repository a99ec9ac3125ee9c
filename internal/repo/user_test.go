package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

func TestUserRepo_GetByID(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	hq := &domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	userID := seedUser(t, tx, "user-get@example.com", domain.RoleMR, hq)
	t1 := seedTerritory(t, tx, "User Zone A", userID)
	t2 := seedTerritory(t, tx, "User Zone B", userID)

	got, err := r.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "user-get@example.com", got.Email)
	assert.Equal(t, domain.RoleMR, got.Role)
	require.NotNil(t, got.HQ)
	assert.InDelta(t, 12.97, got.HQ.Lat, 1e-9)

	require.Len(t, got.Territories, 2)
	ids := []uuid.UUID{got.Territories[0].ID, got.Territories[1].ID}
	assert.Contains(t, ids, t1)
	assert.Contains(t, ids, t2)
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	userID := seedUser(t, tx, "user-email@example.com", domain.RoleASM, nil)

	got, err := r.GetByEmail(ctx, "user-email@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)
	assert.NotEmpty(t, got.PasswordHash, "login flow needs the stored hash")
	assert.Nil(t, got.HQ)

	_, err = r.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_List(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	a := seedUser(t, tx, "list-a@example.com", domain.RoleMR, nil)
	seedTerritory(t, tx, "List Zone", a)
	seedUser(t, tx, "list-b@example.com", domain.RoleASM, nil)

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)

	var found bool
	for _, u := range got {
		if u.ID == a {
			found = true
			require.Len(t, u.Territories, 1, "territories must be attached in bulk listing too")
			assert.Equal(t, "List Zone", u.Territories[0].Name)
		}
	}
	assert.True(t, found)
}
