package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
)

func TestDirectoryService_Users_NeverNil(t *testing.T) {
	users := &mockUserRepo{
		list: func(_ context.Context) ([]domain.User, error) { return nil, nil },
	}
	svc := service.NewDirectoryService(users, &mockCustomerRepo{})

	got, err := svc.Users(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDirectoryService_CustomersByTerritory(t *testing.T) {
	territory := domain.Territory{ID: uuid.New(), Name: "North Zone"}
	customers := &mockCustomerRepo{
		getTerritory: func(_ context.Context, id uuid.UUID) (domain.Territory, error) {
			if id != territory.ID {
				return domain.Territory{}, domain.ErrNotFound
			}
			return territory, nil
		},
		listByTerritory: func(_ context.Context, _ uuid.UUID) ([]domain.Customer, error) {
			return []domain.Customer{{ID: uuid.New(), Name: "Dr. Rao"}}, nil
		},
	}
	svc := service.NewDirectoryService(fixedUserRepo(), customers)

	got, err := svc.CustomersByTerritory(context.Background(), territory.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// An unknown territory is a 404, not an empty list.
	_, err = svc.CustomersByTerritory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
