package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

// DirectoryService exposes the user and customer directories: the read-only
// lookups that populate joint-work pickers, territory selectors, and the
// route planner's customer snapshots.
type DirectoryService struct {
	users     repo.UserRepo
	customers repo.CustomerRepo
}

// NewDirectoryService constructs a DirectoryService backed by the provided repos.
func NewDirectoryService(users repo.UserRepo, customers repo.CustomerRepo) *DirectoryService {
	return &DirectoryService{users: users, customers: customers}
}

// Users returns all users with their assigned territories.
// Always returns a non-nil slice so callers can safely range over it.
func (s *DirectoryService) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.DirectoryService.Users: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

// CustomersByTerritory returns a territory's customers, geotagged or not.
// Returns domain.ErrNotFound when the territory itself does not exist, so an
// empty territory and an unknown one are distinguishable.
func (s *DirectoryService) CustomersByTerritory(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error) {
	if _, err := s.customers.GetTerritory(ctx, territoryID); err != nil {
		return nil, fmt.Errorf("service.DirectoryService.CustomersByTerritory: %w", err)
	}

	customers, err := s.customers.ListByTerritory(ctx, territoryID)
	if err != nil {
		return nil, fmt.Errorf("service.DirectoryService.CustomersByTerritory: %w", err)
	}
	if customers == nil {
		return []domain.Customer{}, nil
	}
	return customers, nil
}
