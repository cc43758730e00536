package service

import (
	"context"
	"fmt"

	"supplychain-backend/internal/domains/location/model"
	"supplychain-backend/internal/domains/location/repository"

	"github.com/google/uuid"
)

// ServiceInterface manages the location registry.
type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateLocationRequest) (*model.Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateLocationRequest) (*model.Location, error)
	List(ctx context.Context, filter model.ListLocationFilter) ([]model.Location, error)
}

type locationService struct {
	repo repository.RepositoryInterface
}

func NewService(repo repository.RepositoryInterface) ServiceInterface {
	return &locationService{repo: repo}
}

func (s *locationService) Create(ctx context.Context, req model.CreateLocationRequest) (*model.Location, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc := &model.Location{
		ID:        uuid.New(),
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Code:      req.Code,
		Kind:      req.Kind,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *locationService) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *locationService) Update(ctx context.Context, id uuid.UUID, req model.UpdateLocationRequest) (*model.Location, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	return loc, nil
}

func (s *locationService) List(ctx context.Context, filter model.ListLocationFilter) ([]model.Location, error) {
	return s.repo.List(ctx, filter)
}
