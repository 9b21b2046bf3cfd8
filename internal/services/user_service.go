package services

import (
	"context"
	"errors"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

// Get loads a user by id; used to resolve the caller behind a token.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "User"}
	}
	return u, err
}

func (s *UserService) ListStudents(ctx context.Context, universityID uint) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, universityID, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
