package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ecommerce-api/cache"
	"ecommerce-api/model"
	"ecommerce-api/store"
)

type UserInput struct {
	ID     string    `json:"id" validate:"required"`
	Name   string    `json:"name" validate:"required"`
	Email  string    `json:"email" validate:"required,email"`
	Photo  string    `json:"photo" validate:"required"`
	Gender string    `json:"gender" validate:"required,oneof=male female"`
	DOB    time.Time `json:"dob" validate:"required"`
}

// CreateUser registers a user. When the id is already known the stored user
// is returned with created == false.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (model.User, bool, error) {
	if err := s.validate.Struct(in); err != nil {
		return model.User{}, false, invalid("please add all fields")
	}

	existing, err := s.store.GetUser(ctx, in.ID)
	if err != nil {
		return model.User{}, false, upstream("load user", err)
	}
	if existing != nil {
		return *existing, false, nil
	}

	u := model.User{
		ID:        in.ID,
		Name:      in.Name,
		Email:     in.Email,
		Photo:     in.Photo,
		Role:      model.RoleUser,
		Gender:    in.Gender,
		DOB:       in.DOB,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.User{}, false, invalid("email already registered")
		}
		return model.User{}, false, upstream("create user", err)
	}
	s.invalidator.Invalidate(ctx, cache.Invalidation{Admin: true})
	return u, true, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	us, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, upstream("load users", err)
	}
	return us, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return model.User{}, upstream("load user", err)
	}
	if u == nil {
		return model.User{}, notFound("invalid id")
	}
	return *u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("invalid id")
		}
		return upstream("delete user", err)
	}
	s.invalidator.Invalidate(ctx, cache.Invalidation{Admin: true})
	return nil
}
