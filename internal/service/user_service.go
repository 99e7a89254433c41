package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

// UserService manages accounts after registration.
type UserService struct {
	users      repository.UserRepository
	validator  *validate.Validator
	bcryptCost int
}

// NewUserService builds the account service. bcryptCost applies to
// passwords changed through Update.
func NewUserService(users repository.UserRepository, v *validate.Validator, bcryptCost int) *UserService {
	return &UserService{users: users, validator: v, bcryptCost: bcryptCost}
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.Find(ctx, repository.UserFilter{}, repository.FindOptions{})
}

// Get returns one account by id.
func (s *UserService) Get(ctx context.Context, id string) (model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, storeErr("user", err)
	}
	return u, nil
}

// UpdateUserInput is a partial profile edit; nil fields are unchanged.
// An empty email clears it.
type UpdateUserInput struct {
	Name         *string     `json:"name" validate:"omitempty,max=100"`
	Phone        *string     `json:"phone" validate:"omitempty,pkphone"`
	Email        *string     `json:"email" validate:"omitempty,looseemail"`
	Password     *string     `json:"password" validate:"omitempty,min=6"`
	Role         *model.Role `json:"role" validate:"omitempty,oneof=admin distributor"`
	Address      *string     `json:"address" validate:"omitempty,max=200"`
	City         *string     `json:"city" validate:"omitempty,max=30"`
	BusinessName *string     `json:"businessName" validate:"omitempty,max=100"`
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// dropEmpty turns a blank required field into "unchanged".
func dropEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

// Update edits an account. Admins may edit anyone; a distributor may
// only edit their own record and may not change their role.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, in UpdateUserInput) (model.User, error) {
	if !actor.IsAdmin() {
		if actor.UserID != id {
			return model.User{}, ErrForbidden
		}
		if in.Role != nil && *in.Role != actor.Role {
			return model.User{}, ErrForbidden
		}
	}
	in.Name = dropEmpty(trimPtr(in.Name))
	in.Phone = dropEmpty(trimPtr(in.Phone))
	in.Email = trimPtr(in.Email)
	in.Address = trimPtr(in.Address)
	in.City = trimPtr(in.City)
	in.BusinessName = trimPtr(in.BusinessName)
	if in.Password != nil && *in.Password == "" {
		in.Password = nil
	}
	if err := s.validator.Validate(in); err != nil {
		return model.User{}, &ValidationError{Msg: err.Error()}
	}

	upd := repository.UserUpdate{
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		Role:         in.Role,
		Address:      in.Address,
		City:         in.City,
		BusinessName: in.BusinessName,
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, err
		}
		upd.PasswordHash = &hash
	}
	u, err := s.users.UpdateByID(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.User{}, storeErr("phone or email", err)
		}
		return model.User{}, storeErr("user", err)
	}
	return u, nil
}

// Delete removes an account permanently.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return storeErr("user", s.users.DeleteByID(ctx, id))
}
