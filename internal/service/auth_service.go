package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/utils"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

// AuthService authenticates accounts and issues and rotates tokens.
// Each account holds a single active refresh token: logging in or
// refreshing overwrites the stored one, invalidating the previous.
type AuthService struct {
	users      repository.UserRepository
	tokens     *utils.Tokens
	validator  *validate.Validator
	bcryptCost int
	now        func() time.Time
}

// NewAuthService builds the login and registration service. Passwords
// created through Register are hashed at bcryptCost.
func NewAuthService(users repository.UserRepository, tokens *utils.Tokens, v *validate.Validator, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, validator: v, bcryptCost: bcryptCost, now: time.Now}
}

// LoginResult is returned by Authenticate.
type LoginResult struct {
	User         model.Identity `json:"user"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
}

// TokenPair is returned by Refresh. The old refresh token is no longer valid.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Authenticate checks a phone and password pair and issues a new token pair.
func (s *AuthService) Authenticate(ctx context.Context, phone, password string) (LoginResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return LoginResult{}, invalid("both phone and password are required")
	}
	u, err := s.users.FindOne(ctx, repository.UserFilter{Phone: phone})
	if err != nil {
		return LoginResult{}, storeErr("user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u.Identity(), Token: pair.Token, RefreshToken: pair.RefreshToken}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token
// must be the one currently stored for its user.
//
// Two concurrent refreshes with the same token can both pass the
// comparison before either write lands; the later write wins and the
// other caller's new refresh token is silently invalidated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, invalid("refresh token missing")
	}
	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return TokenPair{}, ErrTokenExpired
		}
		return TokenPair{}, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return TokenPair{}, storeErr("user", err)
	}
	if !sameToken(u.RefreshTokenHash, refreshToken) {
		return TokenPair{}, ErrTokenMismatch
	}
	return s.issue(ctx, u)
}

// Logout clears the stored refresh token when the presented one is current.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return invalid("refresh token missing")
	}
	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return storeErr("user", err)
	}
	if !sameToken(u.RefreshTokenHash, refreshToken) {
		return ErrTokenMismatch
	}
	empty := ""
	_, err = s.users.UpdateByID(ctx, u.ID, repository.UserUpdate{RefreshTokenHash: &empty})
	return storeErr("user", err)
}

func sameToken(storedHash, presented string) bool {
	if storedHash == "" {
		return false
	}
	h := utils.HashRefreshToken(presented)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(h)) == 1
}

func (s *AuthService) issue(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := s.tokens.NewAccessToken(u.Identity())
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.NewRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	hash := utils.HashRefreshToken(refresh.Token)
	if _, err := s.users.UpdateByID(ctx, u.ID, repository.UserUpdate{RefreshTokenHash: &hash}); err != nil {
		return TokenPair{}, storeErr("user", err)
	}
	return TokenPair{Token: access.Token, RefreshToken: refresh.Token}, nil
}

// RegisterInput is the body accepted when creating an account.
type RegisterInput struct {
	Name         string     `json:"name" validate:"required,max=100"`
	Phone        string     `json:"phone" validate:"required,pkphone"`
	Email        string     `json:"email" validate:"omitempty,looseemail"`
	Password     string     `json:"password" validate:"required,min=6"`
	Role         model.Role `json:"role" validate:"required,oneof=admin distributor"`
	Address      string     `json:"address" validate:"max=200"`
	City         string     `json:"city" validate:"max=30"`
	BusinessName string     `json:"businessName" validate:"max=100"`
}

func (in *RegisterInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Role = model.Role(strings.TrimSpace(string(in.Role)))
}

// Register validates and stores a new account. The password is hashed
// before it reaches the repository.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.trim()
	if err := s.validator.Validate(in); err != nil {
		return model.User{}, &ValidationError{Msg: err.Error()}
	}
	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	now := s.now().UTC()
	u := model.User{
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Address:      in.Address,
		City:         in.City,
		BusinessName: in.BusinessName,
		JoiningDate:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, storeErr("phone or email", err)
	}
	return u, nil
}
