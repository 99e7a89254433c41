package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/utils"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

func strPtr(s string) *string { return &s }

func TestUserUpdatePermissions(t *testing.T) {
	auth, users, _ := newAuth(t)
	s := NewUserService(users, validate.New(), testCost)
	ctx := context.Background()
	d1 := register(t, auth, "03001111111", "secret1", model.RoleDistributor)
	d2 := register(t, auth, "03002222222", "secret1", model.RoleDistributor)

	self := Actor{UserID: d1.ID, Role: model.RoleDistributor}
	if _, err := s.Update(ctx, self, d2.ID, UpdateUserInput{City: strPtr("Lahore")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("editing another user: %v", err)
	}
	promote := model.RoleAdmin
	if _, err := s.Update(ctx, self, d1.ID, UpdateUserInput{Role: &promote}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("self promotion: %v", err)
	}
	got, err := s.Update(ctx, self, d1.ID, UpdateUserInput{City: strPtr(" Lahore "), BusinessName: strPtr("Bilal Traders")})
	if err != nil {
		t.Fatalf("own edit: %v", err)
	}
	if got.City != "Lahore" || got.BusinessName != "Bilal Traders" || got.Name != "Test User" {
		t.Fatalf("updated = %+v", got)
	}

	admin := Actor{UserID: "admin-id", Role: model.RoleAdmin}
	got, err = s.Update(ctx, admin, d2.ID, UpdateUserInput{Role: &promote})
	if err != nil || got.Role != model.RoleAdmin {
		t.Fatalf("admin promote: %+v, %v", got, err)
	}
}

func TestUserUpdateFields(t *testing.T) {
	auth, users, _ := newAuth(t)
	s := NewUserService(users, validate.New(), testCost)
	ctx := context.Background()
	admin := Actor{UserID: "admin-id", Role: model.RoleAdmin}
	u := register(t, auth, "03001111111", "secret1", model.RoleDistributor)
	other := register(t, auth, "03002222222", "secret1", model.RoleDistributor)

	var verr *ValidationError
	if _, err := s.Update(ctx, admin, u.ID, UpdateUserInput{Phone: strPtr("999")}); !errors.As(err, &verr) {
		t.Fatalf("bad phone: %v", err)
	}
	if _, err := s.Update(ctx, admin, u.ID, UpdateUserInput{Password: strPtr("abc")}); !errors.As(err, &verr) {
		t.Fatalf("short password: %v", err)
	}
	if _, err := s.Update(ctx, admin, u.ID, UpdateUserInput{Password: strPtr(strings.Repeat("x", 73))}); !errors.As(err, &verr) || verr.Msg != "password must be at most 72 bytes" {
		t.Fatalf("long password: %v", err)
	}
	if _, err := s.Update(ctx, admin, u.ID, UpdateUserInput{Phone: strPtr(other.Phone)}); !errors.Is(err, ErrConflict) {
		t.Fatalf("taken phone: %v", err)
	}

	// blank name and phone mean unchanged
	got, err := s.Update(ctx, admin, u.ID, UpdateUserInput{Name: strPtr(""), Phone: strPtr("  "), Password: strPtr("newsecret")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != u.Name || got.Phone != u.Phone {
		t.Fatalf("blank fields overwrote: %+v", got)
	}
	stored, _ := users.FindByID(ctx, u.ID)
	if !utils.VerifyPassword(stored.PasswordHash, "newsecret") {
		t.Fatal("password not rehashed")
	}
	if _, err := auth.Authenticate(ctx, u.Phone, "newsecret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if _, err := s.Update(ctx, admin, "missing", UpdateUserInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestUserListAndDelete(t *testing.T) {
	auth, users, _ := newAuth(t)
	s := NewUserService(users, validate.New(), testCost)
	ctx := context.Background()
	a := register(t, auth, "03001111111", "secret1", model.RoleDistributor)
	register(t, auth, "03002222222", "secret1", model.RoleAdmin)

	all, err := s.List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %d, %v", len(all), err)
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
