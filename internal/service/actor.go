package service

import "github.com/iliyamo/distributor-orders/internal/model"

// Actor is the authenticated caller as established by the gate.
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }
