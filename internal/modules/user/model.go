// README: User directory records and roles.
package user

import (
	"time"

	"travelbook/internal/types"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           types.ID
	Username     string
	Name         string
	Email        string
	Phone        string
	Address      string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// Driver is the projection the ordering flow selects from.
type Driver struct {
	ID    types.ID
	Name  string
	Phone string
}
