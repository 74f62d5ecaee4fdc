package identity

import (
	"time"

	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// Role values recognized by the admin surface.
const (
	RoleUser        = "user"
	RoleAdmin       = "admin"
	RoleMasterAdmin = "master-admin"
)

// User represents a registered account. A user owns exactly one wallet,
// provisioned at signup.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Verified     bool
	Active       bool
	Role         string
	CreatedAt    time.Time
}

// Actor projects the account status fields the ledger authorizes against.
func (u User) Actor() wallet.Actor {
	return wallet.Actor{ID: u.ID, Active: u.Active, Verified: u.Verified}
}

// IsAdmin reports whether the user holds any admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleMasterAdmin
}

// Credentials carries a signup or login request.
type Credentials struct {
	Name     string
	Email    string
	Password string
}
