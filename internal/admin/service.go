package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
	"github.com/mwangi-george/virtual-wallet-app/internal/notification"
)

var (
	// ErrStatusUnchanged indicates the account already holds the requested status.
	ErrStatusUnchanged = errors.New("account already has the requested status")
	// ErrRoleUnchanged indicates the account already holds the requested role.
	ErrRoleUnchanged = errors.New("account already has the requested role")
	// ErrCannotDeleteAdmin guards admin accounts from deletion.
	ErrCannotDeleteAdmin = errors.New("cannot delete an account with admin rights")
	// ErrUnknownRole rejects roles outside the recognized set.
	ErrUnknownRole = errors.New("unknown role")
)

// Registrar creates accounts on an admin's behalf. Implemented by the
// identity service, which also provisions the wallet.
type Registrar interface {
	Register(ctx context.Context, creds identity.Credentials) (identity.User, error)
}

// Service exposes the admin panel operations over user accounts.
type Service struct {
	repo      identity.Repository
	registrar Registrar
	notifier  notification.Notifier
}

// NewService builds an admin service.
func NewService(repo identity.Repository, registrar Registrar, notifier notification.Notifier) *Service {
	return &Service{repo: repo, registrar: registrar, notifier: notifier}
}

// CreateUser registers an account through the standard signup path and
// applies the requested role. Admin-created accounts start verified: the
// admin vouches for them in place of the email round trip.
func (s *Service) CreateUser(ctx context.Context, creds identity.Credentials, role string) (identity.User, error) {
	switch role {
	case identity.RoleUser, identity.RoleAdmin, identity.RoleMasterAdmin:
	default:
		return identity.User{}, ErrUnknownRole
	}
	user, err := s.registrar.Register(ctx, creds)
	if err != nil {
		return identity.User{}, err
	}
	if err := s.repo.SetVerified(ctx, user.ID, true); err != nil {
		return identity.User{}, err
	}
	user.Verified = true
	if role != user.Role {
		if err := s.repo.SetRole(ctx, user.ID, role); err != nil {
			return identity.User{}, err
		}
		user.Role = role
	}
	return user, nil
}

// ListUsers returns a page of accounts.
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]identity.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

// FindUser fetches an account by email.
func (s *Service) FindUser(ctx context.Context, email string) (identity.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// SetUserStatus activates or deactivates an account. Deactivation freezes
// the wallet: the ledger refuses operations for inactive actors.
func (s *Service) SetUserStatus(ctx context.Context, email string, active bool) (identity.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return identity.User{}, err
	}
	if user.Active == active {
		return identity.User{}, ErrStatusUnchanged
	}
	if err := s.repo.SetActive(ctx, user.ID, active); err != nil {
		return identity.User{}, err
	}
	user.Active = active

	if s.notifier != nil {
		state := "deactivated"
		if active {
			state = "activated"
		}
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindAccountStatusChanged,
			Destination: user.ID,
			Body:        fmt.Sprintf("Your account has been %s", state),
		})
	}
	return user, nil
}

// SetUserRole changes an account's role.
func (s *Service) SetUserRole(ctx context.Context, email, role string) (identity.User, error) {
	switch role {
	case identity.RoleUser, identity.RoleAdmin, identity.RoleMasterAdmin:
	default:
		return identity.User{}, ErrUnknownRole
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return identity.User{}, err
	}
	if user.Role == role {
		return identity.User{}, ErrRoleUnchanged
	}
	if err := s.repo.SetRole(ctx, user.ID, role); err != nil {
		return identity.User{}, err
	}
	user.Role = role
	return user, nil
}

// DeleteUser removes a non-admin account. The account's wallet and its
// transaction history are destroyed with it.
func (s *Service) DeleteUser(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrCannotDeleteAdmin
	}
	return s.repo.Delete(ctx, user.ID)
}
