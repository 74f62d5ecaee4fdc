package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

func seedUser(t *testing.T, repo identity.Repository, email, role string) identity.User {
	t.Helper()
	user := identity.User{
		ID:        uuid.NewString(),
		Name:      "Test",
		Email:     email,
		Active:    true,
		Verified:  true,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestSetUserStatus(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	user := seedUser(t, repo, "george@example.com", identity.RoleUser)

	updated, err := svc.SetUserStatus(ctx, user.Email, false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.Active {
		t.Fatal("expected account to be deactivated")
	}

	if _, err := svc.SetUserStatus(ctx, user.Email, false); !errors.Is(err, ErrStatusUnchanged) {
		t.Fatalf("expected status unchanged, got %v", err)
	}
	if _, err := svc.SetUserStatus(ctx, "missing@example.com", false); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestSetUserRole(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	user := seedUser(t, repo, "george@example.com", identity.RoleUser)

	updated, err := svc.SetUserRole(ctx, user.Email, identity.RoleAdmin)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if updated.Role != identity.RoleAdmin {
		t.Fatalf("expected admin role, got %s", updated.Role)
	}

	if _, err := svc.SetUserRole(ctx, user.Email, identity.RoleAdmin); !errors.Is(err, ErrRoleUnchanged) {
		t.Fatalf("expected role unchanged, got %v", err)
	}
	if _, err := svc.SetUserRole(ctx, user.Email, "superuser"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected unknown role, got %v", err)
	}
}

func TestDeleteUserGuardsAdmins(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	seedUser(t, repo, "user@example.com", identity.RoleUser)
	seedUser(t, repo, "admin@example.com", identity.RoleAdmin)

	if err := svc.DeleteUser(ctx, "admin@example.com"); !errors.Is(err, ErrCannotDeleteAdmin) {
		t.Fatalf("expected admin guard, got %v", err)
	}
	if err := svc.DeleteUser(ctx, "user@example.com"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "user@example.com"); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("user still present after delete: %v", err)
	}
}

func TestListUsersClampsPaging(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	seedUser(t, repo, "a@example.com", identity.RoleUser)
	seedUser(t, repo, "b@example.com", identity.RoleUser)

	users, err := svc.ListUsers(ctx, -5, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func newCreateUserService(t *testing.T) (*Service, identity.Repository, *wallet.MemoryStore) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	store := wallet.NewMemoryStore()
	walletSvc := wallet.NewService(store, identity.NewDirectory(repo), nil, nil, "KES")
	registrar := identity.NewService(repo, walletSvc, nil, nil)
	return NewService(repo, registrar, nil), repo, store
}

func TestCreateUser(t *testing.T) {
	svc, repo, store := newCreateUserService(t)
	ctx := context.Background()
	creds := identity.Credentials{Name: "George", Email: "george@example.com", Password: "correct-horse"}

	user, err := svc.CreateUser(ctx, creds, identity.RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !user.Verified || user.Role != identity.RoleAdmin {
		t.Fatalf("expected verified admin, got %+v", user)
	}

	stored, err := repo.FindByEmail(ctx, "george@example.com")
	if err != nil {
		t.Fatalf("find created user: %v", err)
	}
	if !stored.Verified || stored.Role != identity.RoleAdmin {
		t.Fatalf("stored user missing updates: %+v", stored)
	}
	if _, err := store.WalletByUser(ctx, user.ID); err != nil {
		t.Fatalf("wallet not provisioned for admin-created user: %v", err)
	}

	if _, err := svc.CreateUser(ctx, creds, identity.RoleUser); !errors.Is(err, identity.ErrEmailTaken) {
		t.Fatalf("duplicate email not rejected: %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, repo, _ := newCreateUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, identity.Credentials{Name: "G", Email: "g@example.com", Password: "correct-horse"}, "owner")
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "g@example.com"); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("account created despite invalid role: %v", err)
	}
}
