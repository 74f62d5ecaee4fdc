package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mwangi-george/virtual-wallet-app/internal/notification"
	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// ErrInvalidCredentials is returned for a failed login attempt. It stays
// deliberately vague so callers cannot probe which field was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// WalletProvisioner creates the wallet that accompanies every new account.
// Implemented by the wallet service.
type WalletProvisioner interface {
	CreateForUser(ctx context.Context, userID string) (wallet.Wallet, error)
}

// Service manages the account lifecycle.
type Service struct {
	repo     Repository
	wallets  WalletProvisioner
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService creates a new identity service.
func NewService(repo Repository, wallets WalletProvisioner, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, notifier: notifier, logger: logger}
}

// Register creates a new unverified account and provisions its wallet.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	if creds.Name == "" {
		return User{}, errors.New("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if !strings.Contains(email, "@") {
		return User{}, errors.New("a valid email is required")
	}
	if len(creds.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         creds.Name,
		Email:        email,
		PasswordHash: hash,
		Verified:     false,
		Active:       true,
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	if _, err := s.wallets.CreateForUser(ctx, user.ID); err != nil {
		// The account is unusable without its wallet; undo the signup. If the
		// compensation itself fails, the orphaned row blocks logins anyway
		// (no wallet means every ledger call returns not-found), so log it
		// for operator cleanup rather than failing differently.
		if delErr := s.repo.Delete(ctx, user.ID); delErr != nil {
			if s.logger != nil {
				s.logger.Error("signup compensation failed, orphaned user row remains",
					"user_id", user.ID, "error", delErr)
			}
		}
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies a login attempt.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByEmail looks up an account by its normalized email address.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// MarkVerified flips the account to verified after email confirmation.
func (s *Service) MarkVerified(ctx context.Context, userID string) error {
	if err := s.repo.SetVerified(ctx, userID, true); err != nil {
		return err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindAccountVerified,
			Destination: userID,
			Body:        "Your account has been verified",
		})
	}
	return nil
}

// ResetPassword replaces the account password. Callers must have confirmed
// ownership first, either through a reset token or an authenticated session.
func (s *Service) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPasswordChanged,
			Destination: userID,
			Body:        "Your password has been updated",
		})
	}
	return nil
}

// Directory adapts the repository to the ledger's recipient lookup.
type Directory struct {
	repo Repository
}

// NewDirectory builds a recipient directory over the identity repository.
func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// ActorByID resolves a user's ledger authorization status. A missing user
// maps to the ledger's recipient-not-found sentinel; any other repository
// error passes through as an infrastructure failure.
func (d *Directory) ActorByID(ctx context.Context, id string) (wallet.Actor, error) {
	user, err := d.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return wallet.Actor{}, wallet.ErrRecipientNotFound
		}
		return wallet.Actor{}, err
	}
	return user.Actor(), nil
}
