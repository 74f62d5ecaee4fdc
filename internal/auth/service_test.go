package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mwangi-george/virtual-wallet-app/internal/config"
	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		VerifyTokenTTL:  time.Hour,
	}
}

func testUser() identity.User {
	return identity.User{
		ID:       uuid.NewString(),
		Name:     "George",
		Email:    "george@example.com",
		Role:     identity.RoleUser,
		Active:   true,
		Verified: true,
	}
}

func TestLoginIssuesVerifiableTokens(t *testing.T) {
	cfg := testConfig()
	svc := NewService(cfg, identity.NewMemoryRepository())
	user := testUser()

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.ExpiresIn <= 0 {
		t.Fatalf("expected positive expiry, got %d", pair.ExpiresIn)
	}

	claims, err := svc.AccessClaims(pair.AccessToken)
	if err != nil {
		t.Fatalf("access claims: %v", err)
	}
	if claims["sub"] != user.ID || claims["email"] != user.Email || claims["role"] != identity.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// The refresh token must not validate as an access token.
	if _, err := svc.AccessClaims(pair.RefreshToken); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	cfg := testConfig()
	repo := identity.NewMemoryRepository()
	svc := NewService(cfg, repo)
	user := testUser()
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, expiresIn, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if expiresIn != int64(cfg.AccessTokenTTL.Seconds()) {
		t.Fatalf("unexpected expiry %d", expiresIn)
	}
	if _, err := svc.AccessClaims(access); err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}

	// Access tokens must not be accepted on the refresh path.
	if _, _, err := svc.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	user := testUser()
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := repo.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("refresh succeeded for deleted user")
	}
}

func TestVerificationToken(t *testing.T) {
	svc := NewService(testConfig(), identity.NewMemoryRepository())
	user := testUser()

	token, err := svc.VerificationToken(user)
	if err != nil {
		t.Fatalf("verification token: %v", err)
	}
	got, err := svc.ConfirmVerification(token)
	if err != nil {
		t.Fatalf("confirm verification: %v", err)
	}
	if got != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got)
	}

	// A login access token must not pass as a verification token.
	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ConfirmVerification(pair.AccessToken); err == nil {
		t.Fatal("access token accepted for verification")
	}
}

func TestPasswordResetToken(t *testing.T) {
	svc := NewService(testConfig(), identity.NewMemoryRepository())
	user := testUser()

	token, err := svc.PasswordResetToken(user)
	if err != nil {
		t.Fatalf("reset token: %v", err)
	}
	got, err := svc.ConfirmPasswordReset(token)
	if err != nil {
		t.Fatalf("confirm reset: %v", err)
	}
	if got != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got)
	}

	// The purpose claim keeps the two emailed links from being swapped.
	verify, err := svc.VerificationToken(user)
	if err != nil {
		t.Fatalf("verification token: %v", err)
	}
	if _, err := svc.ConfirmPasswordReset(verify); err == nil {
		t.Fatal("verification token accepted for password reset")
	}
	if _, err := svc.ConfirmVerification(token); err == nil {
		t.Fatal("reset token accepted for verification")
	}
}

func TestExpiredTokensRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	cfg.VerifyTokenTTL = -time.Minute
	svc := NewService(cfg, identity.NewMemoryRepository())
	user := testUser()

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.AccessClaims(pair.AccessToken); err == nil {
		t.Fatal("expired access token accepted")
	}

	token, err := svc.VerificationToken(user)
	if err != nil {
		t.Fatalf("verification token: %v", err)
	}
	if _, err := svc.ConfirmVerification(token); err == nil {
		t.Fatal("expired verification token accepted")
	}

	reset, err := svc.PasswordResetToken(user)
	if err != nil {
		t.Fatalf("reset token: %v", err)
	}
	if _, err := svc.ConfirmPasswordReset(reset); err == nil {
		t.Fatal("expired reset token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := NewService(testConfig(), identity.NewMemoryRepository())
	pair, err := svc.Login(testUser())
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := svc.AccessClaims(tampered); err == nil {
		t.Fatal("tampered token accepted")
	}
}
