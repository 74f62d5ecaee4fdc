package auth

import (
	"context"
	"errors"
	"time"

	"github.com/mwangi-george/virtual-wallet-app/internal/config"
	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
)

const (
	purposeVerifyEmail   = "verify_email"
	purposeResetPassword = "reset_password"
)

// Service issues and validates tokens for registered users.
type Service struct {
	cfg  config.Config
	repo identity.Repository
}

// NewService builds an auth service.
func NewService(cfg config.Config, repo identity.Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// TokenPair is the response of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues an access/refresh token pair for an authenticated user.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	access, accessExp, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(user identity.User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, errors.New("invalid refresh token")
	}
	if expired(claims) {
		return "", 0, errors.New("refresh token expired")
	}
	sub, _ := claims["sub"].(string)
	user, err := s.repo.FindByID(ctx, sub)
	if err != nil {
		return "", 0, errors.New("user not found")
	}
	access, _, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// VerificationToken issues a short-lived token used in the email
// verification link.
func (s *Service) VerificationToken(user identity.User) (string, error) {
	now := time.Now()
	claims := map[string]any{
		"sub":     user.ID,
		"purpose": purposeVerifyEmail,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.VerifyTokenTTL).Unix(),
	}
	return SignHS256(claims, []byte(s.cfg.JWTSecret))
}

// ConfirmVerification validates a verification token and returns the user id
// it was issued for.
func (s *Service) ConfirmVerification(token string) (string, error) {
	claims, err := ParseAndVerifyHS256(token, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", errors.New("invalid verification token")
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeVerifyEmail {
		return "", errors.New("invalid verification token")
	}
	if expired(claims) {
		return "", errors.New("verification token expired")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid verification token")
	}
	return sub, nil
}

// PasswordResetToken issues a short-lived token used in the password reset
// link. It shares the verification TTL.
func (s *Service) PasswordResetToken(user identity.User) (string, error) {
	now := time.Now()
	claims := map[string]any{
		"sub":     user.ID,
		"purpose": purposeResetPassword,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.VerifyTokenTTL).Unix(),
	}
	return SignHS256(claims, []byte(s.cfg.JWTSecret))
}

// ConfirmPasswordReset validates a reset token and returns the user id it
// was issued for. Verification tokens are rejected here; the purpose claim
// keeps the two links from being swapped.
func (s *Service) ConfirmPasswordReset(token string) (string, error) {
	claims, err := ParseAndVerifyHS256(token, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", errors.New("invalid reset token")
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeResetPassword {
		return "", errors.New("invalid reset token")
	}
	if expired(claims) {
		return "", errors.New("reset token expired")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid reset token")
	}
	return sub, nil
}

// AccessClaims validates an access token and returns its claims.
func (s *Service) AccessClaims(token string) (map[string]any, error) {
	claims, err := ParseAndVerifyHS256(token, []byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	if expired(claims) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

func expired(claims map[string]any) bool {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return true
	}
	return time.Now().Unix() >= int64(exp)
}
