// Package auth guards the dashboard behind the single admin account.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/store"
)

const (
	DefaultPassword   = "admin123"
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

var (
	ErrInvalidCredentials = errors.New("아이디 또는 비밀번호가 올바르지 않습니다")
	ErrPasswordTooShort   = fmt.Errorf("새 비밀번호는 %d자 이상이어야 합니다", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("새 비밀번호는 %d바이트 이하여야 합니다", MaxPasswordLength)
	ErrPasswordMismatch   = errors.New("새 비밀번호가 일치하지 않습니다")
)

type Service struct {
	creds           store.CredentialStore
	defaultPassword string
	logger          *log.Logger
}

func NewService(creds store.CredentialStore, defaultPassword string, logger *log.Logger) *Service {
	if defaultPassword == "" {
		defaultPassword = DefaultPassword
	}
	return &Service{creds: creds, defaultPassword: defaultPassword, logger: logger.WithComponent(log.ComponentAuth)}
}

// Login verifies the admin password. The credential is created with the
// default password on first use, and a legacy SHA-256 hash is replaced by
// bcrypt once it verifies.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) != core.AdminUsername {
		return ErrInvalidCredentials
	}
	cred, err := s.credential(ctx)
	if err != nil {
		return err
	}

	ok, legacy := verify(cred.PasswordHash, password)
	if !ok {
		s.logger.WarnContext(ctx, "Login rejected", log.FieldOperation, log.OpLogin)
		return ErrInvalidCredentials
	}
	if legacy {
		if err := s.save(ctx, password); err != nil {
			s.logger.WarnContext(ctx, "Failed to upgrade legacy password hash", log.FieldError, err)
		} else {
			s.logger.InfoContext(ctx, "Upgraded legacy password hash")
		}
	}
	return nil
}

// ChangePassword replaces the admin password after checking the current
// one and the new password rules.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) error {
	cred, err := s.credential(ctx)
	if err != nil {
		return err
	}
	if ok, _ := verify(cred.PasswordHash, current); !ok {
		return ErrInvalidCredentials
	}
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(next) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Admin password changed", log.FieldOperation, log.OpUpdate)
	return nil
}

func (s *Service) credential(ctx context.Context) (*core.AdminCredential, error) {
	cred, err := s.creds.GetAdminCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admin credential: %w", err)
	}
	if cred != nil {
		return cred, nil
	}
	if err := s.save(ctx, s.defaultPassword); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Bootstrapped admin credential")
	return s.creds.GetAdminCredential(ctx)
}

func (s *Service) save(ctx context.Context, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.creds.SaveAdminCredential(ctx, core.AdminCredential{Username: core.AdminUsername, PasswordHash: hash}); err != nil {
		return fmt.Errorf("save admin credential: %w", err)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// LegacyHash is the unsalted SHA-256 hex digest older deployments stored.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isLegacy(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

// verify checks password against hash and reports whether hash is in the
// legacy format.
func verify(hash, password string) (ok, legacy bool) {
	if isLegacy(hash) {
		got := LegacyHash(password)
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(got)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
}
