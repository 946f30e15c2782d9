// Package auth verifies the three credential kinds the server accepts:
// device credentials for sync clients, user accounts for the web surface,
// and the admin pair from configuration.
//
// Device passwords are stored as plain MD5 hex digests because that is what
// KOReader sends over the wire; a client may submit either the plaintext or
// the digest it already computed. User passwords are bcrypt hashes.
package auth

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dengxuezhao/kompanion/internal/config"
	"github.com/dengxuezhao/kompanion/internal/database/devices"
	"github.com/dengxuezhao/kompanion/internal/database/users"
	"github.com/dengxuezhao/kompanion/internal/entities"
)

// ErrInvalidCredentials covers every failed verification, unknown principal
// included, so responses do not leak which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DigestSyncPassword computes the credential digest KOReader derives from a
// device password. Unrelated to the content fingerprints in package
// fingerprint, which happen to use the same hash.
func DigestSyncPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Service verifies credentials against the device and user tables plus the
// configured admin pair.
type Service struct {
	devices    *devices.Repository
	users      *users.Repository
	admin      config.Auth
	bcryptCost int
	logger     *zap.Logger
}

func NewService(deviceRepo *devices.Repository, userRepo *users.Repository, cfg config.Auth, logger *zap.Logger) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		devices:    deviceRepo,
		users:      userRepo,
		admin:      cfg,
		bcryptCost: cost,
		logger:     logger,
	}
}

// RegisterDevice stores a new sync device under the digest of its password.
func (s *Service) RegisterDevice(ctx context.Context, name, password string) (*entities.Device, error) {
	device := &entities.Device{
		Name:           name,
		PasswordDigest: DigestSyncPassword(password),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, err
	}
	s.logger.Info("device registered", zap.String("device", name))
	return device, nil
}

// VerifyDevice checks a device credential. When alreadyDigested is true the
// supplied value is compared to the stored digest as-is; otherwise it is
// digested first. Unknown devices and wrong passwords both come back as
// ErrInvalidCredentials.
func (s *Service) VerifyDevice(ctx context.Context, name, supplied string, alreadyDigested bool) (*entities.Device, error) {
	device, err := s.devices.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, devices.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	digest := supplied
	if !alreadyDigested {
		digest = DigestSyncPassword(supplied)
	}
	if subtle.ConstantTimeCompare([]byte(digest), []byte(device.PasswordDigest)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return device, nil
}

// RevokeDevice removes a device so its credential stops working.
func (s *Service) RevokeDevice(ctx context.Context, name string) error {
	if err := s.devices.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("device revoked", zap.String("device", name))
	return nil
}

// ListDevices returns all registered devices, sorted by name.
func (s *Service) ListDevices(ctx context.Context) ([]entities.Device, error) {
	return s.devices.List(ctx)
}

// RegisterUser creates a web account with a bcrypt-hashed password.
func (s *Service) RegisterUser(ctx context.Context, username, password string) (*entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entities.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser verifies a web account credential.
func (s *Service) CheckUser(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyAdmin checks the configured admin pair. An empty configured password
// disables admin access entirely.
func (s *Service) VerifyAdmin(username, password string) error {
	if s.admin.Password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password))
	if userOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
