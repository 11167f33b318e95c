package identity

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"worksync/api/internal/cache"
	"worksync/api/internal/config"
	"worksync/api/internal/faults"
	"worksync/api/internal/models"
	"worksync/api/internal/repository"
	"worksync/api/internal/security"
)

// userDirectory is the slice of the user repository the provider needs.
type userDirectory interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

const resetTokenKeyPrefix = "password_reset_"

// resetToken is the parked reset entry. IssuedAt travels with the token so
// the confirm step can enforce the reset TTL regardless of the cache
// backend's own expiry.
type resetToken struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Service is the hosted identity provider: credential verification against
// the user directory, an auth-state broadcast to subscribers, and password
// reset token issuance. It tracks a single current identity; multi-device
// session coordination is out of scope.
type Service struct {
	mu      sync.Mutex
	users   userDirectory
	cache   cache.Store
	cfg     *config.AppConfig
	log     zerolog.Logger
	now     func() time.Time
	current *Identity
	subs    map[int]func(*Identity)
	nextSub int
}

func NewService(users *repository.UserRepository, cacheStore cache.Store, cfg *config.AppConfig, log zerolog.Logger) *Service {
	return NewServiceWithDirectory(users, cacheStore, cfg, log)
}

// NewServiceWithDirectory exists so tests can supply a fake directory.
func NewServiceWithDirectory(users userDirectory, cacheStore cache.Store, cfg *config.AppConfig, log zerolog.Logger) *Service {
	return &Service{
		users: users,
		cache: cacheStore,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		subs:  make(map[int]func(*Identity)),
	}
}

func (s *Service) SignInWithPassword(ctx context.Context, email string, password string) (Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Identity{}, faults.ErrInvalidCredential
		}
		return Identity{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return Identity{}, faults.ErrInvalidCredential
	}

	id := Identity{
		UID:         user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}

	s.mu.Lock()
	s.current = &id
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.log.Info().Str("uid", id.UID).Msg("signed in")
	broadcast(subs, &id)
	return id, nil
}

func (s *Service) SignOut(_ context.Context) error {
	s.mu.Lock()
	s.current = nil
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.log.Info().Msg("signed out")
	broadcast(subs, nil)
	return nil
}

// SendPasswordResetEmail issues a reset token for the account. Mail
// delivery is delegated; the token is parked in the cache with its issue
// time so ConfirmPasswordReset can verify it within the reset TTL.
func (s *Service) SendPasswordResetEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return faults.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return err
	}

	entry, err := json.Marshal(resetToken{Token: token, IssuedAt: s.now()})
	if err != nil {
		return fmt.Errorf("encode reset token: %w", err)
	}
	s.cache.Set(ctx, resetTokenKeyPrefix+user.ID, string(entry))
	s.log.Info().
		Str("uid", user.ID).
		Dur("ttl", s.cfg.Security.PasswordResetTTL).
		Msg("password reset token issued")
	return nil
}

// ConfirmPasswordReset exchanges a valid, unexpired reset token for a new
// password. Every rejection reads as an invalid credential so the endpoint
// leaks nothing about which part failed.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email string, token string, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return faults.ErrInvalidCredential
		}
		return fmt.Errorf("find user: %w", err)
	}

	key := resetTokenKeyPrefix + user.ID
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return faults.ErrInvalidCredential
	}

	var parked resetToken
	if err := json.Unmarshal([]byte(raw), &parked); err != nil {
		s.cache.Remove(ctx, key)
		return faults.ErrInvalidCredential
	}
	if s.now().Sub(parked.IssuedAt) > s.cfg.Security.PasswordResetTTL {
		s.cache.Remove(ctx, key)
		return faults.ErrInvalidCredential
	}
	if subtle.ConstantTimeCompare([]byte(parked.Token), []byte(token)) != 1 {
		return faults.ErrInvalidCredential
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.cache.Remove(ctx, key)
	s.log.Info().Str("uid", user.ID).Msg("password reset completed")
	return nil
}

// OnAuthStateChange registers fn and invokes it synchronously with the
// current state so new subscribers get an authoritative answer up front.
func (s *Service) OnAuthStateChange(fn func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) snapshotSubs() []func(*Identity) {
	subs := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func broadcast(subs []func(*Identity), id *Identity) {
	for _, fn := range subs {
		fn(id)
	}
}
