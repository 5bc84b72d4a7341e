package user

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.emprendenet/internal/boot"
	"uk.co.dudmesh.emprendenet/internal/model"
	"uk.co.dudmesh.emprendenet/internal/validate"
)

const (
	CacheKeyPrefix    = "usuario-nombre="
	passwordHashLabel = "password_hash"
)

type Database interface {
	CreateUser(ctx context.Context, user *model.User) error
	FetchByID(ctx context.Context, id model.UserID) (*model.User, error)
	FetchByName(ctx context.Context, name string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id model.UserID) error
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Invalidator interface {
	Delete(ctx context.Context, key string) bool
}

// Mutator changes the editable fields of a user before it is persisted.
type Mutator func(user *model.User)

type service struct {
	config      *boot.Config
	db          Database
	cache       Cache
	invalidator Invalidator
}

func New(config *boot.Config, db Database, cache Cache, invalidator Invalidator) *service {
	return &service{
		config:      config,
		db:          db,
		cache:       cache,
		invalidator: invalidator,
	}
}

func CacheKey(name string) string {
	return CacheKeyPrefix + name
}

// GetByID looks a user up in the database. An id that is not numeric fails
// with model.ErrorInvalidID before the database is consulted.
func (s *service) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !validate.Is(id, validate.RuleNumericID) {
		return nil, model.ErrorInvalidID
	}
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, model.ErrorInvalidID
	}
	return s.db.FetchByID(ctx, model.UserID(userID))
}

// GetByName looks a user up in the cache first and falls back to the
// database, caching what it finds.
func (s *service) GetByName(ctx context.Context, name string) (*model.User, error) {
	if !validate.Is(name, validate.RuleUserName) {
		return nil, model.ErrorInvalidName
	}

	user, err := s.cached(ctx, name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrorCacheMiss) {
		log.Warnf("reading cached user %s: %v", name, err)
	}

	user, err = s.db.FetchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	s.store(ctx, user)

	return user, nil
}

// Create registers a new user. It does not check that the name is free, the
// database rejects a duplicate with model.ErrorNameTaken.
func (s *service) Create(ctx context.Context, params *model.CreateUserParams) (*model.User, error) {
	salt, err := model.GenerateSalt()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		CreatedAt: time.Now().UTC(),
		Name:      params.Name,
		Salt:      salt,
		Remember:  params.Remember,
		Role:      model.RoleUser,
	}
	user.PasswordHash = s.PasswordHash(user, params.Password)

	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrorNameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	s.store(ctx, user)

	return user, nil
}

// Update applies the mutators to the stored record of user, persists it, and
// refreshes its cache entry. user is overwritten with the result, so fields
// of a stale copy are never written back.
func (s *service) Update(ctx context.Context, user *model.User, mutators ...Mutator) error {
	fresh, err := s.db.FetchByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	for _, mutate := range mutators {
		mutate(fresh)
	}
	if err := s.db.UpdateUser(ctx, fresh); err != nil {
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	*user = *fresh
	s.store(ctx, fresh)
	return nil
}

func (s *service) Delete(ctx context.Context, user *model.User) error {
	if err := s.db.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("deleting user %s: %w", user.ID, err)
	}
	s.invalidator.Delete(ctx, CacheKey(user.Name))
	return nil
}

// PasswordHash derives the stored hash of password for user.
func (s *service) PasswordHash(user *model.User, password string) string {
	digest := sha256.New()
	digest.Write([]byte(passwordHashLabel))
	digest.Write([]byte(user.Salt))
	digest.Write([]byte(password))
	digest.Write([]byte(s.config.Password.SecretA))
	digest.Write([]byte(s.config.Password.SecretB))
	return hex.EncodeToString(digest.Sum(nil))
}

func (s *service) CheckPassword(user *model.User, password string) bool {
	expected := s.PasswordHash(user, password)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(user.PasswordHash)) == 1
}

// PasswordChange replaces the password hash. Tokens issued for the old hash
// stop validating.
func (s *service) PasswordChange(password string) Mutator {
	return func(user *model.User) {
		user.PasswordHash = s.PasswordHash(user, password)
	}
}

func ProfileChange(profile model.Profile) Mutator {
	return func(user *model.User) {
		user.Profile = profile
	}
}

// RememberUpgrade sets the remember flag. There is no downgrade.
func RememberUpgrade() Mutator {
	return func(user *model.User) {
		user.Remember = true
	}
}

func (s *service) cached(ctx context.Context, name string) (*model.User, error) {
	data, err := s.cache.Get(ctx, CacheKey(name))
	if err != nil {
		return nil, err
	}
	user := &model.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("decoding cached user: %w", err)
	}
	return user, nil
}

func (s *service) store(ctx context.Context, user *model.User) {
	key := CacheKey(user.Name)
	data, err := json.Marshal(user)
	if err == nil {
		err = s.cache.Set(ctx, key, data)
	}
	if err != nil {
		log.Warnf("caching user %s: %v", user.Name, err)
		s.invalidator.Delete(ctx, key)
	}
}
