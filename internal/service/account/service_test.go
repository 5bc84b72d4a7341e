package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uk.co.dudmesh.emprendenet/internal/boot"
	"uk.co.dudmesh.emprendenet/internal/cache"
	"uk.co.dudmesh.emprendenet/internal/model"
	users "uk.co.dudmesh.emprendenet/internal/service/user"
	"uk.co.dudmesh.emprendenet/internal/userstore"
)

type testConfig string

func (c testConfig) DataDirectory() string {
	return string(c)
}

type fakeSession struct {
	issued  []*model.User
	revoked int
}

func (s *fakeSession) Issue(user *model.User) {
	copied := *user
	s.issued = append(s.issued, &copied)
}

func (s *fakeSession) Revoke() {
	s.revoked++
}

// failingStore rejects writes and deletes while broken is set.
type failingStore struct {
	*cache.LRUStore
	broken bool
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.broken {
		return errors.New("cache unavailable")
	}
	return s.LRUStore.Set(ctx, key, value)
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if s.broken {
		return errors.New("cache unavailable")
	}
	return s.LRUStore.Delete(ctx, key)
}

func newService(t *testing.T) (*Service, UserService) {
	t.Helper()
	lru, err := cache.NewLRUStore(64)
	require.NoError(t, err)
	return newServiceWithCache(t, lru)
}

func newServiceWithCache(t *testing.T, store cache.Store) (*Service, UserService) {
	t.Helper()
	ctx := context.Background()

	config := &boot.Config{}
	config.Password.SecretA = "a"
	config.Password.SecretB = "b"

	db, err := userstore.New(ctx, testConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userService := users.New(config, db, store, cache.NewInvalidator(store, 5, time.Microsecond))
	return New(userService), userService
}

func credentials(name, password string, remember bool) Credentials {
	return Credentials{Name: name, Password: password, Remember: remember}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	service, userService := newService(t)

	t.Run("Success", func(t *testing.T) {
		assert := assert.New(t)
		session := &fakeSession{}

		user, problem, err := service.Register(ctx, RegisterRequest{credentials("alice", "Passw0rd", false)}, session)
		assert.Nil(err)
		assert.Equal(model.ProblemNone, problem)
		if assert.NotNil(user) {
			assert.NotZero(user.ID)
			assert.False(user.Remember)
		}
		if assert.Len(session.issued, 1) {
			assert.Equal("alice", session.issued[0].Name)
		}

		stored, err := userService.GetByName(ctx, "alice")
		assert.Nil(err)
		if assert.NotNil(stored) {
			assert.True(userService.CheckPassword(stored, "Passw0rd"))
		}
	})

	t.Run("Problems", func(t *testing.T) {
		tests := []struct {
			name     string
			userName string
			password string
			want     model.Problem
		}{
			{"both invalid", "al", "pw", model.ProblemInvalidNameAndPassword},
			{"name invalid", "Admin", "Passw0rd", model.ProblemInvalidName},
			{"password invalid", "bobby", "pw", model.ProblemInvalidPassword},
			{"name taken", "alice", "Other123", model.ProblemNameTaken},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				session := &fakeSession{}
				user, problem, err := service.Register(ctx, RegisterRequest{credentials(tc.userName, tc.password, false)}, session)
				assert.Nil(t, err)
				assert.Nil(t, user)
				assert.Equal(t, tc.want, problem)
				assert.Empty(t, session.issued)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	service, userService := newService(t)

	_, _, err := service.Register(ctx, RegisterRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
	require.NoError(t, err)

	t.Run("Problems", func(t *testing.T) {
		tests := []struct {
			name     string
			userName string
			password string
			want     model.Problem
		}{
			{"both invalid", "", "", model.ProblemInvalidNameAndPassword},
			{"nonexistent user", "nobody", "Passw0rd", model.ProblemNonexistentUser},
			{"incorrect password", "alice", "WrongPass", model.ProblemIncorrectPassword},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				session := &fakeSession{}
				_, problem, err := service.Login(ctx, LoginRequest{credentials(tc.userName, tc.password, false)}, session)
				assert.Nil(t, err)
				assert.Equal(t, tc.want, problem)
				assert.Empty(t, session.issued)
			})
		}
	})

	t.Run("Success", func(t *testing.T) {
		assert := assert.New(t)
		session := &fakeSession{}

		user, problem, err := service.Login(ctx, LoginRequest{credentials("alice", "Passw0rd", false)}, session)
		assert.Nil(err)
		assert.Equal(model.ProblemNone, problem)
		assert.NotNil(user)
		assert.Len(session.issued, 1)
	})

	t.Run("Remember Upgrades Only", func(t *testing.T) {
		assert := assert.New(t)

		user, _, err := service.Login(ctx, LoginRequest{credentials("alice", "Passw0rd", true)}, &fakeSession{})
		assert.Nil(err)
		if assert.NotNil(user) {
			assert.True(user.Remember)
		}

		user, _, err = service.Login(ctx, LoginRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
		assert.Nil(err)
		if assert.NotNil(user) {
			assert.True(user.Remember)
		}

		stored, err := userService.GetByName(ctx, "alice")
		assert.Nil(err)
		if assert.NotNil(stored) {
			assert.True(stored.Remember)
		}
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	service, userService := newService(t)

	user, _, err := service.Register(ctx, RegisterRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		old     string
		new     string
		confirm string
		want    model.Problem
	}{
		{"old invalid", "x", "NewPass1", "NewPass1", model.ProblemInvalidOldPassword},
		{"new invalid", "Passw0rd", "x", "NewPass1", model.ProblemInvalidNewPassword},
		{"confirm invalid", "Passw0rd", "NewPass1", "x", model.ProblemInvalidConfirmPassword},
		{"mismatch", "Passw0rd", "NewPass1", "NewPass2", model.ProblemPasswordMismatch},
		{"old incorrect", "WrongPass", "NewPass1", "NewPass1", model.ProblemIncorrectOldPassword},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := &fakeSession{}
			problem, err := service.ChangePassword(ctx, ChangePasswordRequest{User: user, Old: tc.old, New: tc.new, Confirm: tc.confirm}, session)
			assert.Nil(t, err)
			assert.Equal(t, tc.want, problem)
			assert.Empty(t, session.issued)
		})
	}

	t.Run("Success", func(t *testing.T) {
		assert := assert.New(t)
		session := &fakeSession{}
		oldHash := user.PasswordHash

		problem, err := service.ChangePassword(ctx, ChangePasswordRequest{User: user, Old: "Passw0rd", New: "NewPass1", Confirm: "NewPass1"}, session)
		assert.Nil(err)
		assert.Equal(model.ProblemNone, problem)
		if assert.Len(session.issued, 1) {
			assert.NotEqual(oldHash, session.issued[0].PasswordHash)
		}

		_, problem, err = service.Login(ctx, LoginRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
		assert.Nil(err)
		assert.Equal(model.ProblemIncorrectPassword, problem)

		stored, err := userService.GetByName(ctx, "alice")
		assert.Nil(err)
		if assert.NotNil(stored) {
			assert.True(userService.CheckPassword(stored, "NewPass1"))
		}
	})
}

func TestEditProfile(t *testing.T) {
	ctx := context.Background()
	service, userService := newService(t)

	user, _, err := service.Register(ctx, RegisterRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
	require.NoError(t, err)

	t.Run("Problems", func(t *testing.T) {
		tests := []struct {
			name    string
			profile model.Profile
			want    model.Problem
		}{
			{"full name", model.Profile{FullName: "<script>"}, model.ProblemInvalidFullName},
			{"location", model.Profile{Location: "x"}, model.ProblemInvalidLocation},
			{"occupation", model.Profile{Occupation: "a very long occupation text"}, model.ProblemInvalidOccupation},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				problem, err := service.EditProfile(ctx, EditProfileRequest{User: user, Profile: tc.profile})
				assert.Nil(t, err)
				assert.Equal(t, tc.want, problem)
			})
		}
	})

	t.Run("Success", func(t *testing.T) {
		assert := assert.New(t)

		profile := model.Profile{FullName: "  Alice Liddell ", Location: "Oxford"}
		problem, err := service.EditProfile(ctx, EditProfileRequest{User: user, Profile: profile})
		assert.Nil(err)
		assert.Equal(model.ProblemNone, problem)

		stored, err := userService.GetByName(ctx, "alice")
		assert.Nil(err)
		if assert.NotNil(stored) {
			assert.Equal("Alice Liddell", stored.FullName)
			assert.Equal("Oxford", stored.Location)
			assert.Equal("", stored.Occupation)
			assert.Equal(user.PasswordHash, stored.PasswordHash)
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	service, userService := newService(t)

	user, _, err := service.Register(ctx, RegisterRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
	require.NoError(t, err)

	session := &fakeSession{}
	problem, err := service.DeleteAccount(ctx, DeleteAccountRequest{User: user}, session)
	assert.Nil(err)
	assert.Equal(model.ProblemNotConfirmed, problem)
	assert.Equal(0, session.revoked)

	problem, err = service.DeleteAccount(ctx, DeleteAccountRequest{User: user, Confirmed: true}, session)
	assert.Nil(err)
	assert.Equal(model.ProblemNone, problem)
	assert.Equal(1, session.revoked)

	_, err = userService.GetByName(ctx, "alice")
	assert.ErrorIs(err, model.ErrorUserNotFound)
}

func TestKind(t *testing.T) {
	assert := assert.New(t)
	requests := map[Request]string{
		LoginRequest{}:          "login",
		RegisterRequest{}:       "register",
		ChangePasswordRequest{}: "change-password",
		EditProfileRequest{}:    "edit-profile",
		DeleteAccountRequest{}:  "delete-account",
	}
	for req, want := range requests {
		assert.Equal(want, req.Kind().String())
	}
}

func TestStaleCacheNeverOverwritesStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lru, err := cache.NewLRUStore(64)
	require.NoError(t, err)
	store := &failingStore{LRUStore: lru}
	service, userService := newServiceWithCache(t, store)

	user, _, err := service.Register(ctx, RegisterRequest{credentials("alice", "Passw0rd", false)}, &fakeSession{})
	require.NoError(t, err)

	store.broken = true
	problem, err := service.ChangePassword(ctx, ChangePasswordRequest{User: user, Old: "Passw0rd", New: "NewPass1", Confirm: "NewPass1"}, &fakeSession{})
	assert.Nil(err)
	assert.Equal(model.ProblemNone, problem)

	session := &fakeSession{}
	_, problem, err = service.Login(ctx, LoginRequest{credentials("alice", "Passw0rd", true)}, session)
	assert.Nil(err)
	assert.Equal(model.ProblemIncorrectPassword, problem)
	assert.Empty(session.issued)

	stored, err := userService.GetByID(ctx, user.ID.String())
	assert.Nil(err)
	if assert.NotNil(stored) {
		assert.True(userService.CheckPassword(stored, "NewPass1"))
		assert.False(userService.CheckPassword(stored, "Passw0rd"))
		assert.False(stored.Remember)
	}
}
