package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"uk.co.dudmesh.emprendenet/internal/boot"
	"uk.co.dudmesh.emprendenet/internal/cache"
	"uk.co.dudmesh.emprendenet/internal/model"
	"uk.co.dudmesh.emprendenet/internal/userstore"
)

type testConfig string

func (c testConfig) DataDirectory() string {
	return string(c)
}

// countingDatabase records how often the database is reached.
type countingDatabase struct {
	Database
	fetchByID   int
	fetchByName int
}

func (d *countingDatabase) FetchByID(ctx context.Context, id model.UserID) (*model.User, error) {
	d.fetchByID++
	return d.Database.FetchByID(ctx, id)
}

func (d *countingDatabase) FetchByName(ctx context.Context, name string) (*model.User, error) {
	d.fetchByName++
	return d.Database.FetchByName(ctx, name)
}

type fixture struct {
	service *service
	db      *countingDatabase
	cache   *cache.LRUStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	config := &boot.Config{}
	config.Password.SecretA = "pepper-a"
	config.Password.SecretB = "pepper-b"

	store, err := userstore.New(ctx, testConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	lru, err := cache.NewLRUStore(64)
	require.NoError(t, err)

	db := &countingDatabase{Database: store}
	invalidator := cache.NewInvalidator(lru, cache.DefaultAttempts, time.Microsecond)

	return &fixture{
		service: New(config, db, lru, invalidator),
		db:      db,
		cache:   lru,
	}
}
