package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebazaar/wirebazaar-backend/pkg/db/dbtest"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

var loginTime = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, repo Repository) *service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return loginTime }
	return impl
}

func TestGormResolveCreatesThenTouches(t *testing.T) {
	repo := NewGormRepository(dbtest.Open(t))
	ctx := context.Background()

	first, err := repo.Resolve(ctx, "9876543210", loginTime)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	later := loginTime.Add(time.Hour)
	second, err := repo.Resolve(ctx, "9876543210", later)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, later, second.LastLoginAt)

	other, err := repo.Resolve(ctx, "buyer@example.com", later)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestLocalResolveSynthesizesIDs(t *testing.T) {
	repo := NewLocalRepository(kvstore.NewMemoryStore(), kvstore.MemoryKeys{})
	identity, err := repo.Resolve(context.Background(), "9876543210", time.UnixMilli(1736500012345))
	require.NoError(t, err)
	assert.Equal(t, "local_1736500012345", identity.ID)
	assert.Equal(t, "9876543210", identity.Contact)
}

func TestProfileSaveAndGet(t *testing.T) {
	repos := map[string]Repository{
		"gorm":  NewGormRepository(dbtest.Open(t)),
		"local": NewLocalRepository(kvstore.NewMemoryStore(), kvstore.MemoryKeys{}),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, repo)
			ctx := context.Background()

			_, err := svc.GetProfile(ctx, "u1")
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

			saved, err := svc.SaveProfile(ctx, "u1", ProfileInput{
				FullName:  " Ravi Kumar ",
				Pincode:   "400001",
				GSTNumber: "27aapfu0939f1zv",
			})
			require.NoError(t, err)
			assert.True(t, saved.ProfileCompleted)
			assert.Equal(t, "27AAPFU0939F1ZV", saved.GSTNumber)

			_, err = svc.SaveProfile(ctx, "u1", ProfileInput{FullName: "Ravi Kumar", City: "Pune"})
			require.NoError(t, err)

			loaded, err := svc.GetProfile(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "Ravi Kumar", loaded.FullName)
			assert.Equal(t, "Pune", loaded.City)
			assert.Empty(t, loaded.GSTNumber)
		})
	}
}

func TestProfileValidation(t *testing.T) {
	svc := newService(t, NewLocalRepository(kvstore.NewMemoryStore(), kvstore.MemoryKeys{}))
	ctx := context.Background()

	_, err := svc.SaveProfile(ctx, "", ProfileInput{FullName: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.SaveProfile(ctx, "u1", ProfileInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.SaveProfile(ctx, "u1", ProfileInput{FullName: "x", Pincode: "4000"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.SaveProfile(ctx, "u1", ProfileInput{FullName: "x", GSTNumber: "ABC"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
