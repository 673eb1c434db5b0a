package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/student-registry/internal/config"
	"github.com/aanand-mishra/student-registry/internal/password"
	"github.com/aanand-mishra/student-registry/internal/service"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/storage/sqlite"
	"github.com/aanand-mishra/student-registry/internal/storage/storagetest"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/validation"
)

type fixture struct {
	svc    *service.StudentService
	store  *sqlite.SQLite
	hasher *password.Bcrypt
}

func setup(t *testing.T) fixture {
	t.Helper()

	store, err := sqlite.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "students.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return fixture{
		svc:    service.NewStudentService(store, hasher, logger),
		store:  store,
		hasher: hasher,
	}
}

// candidate is a valid create request carrying a plaintext password.
func candidate(id, email string) types.Student {
	s := storagetest.Student(id, email)
	s.Password = "pw-" + id
	s.IsActive = ""
	return s
}

func TestCreate_ReturnsScrubbedRecord(t *testing.T) {
	f := setup(t)

	got, err := f.svc.Create(context.Background(), candidate("S1", "jane@x.com"))
	require.NoError(t, err)

	assert.Equal(t, "", got.Password)
	assert.Equal(t, "S1", got.ID)
	assert.Equal(t, types.StatusActive, got.IsActive)
	assert.False(t, got.IsDeleted)
}

func TestCreate_StoresBcryptHash(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), candidate("S1", "jane@x.com"))
	require.NoError(t, err)

	stored, err := f.store.FindByID(context.Background(), "S1", storage.IncludeDeleted())
	require.NoError(t, err)

	assert.NotEqual(t, "pw-S1", stored.Password)
	assert.NoError(t, f.hasher.Compare(stored.Password, "pw-S1"))
}

func TestCreate_LongPassword(t *testing.T) {
	f := setup(t)

	c := candidate("S1", "jane@x.com")
	c.Password = strings.Repeat("p", 73)

	got, err := f.svc.Create(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, got.Password)

	stored, err := f.store.FindByID(context.Background(), "S1", storage.IncludeDeleted())
	require.NoError(t, err)
	assert.NoError(t, f.hasher.Compare(stored.Password, c.Password))
}

func TestCreate_DuplicateID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, candidate("S1", "jane@x.com"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, candidate("S1", "other@x.com"))
	assert.ErrorIs(t, err, service.ErrDuplicateID)
}

func TestCreate_DuplicateIDOfDeletedStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, candidate("S1", "jane@x.com"))
	require.NoError(t, err)
	_, err = f.svc.SoftDelete(ctx, "S1")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, candidate("S1", "other@x.com"))
	assert.ErrorIs(t, err, service.ErrDuplicateID)
}

func TestCreate_ForcesNotDeleted(t *testing.T) {
	f := setup(t)

	c := candidate("S1", "jane@x.com")
	c.IsDeleted = true

	got, err := f.svc.Create(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)

	listed, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCreate_ValidationError(t *testing.T) {
	f := setup(t)

	c := candidate("S1", "not-an-email")
	c.Name.FirstName = "john"

	_, err := f.svc.Create(context.Background(), c)

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 2)

	all, err := f.store.Find(context.Background(), storage.IncludeDeleted())
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is stored on validation failure")
}

func TestCreate_DuplicateEmailIsStorageConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, candidate("S1", "same@x.com"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, candidate("S2", "same@x.com"))
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NotErrorIs(t, err, service.ErrDuplicateID)
}

func TestCreate_ConcurrentSameIDStoresOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(ctx, candidate("S1", "jane@x.com"))
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		// The loser either saw the first record or hit the unique index.
		assert.True(t,
			errors.Is(err, service.ErrDuplicateID) || errors.Is(err, storage.ErrConflict),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
}

func TestList_ExcludesDeletedAndScrubs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, id := range []string{"S1", "S2", "S3"} {
		_, err := f.svc.Create(ctx, candidate(id, id+"@x.com"))
		require.NoError(t, err)
	}
	_, err := f.svc.SoftDelete(ctx, "S2")
	require.NoError(t, err)

	got, err := f.svc.List(ctx)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "S1", got[0].ID)
	assert.Equal(t, "S3", got[1].ID)
	for _, s := range got {
		assert.Empty(t, s.Password)
	}
}

func TestList_Empty(t *testing.T) {
	f := setup(t)

	got, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, candidate("S1", "jane@x.com"))
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jane@x.com", got[0].Email)
	assert.Empty(t, got[0].Password)

	none, err := f.svc.Get(ctx, "S9")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.SoftDelete(ctx, "S1")
	require.NoError(t, err)

	gone, err := f.svc.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, candidate("S1", "jane@x.com"))
	require.NoError(t, err)

	first, err := f.svc.SoftDelete(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ModifiedCount)

	second, err := f.svc.SoftDelete(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.MatchedCount)
	assert.Equal(t, int64(0), second.ModifiedCount)

	stored, err := f.store.FindByID(ctx, "S1", storage.IncludeDeleted())
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
}

func TestSoftDelete_UnknownIDIsNotAnError(t *testing.T) {
	f := setup(t)

	res, err := f.svc.SoftDelete(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MatchedCount)
}

// brokenStore fails every call with errBroken.
type brokenStore struct{ storage.Storage }

var errBroken = errors.New("connection refused")

func (brokenStore) FindByID(context.Context, string, storage.Filter) (types.Student, error) {
	return types.Student{}, errBroken
}

func (brokenStore) Find(context.Context, storage.Filter) ([]types.Student, error) {
	return nil, errBroken
}

func (brokenStore) MatchByID(context.Context, string, storage.Filter) ([]types.Student, error) {
	return nil, errBroken
}

func (brokenStore) SoftDelete(context.Context, string) (types.DeleteResult, error) {
	return types.DeleteResult{}, errBroken
}

func TestStorageErrorsPropagate(t *testing.T) {
	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	svc := service.NewStudentService(brokenStore{}, hasher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err = svc.Create(ctx, candidate("S1", "jane@x.com"))
	assert.ErrorIs(t, err, errBroken)

	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, errBroken)

	_, err = svc.Get(ctx, "S1")
	assert.ErrorIs(t, err, errBroken)

	_, err = svc.SoftDelete(ctx, "S1")
	assert.ErrorIs(t, err, errBroken)
}
