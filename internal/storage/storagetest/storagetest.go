// Package storagetest holds a behaviour suite every storage.Storage
// backend must pass, plus record fixtures shared by the tests of the
// packages built on storage.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
)

// Student returns a complete, valid record with the given id and email.
func Student(id, email string) types.Student {
	return types.Student{
		ID:       id,
		Password: "hashed-" + id,
		Name: types.UserName{
			FirstName:  "Jane",
			MiddleName: "Q",
			LastName:   "Doe",
		},
		Gender:             types.GenderFemale,
		DateOfBirth:        "2001-02-03",
		Email:              email,
		ContactNo:          "0123",
		EmergencyContactNo: "0456",
		BloodGroup:         types.BloodGroupOPos,
		PresentAddress:     "1 Main St",
		PermanentAddress:   "2 Side St",
		Guardian: types.Guardian{
			FatherName:       "John Doe",
			FatherOccupation: "Engineer",
			FatherContactNo:  "111",
			MotherName:       "Mary Doe",
			MotherOccupation: "Doctor",
			MotherContactNo:  "222",
		},
		LocalGuardian: types.LocalGuardian{
			Name:       "Uncle Bob",
			Occupation: "Teacher",
			ContactNo:  "333",
			Address:    "3 Near St",
		},
		ProfileImg: "https://img.example.com/" + id,
		IsActive:   types.StatusActive,
	}
}

func ids(students []types.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

// Run exercises store against the storage.Storage contract. store must
// start empty; subtests share it and use disjoint ids.
func Run(t *testing.T, store storage.Storage) {
	ctx := context.Background()

	t.Run("Insert_RoundTrip", func(t *testing.T) {
		want := Student("RT1", "rt1@x.com")

		got, err := store.Insert(ctx, want)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		found, err := store.FindByID(ctx, "RT1", storage.ExcludeDeleted())
		require.NoError(t, err)
		assert.Equal(t, want, found)
	})

	t.Run("Insert_DuplicateIDConflicts", func(t *testing.T) {
		_, err := store.Insert(ctx, Student("DUP1", "dup1@x.com"))
		require.NoError(t, err)

		_, err = store.Insert(ctx, Student("DUP1", "dup1-other@x.com"))
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("FindByID_NotFound", func(t *testing.T) {
		_, err := store.FindByID(ctx, "missing", storage.IncludeDeleted())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SoftDelete_HidesFromDefaultReads", func(t *testing.T) {
		_, err := store.Insert(ctx, Student("SD1", "sd1@x.com"))
		require.NoError(t, err)

		res, err := store.SoftDelete(ctx, "SD1")
		require.NoError(t, err)
		assert.Equal(t, types.DeleteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, res)

		_, err = store.FindByID(ctx, "SD1", storage.ExcludeDeleted())
		assert.ErrorIs(t, err, storage.ErrNotFound)

		matches, err := store.MatchByID(ctx, "SD1", storage.ExcludeDeleted())
		require.NoError(t, err)
		assert.Empty(t, matches)

		all, err := store.Find(ctx, storage.ExcludeDeleted())
		require.NoError(t, err)
		assert.NotContains(t, ids(all), "SD1")

		// The record is still there for readers that ask for it.
		found, err := store.FindByID(ctx, "SD1", storage.IncludeDeleted())
		require.NoError(t, err)
		assert.True(t, found.IsDeleted)

		everything, err := store.Find(ctx, storage.IncludeDeleted())
		require.NoError(t, err)
		assert.Contains(t, ids(everything), "SD1")
	})

	t.Run("SoftDelete_Idempotent", func(t *testing.T) {
		_, err := store.Insert(ctx, Student("SD2", "sd2@x.com"))
		require.NoError(t, err)

		_, err = store.SoftDelete(ctx, "SD2")
		require.NoError(t, err)

		res, err := store.SoftDelete(ctx, "SD2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)
		assert.Equal(t, int64(0), res.ModifiedCount)

		found, err := store.FindByID(ctx, "SD2", storage.IncludeDeleted())
		require.NoError(t, err)
		assert.True(t, found.IsDeleted)
	})

	t.Run("SoftDelete_UnknownID", func(t *testing.T) {
		res, err := store.SoftDelete(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.MatchedCount)
		assert.Equal(t, int64(0), res.ModifiedCount)
	})

	t.Run("MatchByID", func(t *testing.T) {
		_, err := store.Insert(ctx, Student("M1", "m1@x.com"))
		require.NoError(t, err)

		matches, err := store.MatchByID(ctx, "M1", storage.ExcludeDeleted())
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "m1@x.com", matches[0].Email)

		none, err := store.MatchByID(ctx, "M-none", storage.ExcludeDeleted())
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("Find_ReturnsActiveRecords", func(t *testing.T) {
		_, err := store.Insert(ctx, Student("F1", "f1@x.com"))
		require.NoError(t, err)
		_, err = store.Insert(ctx, Student("F2", "f2@x.com"))
		require.NoError(t, err)

		all, err := store.Find(ctx, storage.ExcludeDeleted())
		require.NoError(t, err)
		assert.Subset(t, ids(all), []string{"F1", "F2"})
		for _, s := range all {
			assert.False(t, s.IsDeleted)
		}
	})
}
