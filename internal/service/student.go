package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/student-registry/internal/password"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/validation"
)

// ErrDuplicateID is returned by Create when a student with the same id
// already exists, deleted or not.
var ErrDuplicateID = errors.New("student with this id already exists")

// Students is the contract the HTTP layer consumes.
type Students interface {
	Create(ctx context.Context, candidate types.Student) (types.Student, error)
	List(ctx context.Context) ([]types.Student, error)
	Get(ctx context.Context, id string) ([]types.Student, error)
	SoftDelete(ctx context.Context, id string) (types.DeleteResult, error)
}

// StudentService implements Students on top of a storage backend.
type StudentService struct {
	store  storage.Storage
	hasher password.Hasher
	logger *slog.Logger
}

func NewStudentService(store storage.Storage, hasher password.Hasher, logger *slog.Logger) *StudentService {
	return &StudentService{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// scrub clears the password before a record leaves the service.
func scrub(s types.Student) types.Student {
	s.Password = ""
	return s
}

func scrubAll(students []types.Student) []types.Student {
	for i := range students {
		students[i] = scrub(students[i])
	}
	return students
}

// Create validates candidate, rejects an id that is already taken, stores
// the record with a hashed password and returns it without the password.
//
// The existence check and the insert are not atomic; two concurrent
// creates with the same id are settled by the store's unique index, and
// the loser gets an error wrapping storage.ErrConflict.
func (s *StudentService) Create(ctx context.Context, candidate types.Student) (types.Student, error) {
	student, err := validation.Validate(candidate)
	if err != nil {
		return types.Student{}, err
	}

	// Retired ids stay taken, so deleted records count here.
	_, err = s.store.FindByID(ctx, student.ID, storage.IncludeDeleted())
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "rejecting duplicate student id", slog.String("id", student.ID))
		return types.Student{}, fmt.Errorf("create %q: %w", student.ID, ErrDuplicateID)
	case !errors.Is(err, storage.ErrNotFound):
		return types.Student{}, fmt.Errorf("create: existence check: %w", err)
	}

	hashed, err := s.hasher.Hash(student.Password)
	if err != nil {
		return types.Student{}, fmt.Errorf("create: %w", err)
	}
	student.Password = hashed
	student.IsDeleted = false

	stored, err := s.store.Insert(ctx, student)
	if err != nil {
		return types.Student{}, fmt.Errorf("create: %w", err)
	}

	s.logger.InfoContext(ctx, "student created", slog.String("id", stored.ID))

	return scrub(stored), nil
}

// List returns every student that is not soft-deleted.
func (s *StudentService) List(ctx context.Context) ([]types.Student, error) {
	students, err := s.store.Find(ctx, storage.ExcludeDeleted())
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return scrubAll(students), nil
}

// Get returns the non-deleted students matching id. The result is a
// sequence of zero or more records, never nil.
func (s *StudentService) Get(ctx context.Context, id string) ([]types.Student, error) {
	students, err := s.store.MatchByID(ctx, id, storage.ExcludeDeleted())
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, err)
	}
	return scrubAll(students), nil
}

// SoftDelete marks the student as deleted. It does not check that the
// student exists; the counts in the result say what happened.
func (s *StudentService) SoftDelete(ctx context.Context, id string) (types.DeleteResult, error) {
	res, err := s.store.SoftDelete(ctx, id)
	if err != nil {
		return types.DeleteResult{}, fmt.Errorf("delete %q: %w", id, err)
	}

	s.logger.InfoContext(ctx, "student soft-deleted",
		slog.String("id", id),
		slog.Int64("matched", res.MatchedCount),
		slog.Int64("modified", res.ModifiedCount))

	return res, nil
}

var _ Students = (*StudentService)(nil)
