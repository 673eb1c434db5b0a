// Package storage defines the Storage interface, the contract any
// database backend must satisfy to hold student records.
//
// Two backends implement it: storage/mongodb (the document store used in
// production) and storage/sqlite (a single-file database for local runs
// and tests). The service layer only ever sees this interface.
//
// SOFT DELETE
// ───────────
// Records are never removed; SoftDelete flips isDeleted to true. Every
// read method takes a Filter so the caller states explicitly whether
// soft-deleted records are visible. Normal reads pass ExcludeDeleted();
// only checks that must see retired records pass IncludeDeleted().
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-registry/internal/types"
)

var (
	// ErrNotFound is returned by FindByID when no record matches.
	ErrNotFound = errors.New("student not found")

	// ErrConflict is wrapped into errors caused by a unique index (id or
	// email) rejecting a write.
	ErrConflict = errors.New("unique constraint violated")
)

// Filter narrows a read.
type Filter struct {
	// ExcludeDeleted hides records whose isDeleted flag is true.
	ExcludeDeleted bool
}

// ExcludeDeleted is the filter every ordinary read uses.
func ExcludeDeleted() Filter {
	return Filter{ExcludeDeleted: true}
}

// IncludeDeleted sees every record, retired or not.
func IncludeDeleted() Filter {
	return Filter{}
}

// Storage is the database contract.
type Storage interface {
	// Insert stores a new student exactly as given (the password must
	// already be hashed) and returns the stored value.
	Insert(ctx context.Context, student types.Student) (types.Student, error)

	// FindByID returns the single record with the given id, or
	// ErrNotFound.
	FindByID(ctx context.Context, id string, filter Filter) (types.Student, error)

	// Find returns every record passing filter. Returns an empty slice
	// (not nil) if there are none.
	Find(ctx context.Context, filter Filter) ([]types.Student, error)

	// MatchByID runs an aggregation-style exact match on id and returns
	// all hits (0..n). Returns an empty slice (not nil) on no match.
	MatchByID(ctx context.Context, id string, filter Filter) ([]types.Student, error)

	// SoftDelete sets isDeleted=true on the record with the given id. It
	// does not fail when nothing matches; the counts tell the caller.
	SoftDelete(ctx context.Context, id string) (types.DeleteResult, error)

	// Close releases the underlying connection(s).
	Close(ctx context.Context) error
}
