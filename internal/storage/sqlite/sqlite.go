// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network and no separate server process, which makes it the backend of
// choice for local development and for the test suite. Production runs
// against storage/mongodb.
//
// A student is a nested document; here the nested values (name, guardian,
// local guardian) are flattened into prefixed columns of one table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-registry/internal/config"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// Schema:
//
//	seq        insertion order; reads return rows in this order
//	id         caller-supplied student id, unique across deleted rows too
//	email      unique across deleted rows too
//	is_deleted soft-delete marker, never reset
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		seq                       INTEGER PRIMARY KEY AUTOINCREMENT,
		id                        TEXT    NOT NULL UNIQUE,
		password                  TEXT    NOT NULL,
		first_name                TEXT    NOT NULL,
		middle_name               TEXT    NOT NULL DEFAULT '',
		last_name                 TEXT    NOT NULL,
		gender                    TEXT    NOT NULL,
		date_of_birth             TEXT    NOT NULL DEFAULT '',
		email                     TEXT    NOT NULL UNIQUE,
		contact_no                TEXT    NOT NULL,
		emergency_contact_no      TEXT    NOT NULL,
		blood_group               TEXT    NOT NULL DEFAULT '',
		present_address           TEXT    NOT NULL,
		permanent_address         TEXT    NOT NULL,
		father_name               TEXT    NOT NULL,
		father_occupation         TEXT    NOT NULL,
		father_contact_no         TEXT    NOT NULL,
		mother_name               TEXT    NOT NULL,
		mother_occupation         TEXT    NOT NULL,
		mother_contact_no         TEXT    NOT NULL,
		local_guardian_name       TEXT    NOT NULL,
		local_guardian_occupation TEXT    NOT NULL,
		local_guardian_contact_no TEXT    NOT NULL,
		local_guardian_address    TEXT    NOT NULL,
		profile_img               TEXT    NOT NULL DEFAULT '',
		is_active                 TEXT    NOT NULL DEFAULT 'active',
		is_deleted                BOOLEAN NOT NULL DEFAULT 0
	)
`

// columns is shared by INSERT and every SELECT so that scanStudent's
// argument order always matches.
const columns = `id, password, first_name, middle_name, last_name, gender,
	date_of_birth, email, contact_no, emergency_contact_no, blood_group,
	present_address, permanent_address,
	father_name, father_occupation, father_contact_no,
	mother_name, mother_occupation, mother_contact_no,
	local_guardian_name, local_guardian_occupation, local_guardian_contact_no, local_guardian_address,
	profile_img, is_active, is_deleted`

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet; it only validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time; a single connection queues
	// concurrent requests instead of failing them with "database is locked".
	db.SetMaxOpenConns(1)

	// CREATE TABLE IF NOT EXISTS is idempotent and safe to run on every
	// startup.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.Student, error) {
	var s types.Student
	err := row.Scan(
		&s.ID, &s.Password,
		&s.Name.FirstName, &s.Name.MiddleName, &s.Name.LastName,
		&s.Gender, &s.DateOfBirth, &s.Email, &s.ContactNo, &s.EmergencyContactNo,
		&s.BloodGroup, &s.PresentAddress, &s.PermanentAddress,
		&s.Guardian.FatherName, &s.Guardian.FatherOccupation, &s.Guardian.FatherContactNo,
		&s.Guardian.MotherName, &s.Guardian.MotherOccupation, &s.Guardian.MotherContactNo,
		&s.LocalGuardian.Name, &s.LocalGuardian.Occupation, &s.LocalGuardian.ContactNo, &s.LocalGuardian.Address,
		&s.ProfileImg, &s.IsActive, &s.IsDeleted,
	)
	return s, err
}

// where appends the soft-delete clause to a WHERE condition.
func where(cond string, filter storage.Filter) string {
	if filter.ExcludeDeleted {
		cond += " AND is_deleted = 0"
	}
	return " WHERE " + cond
}

// conflict marks unique-index violations with storage.ErrConflict while
// keeping the driver error in the message.
func conflict(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Insert adds a new row. Values go through ? placeholders, never string
// concatenation, so the driver treats them as data only.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Insert(ctx context.Context, student types.Student) (types.Student, error) {
	_, err := s.Db.ExecContext(ctx,
		"INSERT INTO students ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		student.ID, student.Password,
		student.Name.FirstName, student.Name.MiddleName, student.Name.LastName,
		student.Gender, student.DateOfBirth, student.Email, student.ContactNo, student.EmergencyContactNo,
		student.BloodGroup, student.PresentAddress, student.PermanentAddress,
		student.Guardian.FatherName, student.Guardian.FatherOccupation, student.Guardian.FatherContactNo,
		student.Guardian.MotherName, student.Guardian.MotherOccupation, student.Guardian.MotherContactNo,
		student.LocalGuardian.Name, student.LocalGuardian.Occupation, student.LocalGuardian.ContactNo, student.LocalGuardian.Address,
		student.ProfileImg, student.IsActive, student.IsDeleted,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Insert: exec: %w", conflict(err))
	}

	return student, nil
}

// FindByID fetches exactly one row matched by student id.
func (s *SQLite) FindByID(ctx context.Context, id string, filter storage.Filter) (types.Student, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM students"+where("id = ?", filter)+" LIMIT 1", id)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("FindByID %q: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("FindByID: scan: %w", err)
	}

	return student, nil
}

// Find returns all rows passing filter, oldest first.
func (s *SQLite) Find(ctx context.Context, filter storage.Filter) ([]types.Student, error) {
	return s.query(ctx, "Find", "SELECT "+columns+" FROM students"+where("1 = 1", filter)+" ORDER BY seq")
}

// MatchByID is the multi-row counterpart of FindByID: the id column is
// unique, but callers get a slice so the contract does not depend on it.
func (s *SQLite) MatchByID(ctx context.Context, id string, filter storage.Filter) ([]types.Student, error) {
	return s.query(ctx, "MatchByID", "SELECT "+columns+" FROM students"+where("id = ?", filter)+" ORDER BY seq", id)
}

func (s *SQLite) query(ctx context.Context, op, q string, args ...any) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		students = append(students, student)
	}

	// rows.Err() captures any error that occurred during iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration: %w", op, err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SoftDelete flips is_deleted on the row with the given id.
//
// SQLite's changes() counts every row an UPDATE touches, even if the value
// did not change. To report matched and modified separately (like the
// Mongo backend does) we count the matches first and only update rows that
// are not yet deleted, inside one transaction.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) SoftDelete(ctx context.Context, id string) (types.DeleteResult, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.DeleteResult{}, fmt.Errorf("SoftDelete: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	var matched int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM students WHERE id = ?", id).Scan(&matched); err != nil {
		return types.DeleteResult{}, fmt.Errorf("SoftDelete: count: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE students SET is_deleted = 1 WHERE id = ? AND is_deleted = 0", id)
	if err != nil {
		return types.DeleteResult{}, fmt.Errorf("SoftDelete: exec: %w", err)
	}

	modified, err := result.RowsAffected()
	if err != nil {
		return types.DeleteResult{}, fmt.Errorf("SoftDelete: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.DeleteResult{}, fmt.Errorf("SoftDelete: commit: %w", err)
	}

	return types.DeleteResult{
		Acknowledged:  true,
		MatchedCount:  matched,
		ModifiedCount: modified,
	}, nil
}

// Close closes the connection pool.
func (s *SQLite) Close(_ context.Context) error {
	return s.Db.Close()
}

var _ storage.Storage = (*SQLite)(nil)
