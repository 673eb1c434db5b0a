// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE - THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function receives its dependencies (the student service)
// once at startup and returns the http.HandlerFunc the router calls on
// every request:
//
//	router.HandleFunc("POST /api/students", student.New(students))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-registry/internal/service"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/utils/response"
	"github.com/aanand-mishra/student-registry/internal/validation"
)

// writeServiceError maps service errors to status codes:
//
//	400  validation failed
//	409  duplicate id, or a unique index (id/email) rejected the write
//	500  anything else
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validation.Error

	switch {
	case errors.As(err, &vErr):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(vErr))
	case errors.Is(err, service.ErrDuplicateID), errors.Is(err, storage.ErrConflict):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
	default:
		slog.ErrorContext(r.Context(), "student request failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Success response (201 Created): the stored student, password "".
//
// Error responses:
//
//	400 Bad Request   empty body, malformed JSON, or failed validation
//	409 Conflict      id or email already taken
//	500 Internal      database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(students service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "creating a student")

		var candidate types.Student
		err := json.NewDecoder(r.Body).Decode(&candidate)

		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}

		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		created, err := students.Create(r.Context(), candidate)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetList handles GET /api/students and returns every non-deleted
// student as a JSON array ([] when there are none).
func GetList(students service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "getting all students")

		list, err := students.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// GetByID handles GET /api/students/{id}.
//
// The body is always an array of matches; an unknown or deleted id gives
// 200 with [] rather than 404.
func GetByID(students service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.InfoContext(r.Context(), "getting a student", slog.String("id", id))

		matches, err := students.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, matches)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Soft-deletes the student: the record stays in the database with
// isDeleted=true and disappears from every read.
//
// Success response (200 OK), also for unknown ids and repeated calls:
//
//	{ "acknowledged": true, "matchedCount": 1, "modifiedCount": 1 }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(students service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.InfoContext(r.Context(), "deleting a student", slog.String("id", id))

		res, err := students.SoftDelete(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, res)
	}
}

// Register mounts every student route on mux.
func Register(mux *http.ServeMux, students service.Students) {
	mux.HandleFunc("POST /api/students", New(students))
	mux.HandleFunc("GET /api/students", GetList(students))
	mux.HandleFunc("GET /api/students/{id}", GetByID(students))
	mux.HandleFunc("DELETE /api/students/{id}", Delete(students))
}
