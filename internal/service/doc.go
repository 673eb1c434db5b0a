// Package service holds the student operations: create, list, get and
// soft delete.
//
// Each operation is an explicit composition of the lower layers rather
// than hooks registered on a model:
//
//	create = validate → check id is free → hash password → insert → scrub
//	list   = find(ExcludeDeleted) → scrub
//	get    = matchByID(ExcludeDeleted) → scrub
//	delete = softDelete
package service
