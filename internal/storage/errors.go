package storage

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("storage.not_found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("storage.duplicate")

	// ErrSchemaExists indicates the tenant schema is already
	// provisioned.
	ErrSchemaExists = errors.New("storage.schema_exists")

	// ErrInvalidSchemaID indicates a schema identifier that fails the
	// provisioning pattern or names a reserved schema.
	ErrInvalidSchemaID = errors.New("storage.invalid_schema_id")
)
