// Package repository implements the JSON-document-backed stores for
// configuration data and snapshots. Domain failures are sentinel errors;
// callers match them with errors.Is.
package repository

import "errors"

var (
	// ErrDuplicateKey is returned when creating a configuration key that
	// already exists.
	ErrDuplicateKey = errors.New("configuration key already exists")

	// ErrUnknownKey is returned when an operation references a
	// configuration key that does not exist.
	ErrUnknownKey = errors.New("configuration key not found")

	// ErrLastKeyProtected is returned when deleting the only remaining
	// configuration key; the database is never left empty.
	ErrLastKeyProtected = errors.New("at least one configuration must remain")

	// ErrSnapshotNotFound is returned when a snapshot id does not exist
	// for the resolved key.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
