package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. Each typed error below matches
// exactly one of them.
var (
	ErrInconsistentBundle = errors.New("inconsistent bundle")
	ErrNotFound           = errors.New("archive record not found")
	ErrPersistence        = errors.New("persistence failure")
	ErrPolicyUnresolved   = errors.New("retention policy unresolved")
)

// InconsistentBundleError reports a payload that violates the bundle
// invariants, such as a card that does not belong to the bundled pack.
type InconsistentBundleError struct {
	PackID string // Bundle pack id (or deck id for deck payloads)
	CardID string // Offending card, if any
	Reason string
}

// Error implements the error interface.
func (e *InconsistentBundleError) Error() string {
	if e.CardID != "" {
		return fmt.Sprintf("inconsistent bundle [id=%s, card_id=%s]: %s", e.PackID, e.CardID, e.Reason)
	}
	return fmt.Sprintf("inconsistent bundle [id=%s]: %s", e.PackID, e.Reason)
}

// Is reports whether target is ErrInconsistentBundle.
func (e *InconsistentBundleError) Is(target error) bool {
	return target == ErrInconsistentBundle
}

// NewInconsistentBundleError creates a new InconsistentBundleError.
func NewInconsistentBundleError(packID, cardID, reason string) *InconsistentBundleError {
	return &InconsistentBundleError{
		PackID: packID,
		CardID: cardID,
		Reason: reason,
	}
}

// NotFoundError reports a missing archive record.
type NotFoundError struct {
	Collection Collection
	ArchiveID  string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("archive record not found [collection=%s, archive_id=%s]", e.Collection, e.ArchiveID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(collection Collection, archiveID string) *NotFoundError {
	return &NotFoundError{
		Collection: collection,
		ArchiveID:  archiveID,
	}
}

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory", etc.)
	Operation string // Operation that failed ("put", "bulk_delete", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrPersistence.
func (e *StorageError) Is(target error) bool {
	return target == ErrPersistence
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// PolicyUnresolvedError means no retention policy exists for a pair. Policy
// resolution is total over valid pairs, so seeing this indicates a bug.
type PolicyUnresolvedError struct {
	Collection Collection
	ItemType   ItemType
}

// Error implements the error interface.
func (e *PolicyUnresolvedError) Error() string {
	return fmt.Sprintf("retention policy unresolved [collection=%s, item_type=%s]", e.Collection, e.ItemType)
}

// Is reports whether target is ErrPolicyUnresolved.
func (e *PolicyUnresolvedError) Is(target error) bool {
	return target == ErrPolicyUnresolved
}

// NewPolicyUnresolvedError creates a new PolicyUnresolvedError.
func NewPolicyUnresolvedError(collection Collection, itemType ItemType) *PolicyUnresolvedError {
	return &PolicyUnresolvedError{
		Collection: collection,
		ItemType:   itemType,
	}
}

// RetentionError represents a failed garbage-collection sweep.
type RetentionError struct {
	Collection Collection
	ItemType   ItemType
	Cause      error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [collection=%s, item_type=%s]: %v", e.Collection, e.ItemType, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new RetentionError.
func NewRetentionError(collection Collection, itemType ItemType, cause error) *RetentionError {
	return &RetentionError{
		Collection: collection,
		ItemType:   itemType,
		Cause:      cause,
	}
}
