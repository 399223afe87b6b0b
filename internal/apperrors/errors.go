package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of a resource.
var ErrConflict = errors.New("conflict with current resource state")

// ErrUnauthenticated indicates that no authenticated user is present for the operation.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates that the authenticated user may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrDataIntegrity indicates that a referenced entry, account or invoice is missing,
// i.e. upstream data is corrupt. Always fatal.
var ErrDataIntegrity = errors.New("data integrity violation")

// ErrPendingNotPostable indicates that a bank-pending transaction was submitted for posting.
var ErrPendingNotPostable = errors.New("pending bank transaction cannot be posted")

// ErrPersistenceUnavailable indicates that the datastore could not complete the operation
// even after retries. Never masked by an in-memory fallback.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
