package firestore

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// Common Firestore errors.
var (
	// ErrUnauthenticated indicates missing or invalid credentials.
	ErrUnauthenticated = errors.New("firestore: unauthenticated (invalid credentials)")

	// ErrPermissionDenied indicates the credentials lack access to the database.
	ErrPermissionDenied = errors.New("firestore: permission denied")

	// ErrUnavailable indicates the service could not be reached.
	ErrUnavailable = errors.New("firestore: unavailable")

	// ErrMissingIndex indicates a lifecycle query needs a composite index.
	ErrMissingIndex = errors.New("firestore: query requires a composite index")
)

// storeError classifies err and wraps it as a *domain.StoreError.
func storeError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		err = fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case codes.Unauthenticated:
		err = fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	case codes.PermissionDenied:
		err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	case codes.FailedPrecondition:
		err = fmt.Errorf("%w: %w", ErrMissingIndex, err)
	}
	return &domain.StoreError{Op: op, Err: err}
}
