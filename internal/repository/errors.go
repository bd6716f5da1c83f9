package repository

import (
	"errors"
	"fmt"

	"github.com/primerapp/primer/pkg/apperrors"
	"go.mongodb.org/mongo-driver/mongo"
)

// writeConflictCode is MongoDB's server error code for an aborted
// conflicting write.
const writeConflictCode = 112

// wrapError translates driver errors into the service error kinds.
// Anything unrecognized is reported as a storage failure, never masked.
func wrapError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	case isWriteConflict(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, apperrors.ErrUnavailable)
	}
}

func isWriteConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == writeConflictCode {
		return true
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == writeConflictCode {
				return true
			}
		}
	}
	return false
}
