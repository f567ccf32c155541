package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

const duplicateKeyCode = 11000

// translate maps driver errors onto repository and model errors
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// ignoreDuplicates drops duplicate key failures from an unordered insert so
// records that already exist count as written
func ignoreDuplicates(err error) error {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		if bwe.WriteConcernError != nil {
			return err
		}
		for _, we := range bwe.WriteErrors {
			if we.Code != duplicateKeyCode {
				return err
			}
		}
		return nil
	}
	var we mongo.WriteException
	if errors.As(err, &we) && we.WriteConcernError == nil && mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
