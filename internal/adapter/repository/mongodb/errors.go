package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// mapError translates driver errors into domain errors. what names the entity for the message.
func mapError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, what)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", domain.ErrTransient, what, err)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrRepository, what, err)
	}
}
