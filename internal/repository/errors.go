package repository

import (
	"errors"

	"authgate/internal/apperror"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the application taxonomy. Other errors pass through.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(entity + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict(entity + " already exists")
	default:
		return err
	}
}
