package services

import (
	"errors"

	"alfredoptarigan/career-coach/internal/apperrors"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
