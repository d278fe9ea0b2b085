package services

import (
	"errors"
	"fmt"
)

// ErrInvalidParams marks request parameters rejected before any query runs.
var ErrInvalidParams = errors.New("invalid parameters")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
