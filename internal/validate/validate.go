package validate

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotANumber is returned when a form field is not an integer.
	ErrNotANumber = errors.New("not an integer")

	// ErrOutOfRange is returned when an integer field is outside its allowed bounds.
	ErrOutOfRange = errors.New("out of range")
)

// Quality parses an optional JPEG quality field. An empty value means the
// caller did not supply one and yields (nil, nil). A supplied value must be
// an integer in [1,100].
func Quality(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}

	q, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("quality must be integer: %w", ErrNotANumber)
	}

	if q < 1 || q > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100: %w", ErrOutOfRange)
	}

	return &q, nil
}

// Dimension parses an optional pixel dimension field. An empty value yields
// (nil, nil). A supplied value must be a positive integer not exceeding max.
func Dimension(value string, max int) (*int, error) {
	if value == "" {
		return nil, nil
	}

	d, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("dimension must be integer: %w", ErrNotANumber)
	}

	if d <= 0 {
		return nil, fmt.Errorf("dimension must be positive: %w", ErrOutOfRange)
	}

	if d > max {
		return nil, fmt.Errorf("dimension must be <= %d: %w", max, ErrOutOfRange)
	}

	return &d, nil
}
