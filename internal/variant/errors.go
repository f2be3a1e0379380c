package variant

import (
	"errors"
	"fmt"
)

// Configuration errors for malformed variant sets
var (
	ErrEmptySet         = errors.New("variant set is empty")
	ErrDuplicateVariant = errors.New("duplicate variant")
	ErrInvalidName      = errors.New("invalid variant name")
	ErrInvalidPalette   = errors.New("invalid variant palette")
	ErrInvalidLocale    = errors.New("invalid variant locale")
)

// ConfigurationError reports a variant set that cannot be used to run tests.
type ConfigurationError struct {
	Source string // file or provider the set came from, may be empty
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("variant configuration %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("variant configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err came from variant set validation
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
