package capture

import (
	"errors"
	"fmt"
)

// ErrMismatch marks a capture that differs from its recorded baseline
var ErrMismatch = errors.New("snapshot does not match baseline")

// MismatchError carries what triage needs to find the differing baseline
type MismatchError struct {
	Artifact string
	Path     string
	Diff     string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: %v (baseline %s)", e.Artifact, ErrMismatch, e.Path)
	if e.Diff != "" {
		msg += "\n" + e.Diff
	}
	return msg
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// IsMismatch reports whether err is a baseline comparison failure
func IsMismatch(err error) bool {
	return errors.Is(err, ErrMismatch)
}
