package harness

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIdentityUnresolved is returned when no test frame is found on the stack
	ErrIdentityUnresolved = errors.New("cannot resolve test identity")

	// ErrInvalidIdentity is returned for explicit identities unusable in a file name
	ErrInvalidIdentity = errors.New("invalid test identity")

	// ErrArtifactCollision is returned when two identities map to one artifact name
	ErrArtifactCollision = errors.New("artifact name collision")
)

// IdentityError reports an identity resolution failure together with the
// frames that were walked, so the caller can see why nothing matched.
type IdentityError struct {
	Frames []string
	Err    error
}

func (e *IdentityError) Error() string {
	if len(e.Frames) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (walked: %s)", e.Err, strings.Join(e.Frames, " <- "))
}

func (e *IdentityError) Unwrap() error { return e.Err }

// IsIdentityFailure reports whether err stopped an invocation before delegation
func IsIdentityFailure(err error) bool {
	return errors.Is(err, ErrIdentityUnresolved) ||
		errors.Is(err, ErrInvalidIdentity) ||
		errors.Is(err, ErrArtifactCollision)
}
