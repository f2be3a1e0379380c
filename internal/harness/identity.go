package harness

import (
	"fmt"
	"path"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ajramos/snapvariant/internal/variant"
)

// Identity is the (suite, case) pair of the executing test
type Identity struct {
	Suite string
	Case  string
}

func (id Identity) String() string {
	return id.Suite + "." + id.Case
}

// Validate rejects identities that cannot appear in a file name
func (id Identity) Validate() error {
	for _, part := range []struct{ field, value string }{
		{"suite", id.Suite},
		{"case", id.Case},
	} {
		if part.value == "" {
			return fmt.Errorf("%w: empty %s", ErrInvalidIdentity, part.field)
		}
		if strings.ContainsAny(part.value, `/\`) || strings.IndexFunc(part.value, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: %s %q contains a separator or whitespace", ErrInvalidIdentity, part.field, part.value)
		}
	}
	return nil
}

// unresolved stands in for an identity in the attempted name of a failure
const unresolved = "<unresolved>"

// ArtifactName composes {Suite}_{Case}_{variant}
func ArtifactName(id Identity, v variant.Variant) string {
	return id.Suite + "_" + id.Case + "_" + v.ID()
}

// attemptedName is the best name available when identity resolution failed
func attemptedName(v variant.Variant) string {
	return ArtifactName(Identity{Suite: unresolved, Case: unresolved}, v)
}

// maxFrames bounds the stack walk
const maxFrames = 128

// ResolveIdentity walks the calling goroutine's stack outward and returns the
// identity of the nearest runner-recognised test declared in a _test.go file:
// a TestXxx function, including closures inside it, or a TestXxx method of a
// suite type. The walk ends at testing.tRunner.
func ResolveIdentity() (Identity, error) {
	pcs := make([]uintptr, maxFrames)
	// skip runtime.Callers and ResolveIdentity itself
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var walked []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			walked = append(walked, frame.Function)
			if id, ok := identityFromFrame(frame); ok {
				return id, nil
			}
			if frame.Function == "testing.tRunner" {
				break
			}
		}
		if !more {
			break
		}
	}

	return Identity{}, &IdentityError{Frames: walked, Err: ErrIdentityUnresolved}
}

// identityFromFrame recognises
//
//	example.com/pkg.TestFoo             -> {pkg, TestFoo}
//	example.com/pkg.TestFoo.func1.2     -> {pkg, TestFoo}
//	example.com/pkg.(*FooSuite).TestBar -> {FooSuite, TestBar}
//	example.com/pkg.FooSuite.TestBar    -> {FooSuite, TestBar}
func identityFromFrame(frame runtime.Frame) (Identity, bool) {
	pkg, rest := splitFuncName(frame.Function)
	if rest == "" {
		return Identity{}, false
	}
	// only the runner's own discovery units: tests and suite methods
	// declared in test files
	if !strings.HasSuffix(frame.File, "_test.go") {
		return Identity{}, false
	}
	parts := strings.Split(stripTypeParams(rest), ".")

	if strings.HasPrefix(parts[0], "(") {
		receiver := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(parts[0], "("), "*"), ")")
		if len(parts) > 1 && isTestName(parts[1]) {
			return Identity{Suite: receiver, Case: parts[1]}, true
		}
		return Identity{}, false
	}

	if isTestName(parts[0]) {
		return Identity{Suite: pkg, Case: parts[0]}, true
	}

	if len(parts) > 1 && isTestName(parts[1]) {
		return Identity{Suite: parts[0], Case: parts[1]}, true
	}
	return Identity{}, false
}

// splitFuncName splits "example.com/a/pkg.Func.func1" into "pkg" and
// "Func.func1".
func splitFuncName(fn string) (string, string) {
	slash := strings.LastIndex(fn, "/")
	dot := strings.Index(fn[slash+1:], ".")
	if dot < 0 {
		return "", ""
	}
	pkgPath := fn[:slash+1+dot]
	return path.Base(pkgPath), fn[slash+1+dot+1:]
}

// stripTypeParams drops "[...]" from generic instantiations
func stripTypeParams(s string) string {
	return strings.ReplaceAll(s, "[...]", "")
}

// isTestName mirrors go test discovery: "Test" followed by nothing or by a
// non-lowercase rune. TestMain is a hook, not a test.
func isTestName(name string) bool {
	if name == "TestMain" || !strings.HasPrefix(name, "Test") {
		return false
	}
	if len(name) == len("Test") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name[len("Test"):])
	return !unicode.IsLower(r)
}
