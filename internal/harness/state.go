package harness

// State is the lifecycle position of one invocation
type State int

const (
	NotStarted State = iota
	VariantApplied
	IdentityResolved
	Delegated
	Success
	ComparisonFailed
	IdentityResolutionFailure
)

var stateNames = map[State]string{
	NotStarted:                "NotStarted",
	VariantApplied:            "VariantApplied",
	IdentityResolved:          "IdentityResolved",
	Delegated:                 "Delegated",
	Success:                   "Success",
	ComparisonFailed:          "ComparisonFailed",
	IdentityResolutionFailure: "IdentityResolutionFailure",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == Success || s == ComparisonFailed || s == IdentityResolutionFailure
}
